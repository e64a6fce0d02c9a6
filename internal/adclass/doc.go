// Package adclass scores transcript spans for advertisement-typical
// language. The classifier is a hand-engineered feature blend over phrase
// pattern families, a standard ad-length prior, and an optional
// embedding-based topic-island test; it works on any text span and is used
// both by the detection engine's segment scorer and by the opening and
// edge-expansion scans.
package adclass
