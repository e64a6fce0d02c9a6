// Package audiosig turns decoded mono PCM into fixed-hop feature frames for
// ad-boundary detection.
//
// Each frame carries RMS energy, spectral centroid, spectral roll-off,
// zero-crossing rate, 13 averaged MFCC coefficients, a heuristic speech flag,
// and an optional diarized speaker id. Change scores between consecutive
// frames combine energy, spectral, MFCC, speech, and speaker deltas into one
// boundary likelihood per hop.
//
// The speech flag is a rule (energy floor plus a voiced zero-crossing band),
// not a trained classifier. Music and noise can flip it either way; consumers
// treat it as one weak signal among several.
package audiosig
