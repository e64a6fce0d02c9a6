// Package segmenter partitions a one-dimensional signal into statistically
// homogeneous stretches. The primary solver is penalized optimal
// partitioning with pruning (PELT) under a radial-basis-function cost, which
// finds the globally penalty-optimal breakpoints. Threshold-crossing and
// gradient-peak detectors are provided for single-channel scans and
// degraded operation.
package segmenter
