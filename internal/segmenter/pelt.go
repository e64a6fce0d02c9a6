package segmenter

import (
	"math"
	"slices"
)

// Config tunes the optimal-partitioning search. A lower penalty yields
// more, shorter segments.
type Config struct {
	// MinSize is the smallest admissible segment in samples. Default 5.
	MinSize int
	// Penalty is the per-breakpoint cost. Default 0.3.
	Penalty float64
}

func (c Config) withDefaults() Config {
	if c.MinSize <= 0 {
		c.MinSize = 5
	}
	if c.Penalty <= 0 {
		c.Penalty = 0.3
	}
	return c
}

// ChangePoints returns the interior breakpoint indices of the globally
// penalty-optimal partition of values under an RBF kernel cost. An index t
// in the result means a new segment starts at values[t]. Signals shorter
// than twice the minimum segment size cannot split and yield nil.
func ChangePoints(values []float64, cfg Config) []int {
	cfg = cfg.withDefaults()
	n := len(values)
	if n < 2*cfg.MinSize {
		return nil
	}

	gamma := rbfGamma(values)

	// Pruned exact linear-time search. For every admissible last-segment
	// start s we maintain the kernel Gram sum over [s, t); the RBF segment
	// cost is (t-s) - gram/(t-s) because the kernel diagonal is 1.
	best := make([]float64, n+1)
	prev := make([]int, n+1)
	best[0] = -cfg.Penalty
	for t := 1; t <= n; t++ {
		best[t] = math.Inf(1)
	}

	candidates := []int{0}
	gram := map[int]float64{0: 0}
	suffix := make([]float64, n+1)

	for t := 1; t <= n; t++ {
		// Extend every candidate's Gram sum with the new point x_{t-1}.
		j := t - 1
		lowest := candidates[0]
		suffix[j] = 0
		for i := j - 1; i >= lowest; i-- {
			d := values[i] - values[j]
			suffix[i] = suffix[i+1] + math.Exp(-gamma*d*d)
		}
		for _, s := range candidates {
			gram[s] += 2*suffix[s] + 1
		}

		for _, s := range candidates {
			if t-s < cfg.MinSize {
				continue
			}
			cost := segmentCost(gram[s], t-s)
			if total := best[s] + cost + cfg.Penalty; total < best[t] {
				best[t] = total
				prev[t] = s
			}
		}

		// Prune candidates that can no longer start an optimal last
		// segment; kernel costs are subadditive so the PELT bound holds.
		if !math.IsInf(best[t], 1) {
			pruned := candidates[:0]
			for _, s := range candidates {
				if t-s < cfg.MinSize || best[s]+segmentCost(gram[s], t-s) <= best[t] {
					pruned = append(pruned, s)
				} else {
					delete(gram, s)
				}
			}
			candidates = pruned
		}

		// t becomes a candidate start once a segment ending at it is long
		// enough to exist.
		if t <= n-cfg.MinSize {
			candidates = append(candidates, t)
			gram[t] = 0
		}
	}

	if math.IsInf(best[n], 1) {
		return nil
	}
	var breaks []int
	for t := n; t > 0; t = prev[t] {
		if prev[t] > 0 {
			breaks = append(breaks, prev[t])
		}
	}
	slices.Sort(breaks)
	return breaks
}

func segmentCost(gram float64, length int) float64 {
	return float64(length) - gram/float64(length)
}

// rbfGamma picks the kernel bandwidth by the median heuristic over pairwise
// squared distances, subsampled for long signals.
func rbfGamma(values []float64) float64 {
	n := len(values)
	stride := 1
	if n > 400 {
		stride = n / 400
	}
	var dists []float64
	for i := 0; i < n; i += stride {
		for j := i + stride; j < n; j += stride {
			d := values[i] - values[j]
			dists = append(dists, d*d)
		}
	}
	if len(dists) == 0 {
		return 1
	}
	slices.Sort(dists)
	median := dists[len(dists)/2]
	if median <= 0 {
		return 1
	}
	return 1 / median
}
