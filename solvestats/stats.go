// Package solvestats collects running statistics over a solve session:
// per-cascade-level timings, and bucket-occupancy histograms for rotation
// tables, surfaced by the validation harness.
package solvestats

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/aybabtme/uniplot/histogram"
	"gonum.org/v1/gonum/stat"
)

const Epsilon = 1e-6

func FuzzyEqual(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// Statistic accumulates mean/variance over a stream of samples using
// Welford's algorithm, so timings can be folded in without retaining
// every observation.
type Statistic struct {
	totalIterations int
	last            float64

	oldM float64
	newM float64
	oldS float64
	newS float64
}

func (s *Statistic) Push(val float64) {
	s.last = val
	s.totalIterations++
	if s.totalIterations == 1 {
		s.oldM = val
		s.newM = val
		s.oldS = 0
	} else {
		s.newM = s.oldM + (val-s.oldM)/float64(s.totalIterations)
		s.newS = s.oldS + (val-s.oldM)*(val-s.newM)
		s.oldM = s.newM
		s.oldS = s.newS
	}
}

func (s *Statistic) Mean() float64 {
	if s.totalIterations > 0 {
		return s.newM
	}
	return 0.0
}

func (s *Statistic) Variance() float64 {
	if s.totalIterations <= 1 {
		return 0.0
	}
	return s.newS / float64(s.totalIterations-1)
}

func (s *Statistic) Stdev() float64 {
	return math.Sqrt(s.Variance())
}

func (s *Statistic) Last() float64 {
	return s.last
}

func (s *Statistic) StandardError() float64 {
	return math.Sqrt(s.Variance() / float64(s.totalIterations))
}

func (s *Statistic) Iterations() int {
	return s.totalIterations
}

// BucketHistogram renders the bucket-occupancy distribution of a rotation
// table as a terminal histogram, used by the validation harness to show
// how lopsided the any-encoding duplication makes the dense/sparse tables.
func BucketHistogram(bucketSizes []int, bins int) (string, error) {
	if len(bucketSizes) == 0 {
		return "(no buckets)", nil
	}
	samples := make([]float64, len(bucketSizes))
	for i, n := range bucketSizes {
		samples[i] = float64(n)
	}
	var buf strings.Builder
	hist := histogram.Hist(bins, samples)
	if err := histogram.Fprint(&buf, hist, histogram.Linear(40)); err != nil {
		return "", fmt.Errorf("render bucket histogram: %w", err)
	}
	return buf.String(), nil
}

// Percentile returns the p-th percentile (0..100) of a set of durations,
// expressed in whatever unit the caller pushed (the validation harness
// uses seconds).
func Percentile(samples []float64, p float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)
	return stat.Quantile(p/100, stat.Empirical, sorted, nil)
}
