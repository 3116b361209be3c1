package core

import (
	"math"
	"slices"

	"github.com/huangsam/gridline/schema"
)

// Percentiles computes the reference cuts over values by linear interpolation between
// closest ranks (the default quantile definition of R and NumPy).
// An empty input yields a reference without cuts.
func Percentiles(values []float64) schema.PercentileReference {
	ref := schema.PercentileReference{Count: len(values)}
	if len(values) == 0 {
		return ref
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	ref.Cuts = make([]schema.PercentileCut, 0, len(schema.PercentileLevels))
	for _, level := range schema.PercentileLevels {
		ref.Cuts = append(ref.Cuts, schema.PercentileCut{
			Level: level,
			Value: quantile(sorted, float64(level)/100),
		})
	}
	return ref
}

// TablePercentiles computes the reference cuts over the whole metric column of table.
func TablePercentiles(table []schema.GameStatRecord) schema.PercentileReference {
	values := make([]float64, len(table))
	for i, r := range table {
		values[i] = r.QBR
	}
	return Percentiles(values)
}

// quantile expects sorted to be non-empty and ascending.
func quantile(sorted []float64, p float64) float64 {
	h := float64(len(sorted)-1) * p
	lo := int(math.Floor(h))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}
