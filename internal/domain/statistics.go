package domain

import "math"

// DaysPerYear scales a per-day slope to a yearly trend.
const DaysPerYear = 365

// Statistics are descriptive figures over a station's level series.
type Statistics struct {
	Count        int     `json:"count"`
	Average      float64 `json:"average"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	StdDev       float64 `json:"stdDev"`       // population standard deviation
	TrendPerYear float64 `json:"trendPerYear"` // meters per year
}

// ComputeStatistics summarizes a chronological level series. The trend is the
// least-squares slope against the sample index, treating every index as one
// day regardless of gaps in the dates. A single value has a zero trend.
func ComputeStatistics(values []float64) (Statistics, error) {
	n := len(values)
	if n == 0 {
		return Statistics{}, ErrEmptySeries
	}

	minV, maxV := values[0], values[0]
	var sum float64
	for _, v := range values {
		sum += v
		minV = math.Min(minV, v)
		maxV = math.Max(maxV, v)
	}
	// Summation rounding can push the mean of a constant series one ulp
	// outside its range.
	avg := math.Max(minV, math.Min(maxV, sum/float64(n)))

	var sq float64
	for _, v := range values {
		d := v - avg
		sq += d * d
	}

	return Statistics{
		Count:        n,
		Average:      avg,
		Min:          minV,
		Max:          maxV,
		StdDev:       math.Sqrt(sq / float64(n)),
		TrendPerYear: Slope(values) * DaysPerYear,
	}, nil
}

// StationStatistics computes statistics over a station's level series.
func StationStatistics(station Station) (Statistics, error) {
	return ComputeStatistics(station.Levels())
}

// Slope returns the closed-form least-squares slope of values against
// x = 0..n-1. It returns 0 when the slope is undefined (n < 2).
func Slope(values []float64) float64 {
	n := float64(len(values))
	var sumX, sumY, sumXY, sumX2 float64
	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumX2 += x * x
	}
	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}
