package domain

import "math"

// Correlation request bounds.
const (
	MinCorrelationStations = 2
	MaxCorrelationStations = 6
)

// Pearson returns the correlation coefficient of x and y over their common
// prefix. Constant series (zero variance) and empty input yield 0.
func Pearson(x, y []float64) float64 {
	n := min(len(x), len(y))
	if n == 0 || allEqual(x[:n]) || allEqual(y[:n]) {
		return 0
	}

	var meanX, meanY float64
	for i := 0; i < n; i++ {
		meanX += x[i]
		meanY += y[i]
	}
	meanX /= float64(n)
	meanY /= float64(n)

	var num, varX, varY float64
	for i := 0; i < n; i++ {
		dx := x[i] - meanX
		dy := y[i] - meanY
		num += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	den := math.Sqrt(varX * varY)
	if den == 0 || math.IsNaN(den) {
		return 0
	}

	r := num / den
	// Rounding can push |r| a hair past 1 for near-identical series.
	return math.Max(-1, math.Min(1, r))
}

func allEqual(v []float64) bool {
	for _, f := range v[1:] {
		if f != v[0] {
			return false
		}
	}
	return true
}

// CorrelationMatrix computes pairwise Pearson coefficients for 2 to 6
// series. Each pair is truncated to its own common length. The diagonal is
// exactly 1 and the result is symmetric.
func CorrelationMatrix(series [][]float64) ([][]float64, error) {
	k := len(series)
	if k < MinCorrelationStations || k > MaxCorrelationStations {
		return nil, ErrStationCount
	}

	m := make([][]float64, k)
	for i := range m {
		m[i] = make([]float64, k)
		m[i][i] = 1
	}
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			r := Pearson(series[i], series[j])
			m[i][j] = r
			m[j][i] = r
		}
	}
	return m, nil
}

// StationCorrelation is a correlation matrix labelled with station ids.
type StationCorrelation struct {
	StationIDs []string    `json:"stationIds"`
	Matrix     [][]float64 `json:"matrix"`
}

// CorrelateStations builds the correlation matrix over the stations' level series.
func CorrelateStations(stations []Station) (StationCorrelation, error) {
	series := make([][]float64, len(stations))
	ids := make([]string, len(stations))
	for i, s := range stations {
		series[i] = s.Levels()
		ids[i] = s.ID
	}
	m, err := CorrelationMatrix(series)
	if err != nil {
		return StationCorrelation{}, err
	}
	return StationCorrelation{StationIDs: ids, Matrix: m}, nil
}
