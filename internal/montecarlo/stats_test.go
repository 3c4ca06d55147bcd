package montecarlo

import (
	"math"
	"testing"
)

func TestPercentileAt(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}

	tests := []struct {
		p    int
		want float64
	}{
		{5, 1},  // floor(5*4/100) = 0
		{25, 2}, // floor(25*4/100) = 1
		{50, 3}, // floor(50*4/100) = 2
		{75, 4}, // floor(75*4/100) = 3
		{95, 4}, // floor(95*4/100) = 3
	}

	for _, tt := range tests {
		got := percentileAt(sorted, tt.p)
		if got != tt.want {
			t.Errorf("percentileAt(p=%d) = %f, want %f", tt.p, got, tt.want)
		}
	}
}

func TestPercentileAtEmpty(t *testing.T) {
	if got := percentileAt(nil, 50); got != 0.0 {
		t.Errorf("percentileAt(empty) = %f, want 0", got)
	}
}

func TestComputePercentiles(t *testing.T) {
	var a Analysis
	values := []float64{5, 1, 3, 2, 4} // unsorted on purpose
	computePercentiles(values, &a)

	if a.Percentile50 != 3 {
		t.Errorf("Percentile50 = %f, want 3", a.Percentile50)
	}
	if a.Percentile5 != 1 || a.Percentile95 != 4 {
		t.Errorf("P5/P95 = %f/%f, want 1/4", a.Percentile5, a.Percentile95)
	}
}

func TestComputePercentilesEmpty(t *testing.T) {
	var a Analysis
	computePercentiles([]float64{}, &a)

	if a.Percentile5 != 0 || a.Percentile50 != 0 || a.Percentile95 != 0 {
		t.Error("percentiles over empty pool must degrade to 0")
	}
}

func TestBuildHistogram(t *testing.T) {
	var a Analysis
	returns := make([]float64, 100)
	for i := range returns {
		returns[i] = float64(i) // spread over [0, 99]
	}

	buildHistogram(returns, &a)

	if a.DistributionMin != 0 || a.DistributionMax != 99 {
		t.Errorf("bounds = [%f, %f], want [0, 99]", a.DistributionMin, a.DistributionMax)
	}

	if len(a.ReturnDistribution) != 20 {
		t.Fatalf("bin count = %d, want 20", len(a.ReturnDistribution))
	}

	// 구간 폭 > 0이면 카운트 합 == 경로 수 (최대값 포함)
	total := 0
	for _, c := range a.ReturnDistribution {
		total += c
	}
	if total != len(returns) {
		t.Errorf("histogram counts sum to %d, want %d", total, len(returns))
	}
}

func TestBuildHistogramAllEqual(t *testing.T) {
	var a Analysis
	buildHistogram([]float64{7.5, 7.5, 7.5}, &a)

	if a.DistributionMin != a.DistributionMax {
		t.Errorf("min/max = %f/%f, want equal", a.DistributionMin, a.DistributionMax)
	}

	for i, c := range a.ReturnDistribution {
		if c != 0 {
			t.Errorf("bin[%d] = %d, want 0 when bin width is zero", i, c)
		}
	}
}

func TestBuildHistogramEmpty(t *testing.T) {
	var a Analysis
	buildHistogram(nil, &a)

	if len(a.ReturnDistribution) != 20 {
		t.Fatalf("bin count = %d, want 20 even for empty pool", len(a.ReturnDistribution))
	}
}

func TestComputePValue(t *testing.T) {
	tests := []struct {
		name      string
		observed  float64
		simulated []float64
		want      float64
	}{
		{
			name:      "half at or above",
			observed:  3,
			simulated: []float64{1, 2, 3, 4}, // 3 and 4 count (inclusive)
			want:      0.5,
		},
		{
			name:      "ties count as extreme",
			observed:  5,
			simulated: []float64{5, 5, 5, 5},
			want:      1.0,
		},
		{
			name:      "empty population degenerates to 1",
			observed:  10,
			simulated: []float64{},
			want:      1.0,
		},
		{
			name:      "none above",
			observed:  100,
			simulated: []float64{1, 2, 3},
			want:      0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputePValue(tt.observed, tt.simulated)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("ComputePValue() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestMean(t *testing.T) {
	if got := Mean([]float64{1, 2, 3}); got != 2 {
		t.Errorf("Mean() = %f, want 2", got)
	}
	if got := Mean(nil); got != 0 {
		t.Errorf("Mean(empty) = %f, want 0", got)
	}
}
