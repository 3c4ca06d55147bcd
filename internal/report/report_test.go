package report

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/veritas/backend/internal/montecarlo"
	"github.com/wonny/veritas/backend/internal/strategy"
)

func analysisWithReturns(returns []float64) montecarlo.Analysis {
	sims := make([]montecarlo.SimulationResult, len(returns))
	for i, r := range returns {
		sims[i] = montecarlo.SimulationResult{TotalReturnPct: r, SharpeRatio: 1.0, MaxDrawdownPct: 10.0}
	}

	a := montecarlo.Analysis{
		Simulations: sims,
		NumTrials:   len(sims),
		SeedUsed:    42,
	}

	// 빌더 입력으로 쓰는 백분위수만 채움 (floor-rank와 동일 규칙)
	if len(returns) > 0 {
		sorted := make([]float64, len(returns))
		copy(sorted, returns)
		sort.Float64s(sorted)
		a.Percentile5 = sorted[5*(len(sorted)-1)/100]
		a.Percentile25 = sorted[25*(len(sorted)-1)/100]
		a.Percentile50 = sorted[50*(len(sorted)-1)/100]
		a.Percentile75 = sorted[75*(len(sorted)-1)/100]
		a.Percentile95 = sorted[95*(len(sorted)-1)/100]
		a.CILower95 = a.Percentile5
		a.CIUpper95 = a.Percentile95
	}

	return a
}

func TestInterpretTiers(t *testing.T) {
	returns := make([]float64, 20)
	for i := range returns {
		returns[i] = float64(i + 1) // 1..20
	}
	a := analysisWithReturns(returns)
	// floor-rank: p50=10, p75=15, p95=19

	tests := []struct {
		name           string
		originalReturn float64
		wantPrefix     string
		wantRating     string
	}{
		{"above p95", 25.0, "STRONG_SIGNAL", RatingGreen},
		{"above p75 only", 17.0, "MODERATE_SIGNAL", RatingGreen},
		{"above p50 only", 12.0, "WEAK_SIGNAL", RatingAmber},
		{"at or below p50", 10.0, "NO_SIGNAL", RatingRed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			interp, rating := Interpret(tt.originalReturn, &a)
			assert.Contains(t, interp, tt.wantPrefix)
			assert.Equal(t, tt.wantRating, rating)
		})
	}
}

func TestBuildPValueAsPercentage(t *testing.T) {
	a := analysisWithReturns([]float64{1, 2, 3, 4})

	rpt := Build(a, strategy.Metrics{ReturnPct: 3}, 0)

	// 3, 4가 관측값 이상 → 2/4 = 50%
	assert.InDelta(t, 50.0, rpt.Statistics.PValueVsRandom, 1e-9)
	assert.Equal(t, rpt.Statistics.PValueVsRandom, rpt.Statistics.PValueVsBootstrap)
}

func TestBuildCapsSimulationSample(t *testing.T) {
	returns := make([]float64, 250)
	for i := range returns {
		returns[i] = float64(i)
	}
	a := analysisWithReturns(returns)

	rpt := Build(a, strategy.Metrics{}, 0)

	require.Len(t, rpt.Simulations, 100)
	// 샘플은 앞에서부터
	assert.Equal(t, 0.0, rpt.Simulations[0].TotalReturnPct)
	assert.Equal(t, 99.0, rpt.Simulations[99].TotalReturnPct)
	// 통계는 전체 pool 기준
	assert.Equal(t, 250, rpt.Metadata.NumTrials)
}

func TestBuildRiskMetrics(t *testing.T) {
	// p5 = index floor(5*99/100)=4 → value 4
	returns := make([]float64, 100)
	for i := range returns {
		returns[i] = float64(i)
	}
	a := analysisWithReturns(returns)

	rpt := Build(a, strategy.Metrics{}, 0)

	assert.Equal(t, 4.0, rpt.RiskMetrics.VaR95)
	// tail = {0,1,2,3,4} → mean 2
	assert.InDelta(t, 2.0, rpt.RiskMetrics.CVaR95, 1e-9)
	assert.Equal(t, 0.0, rpt.RiskMetrics.ProbabilityOfRuin)
}

func TestBuildProbabilityOfRuin(t *testing.T) {
	a := analysisWithReturns([]float64{-80, -60, 10, 20}) // 2 of 4 below -50%

	rpt := Build(a, strategy.Metrics{}, 0)

	assert.InDelta(t, 50.0, rpt.RiskMetrics.ProbabilityOfRuin, 1e-9)
}

func TestBuildEmptyAnalysis(t *testing.T) {
	a := montecarlo.Analysis{ReturnDistribution: make([]int, 20)}

	rpt := Build(a, strategy.Metrics{}, 0)

	// 빈 데이터도 well-formed 리포트 (에러 아님)
	assert.Empty(t, rpt.Simulations)
	assert.Equal(t, 100.0, rpt.Statistics.PValueVsRandom) // 빈 모집단 p-value = 1.0 → 100%
	assert.Equal(t, "NO_SIGNAL: Strategy does not outperform random permutations. Results likely due to luck.", rpt.Summary.Interpretation)
	assert.Equal(t, RatingRed, rpt.Summary.RiskRating)
	assert.Len(t, rpt.Distribution.Histogram, 20)
}

func TestBuildPerformanceBlock(t *testing.T) {
	a := analysisWithReturns([]float64{1, 2, 3})

	rpt := Build(a, strategy.Metrics{}, 2*time.Second)

	require.NotNil(t, rpt.Performance)
	assert.InDelta(t, 2.0, rpt.Performance.ElapsedTimeSeconds, 1e-9)
	assert.InDelta(t, 1.5, rpt.Performance.SimulationsPerSecond, 1e-9)

	noTiming := Build(a, strategy.Metrics{}, 0)
	assert.Nil(t, noTiming.Performance)
}
