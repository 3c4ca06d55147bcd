// Package report assembles the caller-facing analysis report.
//
// 순수 직렬화 경계: 엔진의 Analysis를 고정 스키마로 매핑하고
// 해석 등급 / 리스크 지표 / 요약 평균을 덧붙인다. 동적 리플렉션 없음.
package report

import (
	"time"

	"github.com/wonny/veritas/backend/internal/montecarlo"
	"github.com/wonny/veritas/backend/internal/strategy"
)

// maxSimulationSample 응답에 포함하는 경로 샘플 상한 (앞에서부터 100개)
const maxSimulationSample = 100

// ruinThresholdPct probability-of-ruin 기준 (-50% 초과 손실)
const ruinThresholdPct = -50.0

// =============================================================================
// Report Schema
// =============================================================================

// Report 호출자에게 반환되는 전체 분석 리포트
type Report struct {
	Simulations      []montecarlo.SimulationResult `json:"simulations"`
	Statistics       Statistics                    `json:"statistics"`
	OriginalStrategy OriginalStrategy              `json:"original_strategy"`
	Distribution     Distribution                  `json:"distribution"`
	Metadata         Metadata                      `json:"metadata"`
	Summary          Summary                       `json:"summary"`
	RiskMetrics      RiskMetrics                   `json:"risk_metrics"`
	Performance      *Performance                  `json:"performance,omitempty"`
}

// Statistics p-value, 백분위수, 신뢰구간
type Statistics struct {
	PValueVsRandom       float64     `json:"p_value_vs_random"`    // 백분율
	PValueVsBootstrap    float64     `json:"p_value_vs_bootstrap"` // 백분율
	Percentiles          Percentiles `json:"percentiles"`
	ConfidenceInterval95 Interval    `json:"confidence_interval_95"`
}

// Percentiles pooled 수익률 백분위수 집합
type Percentiles struct {
	P5  float64 `json:"p5"`
	P25 float64 `json:"p25"`
	P50 float64 `json:"p50"`
	P75 float64 `json:"p75"`
	P95 float64 `json:"p95"`
}

// Interval 신뢰구간 경계
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// OriginalStrategy 비교 대상인 원본 전략 지표
type OriginalStrategy struct {
	ReturnPct      float64 `json:"return_pct"`
	SharpeRatio    float64 `json:"sharpe_ratio"`
	MaxDrawdownPct float64 `json:"max_drawdown_pct"`
}

// Distribution 20구간 수익률 히스토그램
type Distribution struct {
	Histogram []int   `json:"histogram"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
}

// Metadata 실행 메타데이터
type Metadata struct {
	SeedUsed  int64     `json:"seed_used"`
	NumTrials int       `json:"num_trials"`
	Timestamp time.Time `json:"timestamp"`
}

// Summary 요약 평균과 해석
type Summary struct {
	MeanReturn      float64 `json:"mean_return"`
	MeanSharpe      float64 `json:"mean_sharpe"`
	MeanMaxDrawdown float64 `json:"mean_max_drawdown"`
	Interpretation  string  `json:"interpretation"`
	RiskRating      string  `json:"risk_rating"` // GREEN/AMBER/RED
}

// RiskMetrics 분포 기반 리스크 지표
type RiskMetrics struct {
	VaR95             float64 `json:"var_95"`
	CVaR95            float64 `json:"cvar_95"`
	ProbabilityOfRuin float64 `json:"probability_of_ruin"` // 백분율
}

// Performance 실행 성능 (API 응답용)
type Performance struct {
	ElapsedTimeSeconds   float64 `json:"elapsed_time_seconds"`
	SimulationsPerSecond float64 `json:"simulations_per_second"`
}

// =============================================================================
// Interpretation
// =============================================================================

// Risk ratings
const (
	RatingGreen = "GREEN"
	RatingAmber = "AMBER"
	RatingRed   = "RED"
)

// interpretation 임계값: >p95 강함, >p75 중간, >p50 약함, 이하 무신호
// 문구와 임계값은 재현 가능해야 하는 표시 계약 — 변경 금지
const (
	interpStrong = "STRONG_SIGNAL: Strategy significantly outperforms random permutations (>95th percentile). " +
		"Results are likely NOT due to luck."
	interpModerate = "MODERATE_SIGNAL: Strategy performs better than 75% of random permutations. " +
		"Results suggest skill over luck."
	interpWeak = "WEAK_SIGNAL: Strategy performs above median but not exceptionally. " +
		"Results may have some skill component."
	interpNone = "NO_SIGNAL: Strategy does not outperform random permutations. " +
		"Results likely due to luck."
)

// Interpret 원본 수익률을 백분위수와 비교해 해석 문구와 등급을 결정
func Interpret(originalReturn float64, a *montecarlo.Analysis) (string, string) {
	switch {
	case originalReturn > a.Percentile95:
		return interpStrong, RatingGreen
	case originalReturn > a.Percentile75:
		return interpModerate, RatingGreen
	case originalReturn > a.Percentile50:
		return interpWeak, RatingAmber
	default:
		return interpNone, RatingRed
	}
}

// =============================================================================
// Builder
// =============================================================================

// Build Analysis와 원본 지표를 고정 스키마 리포트로 조립
func Build(analysis montecarlo.Analysis, original strategy.Metrics, elapsed time.Duration) Report {
	returns := analysis.Returns()

	// p-value: 관측값 이상인 시뮬레이션 비율, 백분율로 표시
	// 두 필드 모두 pooled 분포 대비 동일 값 (표시 계약)
	pValue := montecarlo.ComputePValue(original.ReturnPct, returns) * 100.0

	interpretation, rating := Interpret(original.ReturnPct, &analysis)

	sharpes := make([]float64, len(analysis.Simulations))
	drawdowns := make([]float64, len(analysis.Simulations))
	for i, sim := range analysis.Simulations {
		sharpes[i] = sim.SharpeRatio
		drawdowns[i] = sim.MaxDrawdownPct
	}

	rpt := Report{
		Simulations: sampleSimulations(analysis.Simulations),
		Statistics: Statistics{
			PValueVsRandom:    pValue,
			PValueVsBootstrap: pValue,
			Percentiles: Percentiles{
				P5:  analysis.Percentile5,
				P25: analysis.Percentile25,
				P50: analysis.Percentile50,
				P75: analysis.Percentile75,
				P95: analysis.Percentile95,
			},
			ConfidenceInterval95: Interval{
				Lower: analysis.CILower95,
				Upper: analysis.CIUpper95,
			},
		},
		OriginalStrategy: OriginalStrategy{
			ReturnPct:      original.ReturnPct,
			SharpeRatio:    original.SharpeRatio,
			MaxDrawdownPct: original.MaxDrawdownPct,
		},
		Distribution: Distribution{
			Histogram: analysis.ReturnDistribution,
			Min:       analysis.DistributionMin,
			Max:       analysis.DistributionMax,
		},
		Metadata: Metadata{
			SeedUsed:  analysis.SeedUsed,
			NumTrials: analysis.NumTrials,
			Timestamp: time.Now().UTC(),
		},
		Summary: Summary{
			MeanReturn:      montecarlo.Mean(returns),
			MeanSharpe:      montecarlo.Mean(sharpes),
			MeanMaxDrawdown: montecarlo.Mean(drawdowns),
			Interpretation:  interpretation,
			RiskRating:      rating,
		},
		RiskMetrics: buildRiskMetrics(returns, analysis.Percentile5),
	}

	if elapsed > 0 {
		rpt.Performance = &Performance{
			ElapsedTimeSeconds:   elapsed.Seconds(),
			SimulationsPerSecond: float64(analysis.NumTrials) / elapsed.Seconds(),
		}
	}

	return rpt
}

// sampleSimulations 앞에서부터 최대 100개 경로만 응답에 포함
func sampleSimulations(sims []montecarlo.SimulationResult) []montecarlo.SimulationResult {
	n := len(sims)
	if n > maxSimulationSample {
		n = maxSimulationSample
	}
	sample := make([]montecarlo.SimulationResult, n)
	copy(sample, sims[:n])
	return sample
}

// buildRiskMetrics VaR95 = p5, CVaR95 = VaR 이하 평균 (없으면 VaR),
// probability of ruin = -50% 초과 손실 비율 (백분율)
func buildRiskMetrics(returns []float64, percentile5 float64) RiskMetrics {
	var95 := percentile5

	tail := make([]float64, 0)
	ruined := 0
	for _, r := range returns {
		if r <= var95 {
			tail = append(tail, r)
		}
		if r < ruinThresholdPct {
			ruined++
		}
	}

	cvar95 := var95
	if len(tail) > 0 {
		cvar95 = montecarlo.Mean(tail)
	}

	probRuin := 0.0
	if len(returns) > 0 {
		probRuin = float64(ruined) / float64(len(returns)) * 100.0
	}

	return RiskMetrics{
		VaR95:             var95,
		CVaR95:            cvar95,
		ProbabilityOfRuin: probRuin,
	}
}
