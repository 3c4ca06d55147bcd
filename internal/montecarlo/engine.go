// Package montecarlo implements the strategy-validation simulation engine.
//
// 전략의 과거 성과가 우연과 구분되는지 검증한다. 세 가지 리샘플링
// (order shuffle / return permutation / bootstrap)으로 대안 경로를 생성하고
// 자본 곡선을 재생해 수익률 분포를 비교한다.
package montecarlo

import (
	"math/rand"
	"time"
)

// baseCapital 제너레이터 공통 복리 시작 자본
// 설정의 InitialCapital과 무관하게 경로 평가는 항상 100,000에서 출발
const baseCapital = 100000.0

// tradeDaysPerPosition return permutation의 거래 수 근사 기준
// 20일당 1거래로 가정 — 측정값이 아니라 소스에 고정된 근사치이므로 그대로 유지
const tradeDaysPerPosition = 20

// Engine Monte Carlo 시뮬레이션 엔진
// ⭐ SSOT: 난수 스트림은 엔진 인스턴스당 1개, 세 제너레이터가 순서대로 공유
// 동시 호출 불가 — 병렬 분석이 필요하면 인스턴스를 분리할 것
type Engine struct {
	seed int64
	rng  *rand.Rand

	trades       []Trade
	dailyReturns []float64
	prices       []float64
}

// NewEngine 새 엔진 생성
// seed 0이면 시간 기반 시드를 생성해 기록 (재현성은 명시적 시드에서만 보장)
func NewEngine(seed int64) *Engine {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Engine{
		seed: seed,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// Seed 엔진이 실제 사용 중인 시드
func (e *Engine) Seed() int64 {
	return e.seed
}

// SetTrades 거래 목록 교체 (last-write-wins, 검증 없음)
func (e *Engine) SetTrades(trades []Trade) {
	e.trades = make([]Trade, len(trades))
	copy(e.trades, trades)
}

// SetReturns 일별 수익률 시계열 교체
func (e *Engine) SetReturns(dailyReturns []float64) {
	e.dailyReturns = make([]float64, len(dailyReturns))
	copy(e.dailyReturns, dailyReturns)
}

// SetPrices 가격 시계열 교체
// 현재 제너레이터는 소비하지 않지만 입력 계약의 일부로 유지
func (e *Engine) SetPrices(prices []float64) {
	e.prices = make([]float64, len(prices))
	copy(e.prices, prices)
}

// SetDailyReturnsFromPrices 가격 시계열에서 일별 수익률 파생
// returns[i] = (p[i+1] - p[i]) / p[i], 0 가격 구간은 건너뜀
func (e *Engine) SetDailyReturnsFromPrices(prices []float64) {
	returns := make([]float64, 0, len(prices))
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			continue
		}
		returns = append(returns, (prices[i]-prices[i-1])/prices[i-1])
	}
	e.dailyReturns = returns
}

// tradePnLFractions 거래 목록을 소수 수익률 시퀀스로 축약 (5.0% → 0.05)
func (e *Engine) tradePnLFractions() []float64 {
	pnls := make([]float64, len(e.trades))
	for i, t := range e.trades {
		pnls[i] = t.PnLPct / 100.0
	}
	return pnls
}

// =============================================================================
// Resampling Generators
// 제너레이터 3종은 같은 rng를 순서대로 소비 — RunAnalysis의 호출 순서가 곧 재현성 계약
// =============================================================================

// RunPositionShuffle 거래 순서 셔플 시뮬레이션
// P&L 분포는 유지한 채 거래 순서만 균등 랜덤 순열로 재배열
func (e *Engine) RunPositionShuffle(numSimulations int) []SimulationResult {
	if len(e.trades) == 0 {
		return []SimulationResult{}
	}

	tradePnLs := e.tradePnLFractions()
	results := make([]SimulationResult, 0, numSimulations)

	for i := 0; i < numSimulations; i++ {
		shuffled := make([]float64, len(tradePnLs))
		copy(shuffled, tradePnLs)
		e.rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		curve := simulateEquityCurve(shuffled, baseCapital)
		finalValue := curve[len(curve)-1]

		// 승률은 셔플된 시퀀스에서 재계산 (원본 복사 아님)
		wins := countWins(shuffled)

		results = append(results, SimulationResult{
			FinalValue:     finalValue,
			TotalReturnPct: totalReturnPct(finalValue, baseCapital),
			MaxDrawdownPct: calculateMaxDrawdown(curve),
			NumTrades:      len(shuffled),
			WinRate:        float64(wins) / float64(len(shuffled)) * 100.0,
			SharpeRatio:    calculateSharpeRatio(curve),
		})
	}

	return results
}

// RunReturnPermutation 일별 수익률 순열 시뮬레이션
// 거래 수는 num_days/20 근사, 승률은 random walk 가정으로 50% 고정
func (e *Engine) RunReturnPermutation(numSimulations int) []SimulationResult {
	if len(e.dailyReturns) == 0 {
		return []SimulationResult{}
	}

	numDays := len(e.dailyReturns)
	results := make([]SimulationResult, 0, numSimulations)

	for i := 0; i < numSimulations; i++ {
		permuted := make([]float64, numDays)
		copy(permuted, e.dailyReturns)
		e.rng.Shuffle(len(permuted), func(a, b int) {
			permuted[a], permuted[b] = permuted[b], permuted[a]
		})

		curve := simulateEquityCurve(permuted, baseCapital)
		finalValue := curve[len(curve)-1]

		results = append(results, SimulationResult{
			FinalValue:     finalValue,
			TotalReturnPct: totalReturnPct(finalValue, baseCapital),
			MaxDrawdownPct: calculateMaxDrawdown(curve),
			NumTrades:      numDays / tradeDaysPerPosition,
			WinRate:        50.0,
			SharpeRatio:    calculateSharpeRatio(curve),
		})
	}

	return results
}

// RunBootstrap 복원추출 시뮬레이션
// 원본과 같은 길이로, 매 추출이 전체 인덱스에 대해 균등·독립
func (e *Engine) RunBootstrap(numSimulations int) []SimulationResult {
	if len(e.trades) == 0 {
		return []SimulationResult{}
	}

	tradePnLs := e.tradePnLFractions()
	n := len(tradePnLs)
	results := make([]SimulationResult, 0, numSimulations)

	for i := 0; i < numSimulations; i++ {
		sampled := make([]float64, n)
		for j := 0; j < n; j++ {
			sampled[j] = tradePnLs[e.rng.Intn(n)]
		}

		curve := simulateEquityCurve(sampled, baseCapital)
		finalValue := curve[len(curve)-1]

		wins := countWins(sampled)

		results = append(results, SimulationResult{
			FinalValue:     finalValue,
			TotalReturnPct: totalReturnPct(finalValue, baseCapital),
			MaxDrawdownPct: calculateMaxDrawdown(curve),
			NumTrades:      n,
			WinRate:        float64(wins) / float64(n) * 100.0,
			SharpeRatio:    calculateSharpeRatio(curve),
		})
	}

	return results
}

// =============================================================================
// Orchestration
// =============================================================================

// RunAnalysis 세 제너레이터를 순서대로 실행하고 pooled 통계를 계산
// 요청 횟수는 3으로 정수 나눗셈 — 나머지는 재분배 없이 버림
// 입력이 없으면 에러가 아니라 비어 있는 well-formed 리포트 반환
func (e *Engine) RunAnalysis(config SimulationConfig) Analysis {
	nPerMethod := config.NumSimulations / 3

	shuffleResults := e.RunPositionShuffle(nPerMethod)
	permResults := e.RunReturnPermutation(nPerMethod)
	bootstrapResults := e.RunBootstrap(nPerMethod)

	// 고정 순서로 병합: shuffle → permutation → bootstrap
	simulations := make([]SimulationResult, 0, len(shuffleResults)+len(permResults)+len(bootstrapResults))
	simulations = append(simulations, shuffleResults...)
	simulations = append(simulations, permResults...)
	simulations = append(simulations, bootstrapResults...)

	analysis := Analysis{
		Simulations: simulations,
		SeedUsed:    e.seed,
		NumTrials:   len(simulations),
	}

	returns := analysis.Returns()

	// Percentiles (pooled, 정렬은 복사본에서)
	sortedReturns := make([]float64, len(returns))
	copy(sortedReturns, returns)
	computePercentiles(sortedReturns, &analysis)

	// 95% CI = p5/p95 (독립 추정 없음)
	analysis.CILower95 = analysis.Percentile5
	analysis.CIUpper95 = analysis.Percentile95

	buildHistogram(returns, &analysis)

	return analysis
}
