package montecarlo

import "math"

// =============================================================================
// Path Evaluator - 순수 계산
// =============================================================================

// tradingDaysPerYear Sharpe 연환산 기준 (일봉 가정)
const tradingDaysPerYear = 252.0

// simulateEquityCurve 수익률 시퀀스를 복리 자본 곡선으로 변환
// 반환: [초기자본, 초기자본*(1+r0), ...] — 길이 len(returns)+1
func simulateEquityCurve(pathReturns []float64, initialCapital float64) []float64 {
	curve := make([]float64, 0, len(pathReturns)+1)
	curve = append(curve, initialCapital)

	capital := initialCapital
	for _, r := range pathReturns {
		capital *= 1.0 + r
		curve = append(curve, capital)
	}

	return curve
}

// calculateSharpeRatio 자본 곡선 기준 연환산 Sharpe 계산
// 곡선이 2점 미만이거나 표준편차가 0이면 0 반환 (0 나눗셈 방지)
func calculateSharpeRatio(equityCurve []float64) float64 {
	if len(equityCurve) < 2 {
		return 0.0
	}

	// 구간 수익률 (v[i]-v[i-1])/v[i-1]
	returns := make([]float64, 0, len(equityCurve)-1)
	for i := 1; i < len(equityCurve); i++ {
		returns = append(returns, (equityCurve[i]-equityCurve[i-1])/equityCurve[i-1])
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	// 모표준편차 (population std dev)
	sqSum := 0.0
	for _, r := range returns {
		sqSum += (r - mean) * (r - mean)
	}
	stdDev := math.Sqrt(sqSum / float64(len(returns)))

	if stdDev == 0 {
		return 0.0
	}

	return (mean / stdDev) * math.Sqrt(tradingDaysPerYear)
}

// calculateMaxDrawdown 최대 낙폭 계산 (백분율)
// 좌→우 스캔하며 peak 갱신, drawdown = (peak - value) / peak
// 단조 비감소 곡선이면 0, 빈 곡선이면 0
func calculateMaxDrawdown(equityCurve []float64) float64 {
	if len(equityCurve) == 0 {
		return 0.0
	}

	maxDD := 0.0
	peak := equityCurve[0]

	for _, value := range equityCurve {
		if value > peak {
			peak = value
		}
		drawdown := (peak - value) / peak
		if drawdown > maxDD {
			maxDD = drawdown
		}
	}

	return maxDD * 100.0
}

// EvaluatePath 수익률 시퀀스를 주어진 순서 그대로 평가
// 제너레이터와 동일한 경로 회계를 사용 — 원본 전략의 관측 지표 계산용
func EvaluatePath(pathReturns []float64, initialCapital float64) SimulationResult {
	curve := simulateEquityCurve(pathReturns, initialCapital)
	finalValue := curve[len(curve)-1]

	winRate := 0.0
	if len(pathReturns) > 0 {
		winRate = float64(countWins(pathReturns)) / float64(len(pathReturns)) * 100.0
	}

	return SimulationResult{
		FinalValue:     finalValue,
		TotalReturnPct: totalReturnPct(finalValue, initialCapital),
		MaxDrawdownPct: calculateMaxDrawdown(curve),
		NumTrades:      len(pathReturns),
		WinRate:        winRate,
		SharpeRatio:    calculateSharpeRatio(curve),
	}
}

// totalReturnPct 자본 곡선의 총 수익률 (백분율)
func totalReturnPct(finalValue, initialCapital float64) float64 {
	return (finalValue - initialCapital) / initialCapital * 100.0
}

// countWins 양수 수익률 개수
func countWins(pathReturns []float64) int {
	wins := 0
	for _, r := range pathReturns {
		if r > 0 {
			wins++
		}
	}
	return wins
}
