// Package strategy supplies the observed strategy side of the comparison:
// 원본(셔플 전) 거래 순서의 지표 계산과 저장된 백테스트 로딩.
package strategy

import (
	"github.com/wonny/veritas/backend/internal/montecarlo"
)

// observedInitialCapital 관측 지표 재생 시작 자본
// 시뮬레이션 경로와 같은 기준을 써야 수익률 비교가 성립
const observedInitialCapital = 100000.0

// Metrics 원본 전략의 관측 지표
// p-value와 해석 등급 산출의 비교 기준
type Metrics struct {
	ReturnPct      float64 `json:"return_pct"`
	SharpeRatio    float64 `json:"sharpe_ratio"`
	MaxDrawdownPct float64 `json:"max_drawdown_pct"`
	WinRate        float64 `json:"win_rate"`
	NumTrades      int     `json:"num_trades"`
}

// MetricsFromTrades 거래 목록을 원본 순서 그대로 재생해 지표 계산
// 빈 목록이면 0 지표 (에러 아님)
func MetricsFromTrades(trades []montecarlo.Trade) Metrics {
	pnls := make([]float64, len(trades))
	for i, t := range trades {
		pnls[i] = t.PnLPct / 100.0
	}

	result := montecarlo.EvaluatePath(pnls, observedInitialCapital)

	return Metrics{
		ReturnPct:      result.TotalReturnPct,
		SharpeRatio:    result.SharpeRatio,
		MaxDrawdownPct: result.MaxDrawdownPct,
		WinRate:        result.WinRate,
		NumTrades:      result.NumTrades,
	}
}

// MetricsFromReturns 일별 수익률을 원본 순서 그대로 재생해 지표 계산
func MetricsFromReturns(dailyReturns []float64) Metrics {
	result := montecarlo.EvaluatePath(dailyReturns, observedInitialCapital)

	return Metrics{
		ReturnPct:      result.TotalReturnPct,
		SharpeRatio:    result.SharpeRatio,
		MaxDrawdownPct: result.MaxDrawdownPct,
		WinRate:        result.WinRate,
		NumTrades:      result.NumTrades,
	}
}
