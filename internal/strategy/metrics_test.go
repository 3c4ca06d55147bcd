package strategy

import (
	"math"
	"testing"

	"github.com/wonny/veritas/backend/internal/montecarlo"
)

func TestMetricsFromTrades(t *testing.T) {
	trades := []montecarlo.Trade{
		{PnLPct: 10.0, IsWin: true},
		{PnLPct: -5.0, IsWin: false},
	}

	m := MetricsFromTrades(trades)

	// 100000 * 1.10 * 0.95 = 104500 → +4.5%
	if math.Abs(m.ReturnPct-4.5) > 1e-9 {
		t.Errorf("ReturnPct = %f, want 4.5", m.ReturnPct)
	}
	if m.NumTrades != 2 {
		t.Errorf("NumTrades = %d, want 2", m.NumTrades)
	}
	if math.Abs(m.WinRate-50.0) > 1e-9 {
		t.Errorf("WinRate = %f, want 50", m.WinRate)
	}
	// peak 110000 → trough 104500
	wantDD := (110000.0 - 104500.0) / 110000.0 * 100.0
	if math.Abs(m.MaxDrawdownPct-wantDD) > 1e-9 {
		t.Errorf("MaxDrawdownPct = %f, want %f", m.MaxDrawdownPct, wantDD)
	}
}

func TestMetricsFromTradesEmpty(t *testing.T) {
	m := MetricsFromTrades(nil)

	if m.ReturnPct != 0 || m.SharpeRatio != 0 || m.MaxDrawdownPct != 0 || m.NumTrades != 0 {
		t.Errorf("empty trade list must yield zero metrics, got %+v", m)
	}
}

func TestMetricsFromReturnsOrderSensitive(t *testing.T) {
	// 복리 최종값은 순서 무관이지만 drawdown은 순서에 의존
	lossStreak := MetricsFromReturns([]float64{-0.1, -0.1, 0.3}) // consecutive losses: dd 19%
	lossSplit := MetricsFromReturns([]float64{-0.1, 0.3, -0.1})  // separated losses: dd 10%

	if math.Abs(lossStreak.ReturnPct-lossSplit.ReturnPct) > 1e-9 {
		t.Error("final return must not depend on order")
	}
	if math.Abs(lossStreak.MaxDrawdownPct-19.0) > 1e-6 {
		t.Errorf("loss-streak drawdown = %f, want 19", lossStreak.MaxDrawdownPct)
	}
	if math.Abs(lossSplit.MaxDrawdownPct-10.0) > 1e-6 {
		t.Errorf("split-loss drawdown = %f, want 10", lossSplit.MaxDrawdownPct)
	}
}
