package montecarlo

import (
	"math"
	"reflect"
	"sort"
	"testing"
)

func sampleTrades() []Trade {
	return []Trade{
		{EntryPrice: 100, ExitPrice: 105, DaysHeld: 10, PnLPct: 5.0, IsWin: true},
		{EntryPrice: 105, ExitPrice: 103, DaysHeld: 5, PnLPct: -1.9, IsWin: false},
		{EntryPrice: 103, ExitPrice: 110, DaysHeld: 15, PnLPct: 6.8, IsWin: true},
		{EntryPrice: 110, ExitPrice: 108, DaysHeld: 7, PnLPct: -1.8, IsWin: false},
		{EntryPrice: 108, ExitPrice: 115, DaysHeld: 12, PnLPct: 6.5, IsWin: true},
		{EntryPrice: 115, ExitPrice: 112, DaysHeld: 8, PnLPct: -2.6, IsWin: false},
		{EntryPrice: 112, ExitPrice: 120, DaysHeld: 20, PnLPct: 7.1, IsWin: true},
		{EntryPrice: 120, ExitPrice: 118, DaysHeld: 6, PnLPct: -1.7, IsWin: false},
	}
}

func sampleReturns() []float64 {
	returns := make([]float64, 60)
	for i := range returns {
		// deterministic mix of gains and losses
		if i%3 == 0 {
			returns[i] = -0.01
		} else {
			returns[i] = 0.008
		}
	}
	return returns
}

func TestPositionShufflePreservesMultiset(t *testing.T) {
	engine := NewEngine(42)
	engine.SetTrades(sampleTrades())

	original := engine.tradePnLFractions()
	sort.Float64s(original)

	// multiset 보존의 기준값: 복리 곱과 승수는 원소 집합에만 의존하고
	// 순서와 무관 — 정렬된 원본에서 계산한 값과 모든 경로가 일치해야 함
	expectedFinal := baseCapital
	for _, r := range original {
		expectedFinal *= 1.0 + r
	}
	expectedWinRate := float64(countWins(original)) / float64(len(original)) * 100.0

	results := engine.RunPositionShuffle(50)
	if len(results) != 50 {
		t.Fatalf("got %d paths, want 50", len(results))
	}

	for i, r := range results {
		if math.Abs(r.FinalValue-expectedFinal) > 1e-6 {
			t.Errorf("path %d final value %f, want %f from the original multiset", i, r.FinalValue, expectedFinal)
		}
		if r.NumTrades != len(original) {
			t.Errorf("path %d num_trades = %d, want %d", i, r.NumTrades, len(original))
		}
		if math.Abs(r.WinRate-expectedWinRate) > 1e-9 {
			t.Errorf("path %d win rate = %f, want %f", i, r.WinRate, expectedWinRate)
		}
	}
}

func TestPositionShuffleEmptyTrades(t *testing.T) {
	engine := NewEngine(1)

	results := engine.RunPositionShuffle(100)
	if len(results) != 0 {
		t.Errorf("empty trade list must yield zero paths, got %d", len(results))
	}
}

func TestReturnPermutationHeuristics(t *testing.T) {
	engine := NewEngine(7)
	engine.SetReturns(sampleReturns())

	results := engine.RunReturnPermutation(10)
	if len(results) != 10 {
		t.Fatalf("got %d paths, want 10", len(results))
	}

	for _, r := range results {
		if r.NumTrades != 60/20 {
			t.Errorf("num_trades = %d, want %d (fixed days/20 heuristic)", r.NumTrades, 60/20)
		}
		if r.WinRate != 50.0 {
			t.Errorf("win rate = %f, want fixed 50.0", r.WinRate)
		}
	}
}

func TestReturnPermutationEmptySeries(t *testing.T) {
	engine := NewEngine(7)

	if got := engine.RunReturnPermutation(10); len(got) != 0 {
		t.Errorf("empty return series must yield zero paths, got %d", len(got))
	}
}

func TestBootstrapSampleSize(t *testing.T) {
	trades := sampleTrades()
	engine := NewEngine(99)
	engine.SetTrades(trades)

	results := engine.RunBootstrap(30)
	if len(results) != 30 {
		t.Fatalf("got %d paths, want 30", len(results))
	}

	for i, r := range results {
		if r.NumTrades != len(trades) {
			t.Errorf("path %d drew %d trades, want %d", i, r.NumTrades, len(trades))
		}
	}
}

func TestBootstrapSingleElement(t *testing.T) {
	engine := NewEngine(3)
	engine.SetTrades([]Trade{{PnLPct: 10.0, IsWin: true}})

	results := engine.RunBootstrap(5)
	for _, r := range results {
		// 단일 원소 복원추출은 항상 그 원소
		want := totalReturnPct(baseCapital*1.10, baseCapital)
		if math.Abs(r.TotalReturnPct-want) > 1e-9 {
			t.Errorf("single-element bootstrap return = %f, want %f", r.TotalReturnPct, want)
		}
		if r.WinRate != 100.0 {
			t.Errorf("win rate = %f, want 100", r.WinRate)
		}
	}
}

func TestBootstrapUniformSelection(t *testing.T) {
	// 경험적 인덱스 선택 빈도가 1/n으로 수렴하는지 통계 검증
	pnls := []float64{1, 2, 3, 4} // distinct values stand in for indices
	trades := make([]Trade, len(pnls))
	for i, p := range pnls {
		trades[i] = Trade{PnLPct: p}
	}

	engine := NewEngine(123)
	engine.SetTrades(trades)
	fractions := engine.tradePnLFractions()

	counts := make(map[float64]int)
	draws := 0
	for i := 0; i < 2000; i++ {
		for j := 0; j < len(fractions); j++ {
			v := fractions[engine.rng.Intn(len(fractions))]
			counts[v]++
			draws++
		}
	}

	expected := float64(draws) / float64(len(pnls))
	for v, c := range counts {
		ratio := float64(c) / expected
		if ratio < 0.9 || ratio > 1.1 {
			t.Errorf("value %f drawn %d times, expected ~%f (ratio %f)", v, c, expected, ratio)
		}
	}
}

func TestRunAnalysisDeterminism(t *testing.T) {
	config := DefaultSimulationConfig()
	config.NumSimulations = 300
	config.Seed = 42

	run := func() Analysis {
		engine := NewEngine(config.Seed)
		engine.SetTrades(sampleTrades())
		engine.SetReturns(sampleReturns())
		return engine.RunAnalysis(config)
	}

	first := run()
	second := run()

	if !reflect.DeepEqual(first, second) {
		t.Error("identical seed and input must produce byte-identical analyses")
	}
}

func TestRunAnalysisPoolingAndSplit(t *testing.T) {
	engine := NewEngine(42)
	engine.SetTrades(sampleTrades())
	engine.SetReturns(sampleReturns())

	config := DefaultSimulationConfig()
	config.NumSimulations = 100 // 100/3 = 33 per generator, remainder dropped

	analysis := engine.RunAnalysis(config)

	if analysis.NumTrials != 99 {
		t.Errorf("num_trials = %d, want 99 (remainder silently dropped)", analysis.NumTrials)
	}
	if len(analysis.Simulations) != 99 {
		t.Errorf("pooled paths = %d, want 99", len(analysis.Simulations))
	}

	// 병합 순서: shuffle(8 trades) → permutation(60일/20=3) → bootstrap(8)
	if analysis.Simulations[0].NumTrades != 8 {
		t.Errorf("first block should be shuffle paths, num_trades = %d", analysis.Simulations[0].NumTrades)
	}
	if analysis.Simulations[33].NumTrades != 3 {
		t.Errorf("second block should be permutation paths, num_trades = %d", analysis.Simulations[33].NumTrades)
	}
	if analysis.Simulations[66].NumTrades != 8 {
		t.Errorf("third block should be bootstrap paths, num_trades = %d", analysis.Simulations[66].NumTrades)
	}

	// CI는 항상 p5/p95와 동일
	if analysis.CILower95 != analysis.Percentile5 || analysis.CIUpper95 != analysis.Percentile95 {
		t.Error("confidence interval must equal p5/p95 exactly")
	}

	if analysis.SeedUsed != 42 {
		t.Errorf("seed_used = %d, want 42", analysis.SeedUsed)
	}
}

func TestRunAnalysisHistogramInvariant(t *testing.T) {
	engine := NewEngine(7)
	engine.SetTrades(sampleTrades())
	engine.SetReturns(sampleReturns())

	analysis := engine.RunAnalysis(SimulationConfig{NumSimulations: 300})

	if analysis.DistributionMax > analysis.DistributionMin {
		total := 0
		for _, c := range analysis.ReturnDistribution {
			total += c
		}
		if total != len(analysis.Simulations) {
			t.Errorf("histogram counts sum to %d, want %d", total, len(analysis.Simulations))
		}
	}
}

func TestRunAnalysisNoInput(t *testing.T) {
	engine := NewEngine(5)

	analysis := engine.RunAnalysis(DefaultSimulationConfig())

	// 입력이 없으면 에러가 아니라 비어 있는 well-formed 리포트
	if len(analysis.Simulations) != 0 {
		t.Errorf("no input should yield zero paths, got %d", len(analysis.Simulations))
	}
	if analysis.Percentile50 != 0 || analysis.CIUpper95 != 0 {
		t.Error("statistics over empty pool must degrade to 0")
	}
	if len(analysis.ReturnDistribution) != 20 {
		t.Errorf("histogram must keep 20 bins, got %d", len(analysis.ReturnDistribution))
	}
}

func TestNewEngineZeroSeedIsRecorded(t *testing.T) {
	engine := NewEngine(0)
	if engine.Seed() == 0 {
		t.Error("seed 0 must be replaced with a generated non-zero seed")
	}
}

func TestSetDailyReturnsFromPrices(t *testing.T) {
	engine := NewEngine(1)
	engine.SetDailyReturnsFromPrices([]float64{100, 110, 99})

	want := []float64{0.10, -0.10}
	if len(engine.dailyReturns) != 2 {
		t.Fatalf("derived %d returns, want 2", len(engine.dailyReturns))
	}
	for i := range want {
		if math.Abs(engine.dailyReturns[i]-want[i]) > 1e-9 {
			t.Errorf("returns[%d] = %f, want %f", i, engine.dailyReturns[i], want[i])
		}
	}
}
