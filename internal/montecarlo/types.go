package montecarlo

// =============================================================================
// Input Types
// =============================================================================

// Trade 청산 완료된 단일 포지션
// 백테스트 결과에서 넘어오는 값 그대로, 엔진은 읽기 전용으로 취급
type Trade struct {
	EntryPrice float64 `json:"entry_price"`
	ExitPrice  float64 `json:"exit_price"`
	DaysHeld   int     `json:"days_held"`
	PnLPct     float64 `json:"pnl_pct"` // 백분율 (5.0 = +5%)
	IsWin      bool    `json:"is_win"`
}

// =============================================================================
// Configuration
// =============================================================================

// SimulationConfig Monte Carlo 시뮬레이션 설정
// ⭐ SSOT: 재현성을 위해 모든 설정을 명시적으로 기록
// RiskPerTrade/ATRMultiplier/TaxRate와 use_* 토글은 현재 제너레이터가
// 소비하지 않음. 인터페이스 호환을 위해 유지 (제품 결정 전까지 동작 추가 금지)
type SimulationConfig struct {
	NumSimulations int     `json:"num_simulations"` // 시뮬레이션 횟수 (기본: 10000)
	Seed           int64   `json:"seed"`            // 재현성용 시드 (0=랜덤)
	InitialCapital float64 `json:"initial_capital"`
	RiskPerTrade   float64 `json:"risk_per_trade"`
	ATRMultiplier  float64 `json:"atr_multiplier"`
	TaxRate        float64 `json:"tax_rate"`

	UsePositionShuffle   bool `json:"use_position_shuffle"`
	UseReturnPermutation bool `json:"use_return_permutation"`
	UseBootstrap         bool `json:"use_bootstrap"`
}

// DefaultSimulationConfig 기본 시뮬레이션 설정
func DefaultSimulationConfig() SimulationConfig {
	return SimulationConfig{
		NumSimulations:       10000,
		Seed:                 0,
		InitialCapital:       100000.0,
		RiskPerTrade:         0.02,
		ATRMultiplier:        3.0,
		TaxRate:              0.002,
		UsePositionShuffle:   true,
		UseReturnPermutation: true,
		UseBootstrap:         true,
	}
}

// =============================================================================
// Result Types
// =============================================================================

// SimulationResult 경로 1개의 평가 결과
type SimulationResult struct {
	FinalValue     float64 `json:"final_value"`
	TotalReturnPct float64 `json:"total_return_pct"`
	MaxDrawdownPct float64 `json:"max_drawdown_pct"`
	NumTrades      int     `json:"num_trades"`
	WinRate        float64 `json:"win_rate"`     // 백분율
	SharpeRatio    float64 `json:"sharpe_ratio"` // 연환산 (√252)
}

// Analysis 전체 Monte Carlo 분석 결과
// RunAnalysis 호출당 1회 생성, 값으로 반환 (공유 가변 상태 없음)
type Analysis struct {
	Simulations []SimulationResult `json:"simulations"`

	// Statistical metrics
	PValueVsRandom    float64 `json:"p_value_strategy_vs_random"`
	PValueVsBootstrap float64 `json:"p_value_strategy_vs_bootstrap"`

	// Percentiles (pooled total_return_pct)
	Percentile5  float64 `json:"percentile_5"`
	Percentile25 float64 `json:"percentile_25"`
	Percentile50 float64 `json:"percentile_50"`
	Percentile75 float64 `json:"percentile_75"`
	Percentile95 float64 `json:"percentile_95"`

	// Confidence intervals
	// ⭐ SSOT: ci_lower_95/ci_upper_95는 항상 percentile_5/percentile_95와 동일
	CILower95 float64 `json:"ci_lower_95"`
	CIUpper95 float64 `json:"ci_upper_95"`

	// Original strategy metrics (비교 대상)
	OriginalReturn float64 `json:"original_return"`
	OriginalSharpe float64 `json:"original_sharpe"`
	OriginalMaxDD  float64 `json:"original_max_dd"`

	// Distribution histogram (20 bins)
	ReturnDistribution []int   `json:"return_distribution"`
	DistributionMin    float64 `json:"distribution_min"`
	DistributionMax    float64 `json:"distribution_max"`

	// Metadata
	SeedUsed  int64 `json:"seed_used"`
	NumTrials int   `json:"num_trials"`
}

// Returns pooled total_return_pct 추출
func (a *Analysis) Returns() []float64 {
	returns := make([]float64, len(a.Simulations))
	for i, sim := range a.Simulations {
		returns[i] = sim.TotalReturnPct
	}
	return returns
}
