package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/wonny/veritas/backend/internal/montecarlo"
	"github.com/wonny/veritas/backend/internal/report"
	"github.com/wonny/veritas/backend/internal/simcache"
	"github.com/wonny/veritas/backend/internal/strategy"
	"github.com/wonny/veritas/backend/pkg/config"
	"github.com/wonny/veritas/backend/pkg/logger"
)

// Request limits
// 운 vs 실력 판별이 의미를 가지려면 최소 2거래, 동기 실행이라 상한도 강제
const (
	minTrades         = 2
	maxTrades         = 10000
	maxPrices         = 100000
	minSimulations    = 100
	minInitialCapital = 1000.0
	maxInitialCapital = 100000000.0
	quickSimulations  = 1000
)

// MonteCarloHandler handles Monte Carlo analysis endpoints
// ⭐ SSOT: 분석 API 핸들러는 이 구조체에서만
type MonteCarloHandler struct {
	cfg    *config.Config
	repo   *strategy.Repository // nil이면 backtest_id 조회 불가
	cache  *simcache.Cache      // nil이면 캐시 없이 동작
	logger *logger.Logger
}

// NewMonteCarloHandler creates a new Monte Carlo handler
func NewMonteCarloHandler(cfg *config.Config, repo *strategy.Repository, cache *simcache.Cache, log *logger.Logger) *MonteCarloHandler {
	return &MonteCarloHandler{
		cfg:    cfg,
		repo:   repo,
		cache:  cache,
		logger: log,
	}
}

// AnalyzeRequest represents a Monte Carlo analysis request
type AnalyzeRequest struct {
	Trades []montecarlo.Trade `json:"trades"`
	Prices []float64          `json:"prices"`

	BacktestID *int64 `json:"backtest_id,omitempty"` // 저장된 백테스트로 trades/prices 대체

	NumSimulations *int     `json:"num_simulations,omitempty"`
	Seed           *int64   `json:"seed,omitempty"`
	InitialCapital *float64 `json:"initial_capital,omitempty"`

	// 생략하면 trades에서 원본 순서 재생으로 계산
	OriginalReturn *float64 `json:"original_return,omitempty"`
	OriginalSharpe *float64 `json:"original_sharpe,omitempty"`
	OriginalMaxDD  *float64 `json:"original_max_dd,omitempty"`
}

// Analyze runs a full Monte Carlo analysis
// POST /api/backtest/montecarlo
func (h *MonteCarloHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	h.analyze(w, r, 0)
}

// AnalyzeQuick runs a fast 1,000-simulation preview
// POST /api/backtest/montecarlo/quick
func (h *MonteCarloHandler) AnalyzeQuick(w http.ResponseWriter, r *http.Request) {
	h.analyze(w, r, quickSimulations)
}

func (h *MonteCarloHandler) analyze(w http.ResponseWriter, r *http.Request, forcedSimulations int) {
	ctx := r.Context()

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Request body is required")
		return
	}

	// 저장된 백테스트 조회 (인라인 trades 대신)
	if req.BacktestID != nil {
		if h.repo == nil {
			respondError(w, http.StatusServiceUnavailable, "Backtest lookup requires a configured database")
			return
		}

		trades, err := h.repo.LoadTrades(ctx, *req.BacktestID)
		if err != nil {
			h.logger.WithError(err).Error("Failed to load backtest trades")
			respondError(w, http.StatusNotFound, fmt.Sprintf("Backtest %d not found", *req.BacktestID))
			return
		}
		req.Trades = trades

		closes, err := h.repo.LoadCloses(ctx, *req.BacktestID)
		if err != nil {
			h.logger.WithError(err).Warn("Failed to load backtest prices, continuing without return series")
		} else {
			req.Prices = closes
		}
	}

	if forcedSimulations > 0 {
		req.NumSimulations = &forcedSimulations
	}

	simConfig, validationErrors := h.buildConfig(&req)
	if len(validationErrors) > 0 {
		h.logger.WithField("details", validationErrors).Warn("Monte Carlo validation failed")
		respondValidationErrors(w, validationErrors)
		return
	}

	// 캐시는 결정적 실행(명시적 시드)에서만 의미가 있음
	cacheKey := ""
	if h.cache != nil && simConfig.Seed != 0 {
		key, err := simcache.Key(req.Trades, req.Prices, simConfig)
		if err == nil {
			cacheKey = key
			if cached, found, err := h.cache.Get(ctx, cacheKey); err == nil && found {
				h.logger.WithField("key", cacheKey).Debug("Monte Carlo cache hit")
				respondJSON(w, http.StatusOK, cached)
				return
			}
		}
	}

	h.logger.WithFields(map[string]interface{}{
		"num_simulations": simConfig.NumSimulations,
		"num_trades":      len(req.Trades),
		"num_prices":      len(req.Prices),
	}).Info("Starting Monte Carlo analysis")

	engine := montecarlo.NewEngine(simConfig.Seed)
	engine.SetTrades(req.Trades)
	if len(req.Prices) > 1 {
		engine.SetPrices(req.Prices)
		engine.SetDailyReturnsFromPrices(req.Prices)
	}

	start := time.Now()
	analysis := engine.RunAnalysis(simConfig)
	elapsed := time.Since(start)

	original := h.originalMetrics(&req)
	rpt := report.Build(analysis, original, elapsed)

	if h.cache != nil && cacheKey != "" {
		if err := h.cache.Set(ctx, cacheKey, &rpt); err != nil {
			h.logger.WithError(err).Warn("Failed to cache analysis report")
		}
	}

	h.logger.WithFields(map[string]interface{}{
		"num_trials": analysis.NumTrials,
		"elapsed":    elapsed,
	}).Info("Monte Carlo analysis complete")

	respondJSON(w, http.StatusOK, rpt)
}

// buildConfig validates the request and assembles the simulation config
// 오류는 전부 모아 한 번에 반환 (routes의 validation 계약)
func (h *MonteCarloHandler) buildConfig(req *AnalyzeRequest) (montecarlo.SimulationConfig, []string) {
	var errs []string

	if len(req.Trades) < minTrades {
		errs = append(errs, fmt.Sprintf("At least %d trades required for Monte Carlo analysis", minTrades))
	} else if len(req.Trades) > maxTrades {
		errs = append(errs, fmt.Sprintf("Maximum %d trades allowed", maxTrades))
	}

	if len(req.Prices) > maxPrices {
		errs = append(errs, fmt.Sprintf("Maximum %d price points allowed", maxPrices))
	}

	simConfig := montecarlo.DefaultSimulationConfig()
	simConfig.NumSimulations = h.cfg.Simulation.DefaultNumSimulations

	if req.NumSimulations != nil {
		n := *req.NumSimulations
		if n < minSimulations || n > h.cfg.Simulation.MaxNumSimulations {
			errs = append(errs, fmt.Sprintf("Number of simulations must be between %d and %d", minSimulations, h.cfg.Simulation.MaxNumSimulations))
		} else {
			simConfig.NumSimulations = n
		}
	}

	if req.Seed != nil {
		if *req.Seed < 0 {
			errs = append(errs, "Seed must be a non-negative integer")
		} else {
			simConfig.Seed = *req.Seed
		}
	}

	if req.InitialCapital != nil {
		c := *req.InitialCapital
		if c < minInitialCapital || c > maxInitialCapital {
			errs = append(errs, fmt.Sprintf("Initial capital must be between %.0f and %.0f", minInitialCapital, maxInitialCapital))
		} else {
			simConfig.InitialCapital = c
		}
	}

	if req.OriginalReturn != nil && (*req.OriginalReturn < -1000 || *req.OriginalReturn > 1000) {
		errs = append(errs, "Original return must be between -1000% and 1000%")
	}

	if req.OriginalSharpe != nil && (*req.OriginalSharpe < -100 || *req.OriginalSharpe > 100) {
		errs = append(errs, "Original Sharpe ratio must be between -100 and 100")
	}

	if req.OriginalMaxDD != nil && (*req.OriginalMaxDD < -100 || *req.OriginalMaxDD > 0) {
		errs = append(errs, "Original max drawdown must be between -100% and 0%")
	}

	return simConfig, errs
}

// originalMetrics resolves the observed strategy metrics for comparison
// 요청에 명시된 값이 우선, 없으면 원본 순서 재생으로 계산
func (h *MonteCarloHandler) originalMetrics(req *AnalyzeRequest) strategy.Metrics {
	computed := strategy.MetricsFromTrades(req.Trades)

	if req.OriginalReturn != nil {
		computed.ReturnPct = *req.OriginalReturn
	}
	if req.OriginalSharpe != nil {
		computed.SharpeRatio = *req.OriginalSharpe
	}
	if req.OriginalMaxDD != nil {
		computed.MaxDrawdownPct = *req.OriginalMaxDD
	}

	return computed
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondValidationErrors writes the full validation error list
func respondValidationErrors(w http.ResponseWriter, details []string) {
	respondJSON(w, http.StatusBadRequest, map[string]interface{}{
		"error":   "Validation failed",
		"details": details,
	})
}
