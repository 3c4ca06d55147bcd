package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/veritas/backend/internal/montecarlo"
	"github.com/wonny/veritas/backend/internal/report"
	"github.com/wonny/veritas/backend/internal/strategy"
	"github.com/wonny/veritas/backend/pkg/config"
	"github.com/wonny/veritas/backend/pkg/database"
	"github.com/wonny/veritas/backend/pkg/logger"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Monte Carlo 분석 실행",
	Long: `백테스트 거래 내역을 Monte Carlo로 검증합니다.

입력 소스 (둘 중 하나):
- --trades trades.json   : 거래 내역 JSON 파일
- --backtest-id N        : DB에 저장된 백테스트 (DATABASE_URL 필요)

JSON 파일 형식:
  {"trades": [{"pnl_pct": 5.2, "is_win": true, ...}, ...],
   "prices": [70000, 70500, ...]}

Example:
  go run ./cmd/veritas analyze --trades trades.json
  go run ./cmd/veritas analyze --trades trades.json --simulations 50000 --seed 42
  go run ./cmd/veritas analyze --backtest-id 17 --json`,
	RunE: runAnalyze,
}

var (
	// Analyze flags
	analyzeTradesFile  string
	analyzeBacktestID  int64
	analyzeSimulations int
	analyzeSeed        int64
	analyzeCapital     float64
	analyzeJSON        bool
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Flags
	analyzeCmd.Flags().StringVar(&analyzeTradesFile, "trades", "", "거래 내역 JSON 파일")
	analyzeCmd.Flags().Int64Var(&analyzeBacktestID, "backtest-id", 0, "저장된 백테스트 ID")
	analyzeCmd.Flags().IntVar(&analyzeSimulations, "simulations", 0, "시뮬레이션 횟수 (기본: 설정값)")
	analyzeCmd.Flags().Int64Var(&analyzeSeed, "seed", 0, "난수 시드 (0이면 시간 기반)")
	analyzeCmd.Flags().Float64Var(&analyzeCapital, "capital", 0, "초기 자본 (기본: 100,000)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "전체 리포트를 JSON으로 출력")
}

// analyzeInput 파일 입력 형식
type analyzeInput struct {
	Trades []montecarlo.Trade `json:"trades"`
	Prices []float64          `json:"prices"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	input, err := loadAnalyzeInput(cfg, log)
	if err != nil {
		return err
	}

	if len(input.Trades) < 2 {
		return fmt.Errorf("at least 2 trades required, got %d", len(input.Trades))
	}

	simConfig := montecarlo.DefaultSimulationConfig()
	simConfig.NumSimulations = cfg.Simulation.DefaultNumSimulations
	simConfig.Seed = analyzeSeed
	if analyzeSimulations > 0 {
		simConfig.NumSimulations = analyzeSimulations
	}
	if analyzeCapital > 0 {
		simConfig.InitialCapital = analyzeCapital
	}

	engine := montecarlo.NewEngine(simConfig.Seed)
	engine.SetTrades(input.Trades)
	if len(input.Prices) > 1 {
		engine.SetPrices(input.Prices)
		engine.SetDailyReturnsFromPrices(input.Prices)
	}

	log.WithFields(map[string]interface{}{
		"num_trades":      len(input.Trades),
		"num_simulations": simConfig.NumSimulations,
	}).Info("Running Monte Carlo analysis")

	start := time.Now()
	analysis := engine.RunAnalysis(simConfig)
	elapsed := time.Since(start)

	original := strategy.MetricsFromTrades(input.Trades)
	rpt := report.Build(analysis, original, elapsed)

	if analyzeJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rpt)
	}

	printReport(&rpt)
	return nil
}

// loadAnalyzeInput 파일 또는 DB에서 trades/prices 로드
func loadAnalyzeInput(cfg *config.Config, log *logger.Logger) (*analyzeInput, error) {
	if analyzeTradesFile != "" {
		data, err := os.ReadFile(analyzeTradesFile)
		if err != nil {
			return nil, fmt.Errorf("read trades file: %w", err)
		}

		var input analyzeInput
		if err := json.Unmarshal(data, &input); err != nil {
			return nil, fmt.Errorf("parse trades file: %w", err)
		}
		return &input, nil
	}

	if analyzeBacktestID > 0 {
		db, err := database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		repo := strategy.NewRepository(db.Pool)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		trades, err := repo.LoadTrades(ctx, analyzeBacktestID)
		if err != nil {
			return nil, fmt.Errorf("load backtest %d: %w", analyzeBacktestID, err)
		}

		closes, err := repo.LoadCloses(ctx, analyzeBacktestID)
		if err != nil {
			log.WithError(err).Warn("Failed to load prices, continuing without return series")
			closes = nil
		}

		return &analyzeInput{Trades: trades, Prices: closes}, nil
	}

	return nil, fmt.Errorf("either --trades or --backtest-id is required")
}

// printReport 터미널용 요약 출력
func printReport(rpt *report.Report) {
	fmt.Println("=== Veritas Monte Carlo Analysis ===")
	fmt.Println()

	fmt.Println("📊 Original Strategy")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("%-22s %12.2f%%\n", "Return:", rpt.OriginalStrategy.ReturnPct)
	fmt.Printf("%-22s %12.2f\n", "Sharpe:", rpt.OriginalStrategy.SharpeRatio)
	fmt.Printf("%-22s %12.2f%%\n", "Max drawdown:", rpt.OriginalStrategy.MaxDrawdownPct)
	fmt.Println()

	fmt.Println("🎲 Simulated Distribution")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("%-22s %12d\n", "Trials:", rpt.Metadata.NumTrials)
	fmt.Printf("%-22s %12d\n", "Seed:", rpt.Metadata.SeedUsed)
	fmt.Printf("%-22s %12.2f%%\n", "Mean return:", rpt.Summary.MeanReturn)
	fmt.Printf("%-22s %12.2f%%\n", "p5:", rpt.Statistics.Percentiles.P5)
	fmt.Printf("%-22s %12.2f%%\n", "p50:", rpt.Statistics.Percentiles.P50)
	fmt.Printf("%-22s %12.2f%%\n", "p95:", rpt.Statistics.Percentiles.P95)
	fmt.Printf("%-22s [%.2f%%, %.2f%%]\n", "95% CI:",
		rpt.Statistics.ConfidenceInterval95.Lower, rpt.Statistics.ConfidenceInterval95.Upper)
	fmt.Println()

	fmt.Println("⚖️  Verdict")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("%-22s %12.2f%%\n", "p-value:", rpt.Statistics.PValueVsRandom)
	fmt.Printf("%-22s %12s\n", "Risk rating:", rpt.Summary.RiskRating)
	fmt.Printf("\n%s\n", rpt.Summary.Interpretation)
	fmt.Println()

	fmt.Println("⚠️  Risk")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("%-22s %12.2f%%\n", "VaR (95%):", rpt.RiskMetrics.VaR95)
	fmt.Printf("%-22s %12.2f%%\n", "CVaR (95%):", rpt.RiskMetrics.CVaR95)
	fmt.Printf("%-22s %12.2f%%\n", "Prob. of ruin:", rpt.RiskMetrics.ProbabilityOfRuin)

	if rpt.Performance != nil {
		fmt.Println()
		fmt.Printf("Completed in %.2fs (%.0f sims/sec)\n",
			rpt.Performance.ElapsedTimeSeconds, rpt.Performance.SimulationsPerSecond)
	}
}
