package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/veritas/backend/internal/api"
	"github.com/wonny/veritas/backend/internal/api/handlers"
	"github.com/wonny/veritas/backend/internal/simcache"
	"github.com/wonny/veritas/backend/internal/strategy"
	"github.com/wonny/veritas/backend/pkg/config"
	"github.com/wonny/veritas/backend/pkg/database"
	"github.com/wonny/veritas/backend/pkg/logger"
	"github.com/wonny/veritas/backend/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `Monte Carlo 분석 REST API 서버를 시작합니다.

이 명령어는:
- HTTP API 서버 시작
- Monte Carlo 분석 엔드포인트 제공
- DB/Redis는 설정된 경우에만 연결 (없어도 동작)

Endpoints:
  GET  /health                          - Health check
  POST /api/backtest/montecarlo         - 전체 분석
  POST /api/backtest/montecarlo/quick   - 빠른 분석 (1,000회 고정)

Example:
  go run ./cmd/veritas api
  go run ./cmd/veritas api --port 8090`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: 설정값)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Veritas API Server ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Override port if flag is set
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Connect to database (optional)
	var repo *strategy.Repository
	db, err := database.New(cfg)
	switch {
	case err == nil:
		defer db.Close()
		repo = strategy.NewRepository(db.Pool)
		log.Info("Connected to database")
	case errors.Is(err, database.ErrNotConfigured):
		log.Warn("DATABASE_URL not set, backtest lookup disabled")
	default:
		return fmt.Errorf("connect to database: %w", err)
	}

	// 4. Connect to Redis (optional, disabled면 no-op)
	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	var cache *simcache.Cache
	if redisClient.Enabled() {
		cache = simcache.New(redisClient, cfg.Simulation.CacheTTL)
		log.Info("Connected to Redis, result cache enabled")
	} else {
		log.Warn("Redis disabled, result cache off")
	}

	// 5. Create handler
	mcHandler := handlers.NewMonteCarloHandler(cfg, repo, cache, log)

	// 6. Create router
	router := api.NewRouter(mcHandler, log, cfg.Simulation.RateLimitPerMinute)

	// 7. Create server
	server := api.New(cfg, log, router)

	// 8. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  POST /api/backtest/montecarlo")
	fmt.Println("  POST /api/backtest/montecarlo/quick")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
