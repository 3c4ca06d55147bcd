package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/veritas/backend/pkg/config"
	"github.com/wonny/veritas/backend/pkg/database"
	"github.com/wonny/veritas/backend/pkg/redis"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "인프라 상태 점검",
	Long: `설정된 외부 의존성(PostgreSQL, Redis)의 연결 상태를 확인합니다.

표시 정보:
- Database: 연결 여부, 응답 시간, 커넥션 풀 현황
- Redis: 연결 여부 (결과 캐시용)

엔진 자체는 둘 다 없어도 동작하므로 미설정은 오류가 아님.

Example:
  go run ./cmd/veritas status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Veritas Infrastructure Status ===")
	fmt.Println()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	checkDatabase(ctx, cfg)
	fmt.Println()
	checkRedis(ctx, cfg)

	return nil
}

func checkDatabase(ctx context.Context, cfg *config.Config) {
	fmt.Println("🗄️  Database")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	db, err := database.New(cfg)
	if errors.Is(err, database.ErrNotConfigured) {
		fmt.Println("  Not configured (DATABASE_URL empty) — backtest lookup disabled")
		return
	}
	if err != nil {
		fmt.Printf("  ❌ Connection failed: %v\n", err)
		return
	}
	defer db.Close()

	health, err := db.HealthCheck(ctx)
	if err != nil {
		fmt.Printf("  ❌ Health check failed: %v\n", err)
		return
	}

	fmt.Println("  ✅ Connected")
	fmt.Printf("  %-18s %v\n", "Response time:", health.ResponseTime)
	fmt.Printf("  %-18s %d/%d (idle %d)\n", "Connections:",
		health.TotalConns, health.MaxConns, health.IdleConns)
}

func checkRedis(ctx context.Context, cfg *config.Config) {
	fmt.Println("🧰 Redis")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	client, err := redis.New(cfg)
	if err != nil {
		fmt.Printf("  ❌ Connection failed: %v\n", err)
		return
	}
	defer client.Close()

	if !client.Enabled() {
		fmt.Println("  Not configured (REDIS_ENABLED=false) — result cache disabled")
		return
	}

	start := time.Now()
	if err := client.Redis().Ping(ctx).Err(); err != nil {
		fmt.Printf("  ❌ Ping failed: %v\n", err)
		return
	}

	fmt.Println("  ✅ Connected")
	fmt.Printf("  %-18s %v\n", "Response time:", time.Since(start))
	fmt.Printf("  %-18s %s:%s\n", "Address:", cfg.Redis.Host, cfg.Redis.Port)
}
