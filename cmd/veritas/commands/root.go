package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "veritas",
	Short: "Veritas - Monte Carlo 전략 검증 엔진",
	Long: `Veritas CLI

백테스트 결과가 실력인지 운인지 판별하는 Monte Carlo 검증 엔진.
포지션 셔플 / 수익률 퍼뮤테이션 / 부트스트랩 3종 리샘플링으로
원본 전략을 무작위 대체 가설과 비교한다.

Usage:
  go run ./cmd/veritas [command]

Examples:
  go run ./cmd/veritas api
  go run ./cmd/veritas analyze --trades trades.json
  go run ./cmd/veritas status`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
