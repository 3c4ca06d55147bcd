package strategy

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/veritas/backend/internal/montecarlo"
)

// Repository handles stored backtest data access
// ⭐ SSOT: 백테스트 조회는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new strategy repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Backtest 저장된 백테스트 런 메타데이터
type Backtest struct {
	ID        int64     `json:"id"`
	Symbol    string    `json:"symbol"`
	Strategy  string    `json:"strategy"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	CreatedAt time.Time `json:"created_at"`
}

// GetBacktest retrieves backtest metadata by id
func (r *Repository) GetBacktest(ctx context.Context, backtestID int64) (*Backtest, error) {
	query := `
		SELECT id, symbol, strategy, start_date, end_date, created_at
		FROM backtest.runs
		WHERE id = $1
	`

	var bt Backtest
	err := r.pool.QueryRow(ctx, query, backtestID).Scan(
		&bt.ID, &bt.Symbol, &bt.Strategy, &bt.StartDate, &bt.EndDate, &bt.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("query backtest %d: %w", backtestID, err)
	}

	return &bt, nil
}

// LoadTrades retrieves the closed trades of a backtest in execution order
func (r *Repository) LoadTrades(ctx context.Context, backtestID int64) ([]montecarlo.Trade, error) {
	query := `
		SELECT entry_price, exit_price, days_held, pnl_pct, is_win
		FROM backtest.trades
		WHERE backtest_id = $1
		ORDER BY seq
	`

	rows, err := r.pool.Query(ctx, query, backtestID)
	if err != nil {
		return nil, fmt.Errorf("query trades for backtest %d: %w", backtestID, err)
	}
	defer rows.Close()

	trades := make([]montecarlo.Trade, 0)
	for rows.Next() {
		var t montecarlo.Trade
		if err := rows.Scan(&t.EntryPrice, &t.ExitPrice, &t.DaysHeld, &t.PnLPct, &t.IsWin); err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trades: %w", err)
	}

	return trades, nil
}

// LoadCloses retrieves the daily closing prices covering a backtest period
// 수익률 파생은 엔진(SetDailyReturnsFromPrices)에서 수행
func (r *Repository) LoadCloses(ctx context.Context, backtestID int64) ([]float64, error) {
	query := `
		SELECT p.close
		FROM backtest.daily_prices p
		JOIN backtest.runs b ON b.id = $1
		WHERE p.symbol = b.symbol
		  AND p.trade_date BETWEEN b.start_date AND b.end_date
		ORDER BY p.trade_date
	`

	rows, err := r.pool.Query(ctx, query, backtestID)
	if err != nil {
		return nil, fmt.Errorf("query closes for backtest %d: %w", backtestID, err)
	}
	defer rows.Close()

	closes := make([]float64, 0)
	for rows.Next() {
		var c float64
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan close: %w", err)
		}
		closes = append(closes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate closes: %w", err)
	}

	return closes, nil
}
