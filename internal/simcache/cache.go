// Package simcache caches completed analysis reports in Redis.
//
// 동일한 (trades, config) 재요청을 가속하는 TTL 캐시 — 내구 저장소 아님.
// Redis가 비활성이면 모든 연산이 no-op으로 강등된다.
package simcache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wonny/veritas/backend/internal/montecarlo"
	"github.com/wonny/veritas/backend/internal/report"
	"github.com/wonny/veritas/backend/pkg/redis"
)

// DefaultTTL 분석 결과 캐시 보존 기간
const DefaultTTL = 1 * time.Hour

// Cache Monte Carlo 분석 결과 캐시
// ⭐ SSOT: 캐시 키 생성 규칙은 이 패키지에서만
type Cache struct {
	cache *redis.Cache
	ttl   time.Duration
}

// New creates a simulation result cache
func New(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		cache: redis.NewCache(client, "veritas"),
		ttl:   ttl,
	}
}

// cacheInput 키 생성에 들어가는 입력 전체
// 구조체 필드 순서가 고정되어 있어 json.Marshal이 결정적
// prices도 키에 포함 — return permutation 제너레이터의 입력이므로
// 가격이 다르면 분포도 달라진다
type cacheInput struct {
	Trades []montecarlo.Trade          `json:"trades"`
	Prices []float64                   `json:"prices"`
	Config montecarlo.SimulationConfig `json:"config"`
}

// Key (trades, prices, config)의 md5 해시 키 생성
func Key(trades []montecarlo.Trade, prices []float64, config montecarlo.SimulationConfig) (string, error) {
	data, err := json.Marshal(cacheInput{Trades: trades, Prices: prices, Config: config})
	if err != nil {
		return "", fmt.Errorf("marshal cache input: %w", err)
	}

	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:]), nil
}

// Get retrieves a cached report, if present
func (c *Cache) Get(ctx context.Context, key string) (*report.Report, bool, error) {
	var rpt report.Report
	found, err := c.cache.Get(ctx, analysisKey(key), &rpt)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}
	return &rpt, true, nil
}

// Set stores a report with the configured TTL
func (c *Cache) Set(ctx context.Context, key string, rpt *report.Report) error {
	return c.cache.Set(ctx, analysisKey(key), rpt, c.ttl)
}

func analysisKey(hash string) string {
	return fmt.Sprintf("montecarlo:analysis:%s", hash)
}
