package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const lastSweepKey = "covers:last_sweep"

// ReportStore は直近のスイープ結果を Redis に保存します。
type ReportStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewReportStore は ReportStore を作成します。
func NewReportStore(rdb *redis.Client, ttl time.Duration) *ReportStore {
	return &ReportStore{
		rdb: rdb,
		ttl: ttl,
	}
}

// Save は最新のレポートを保存します。
func (s *ReportStore) Save(ctx context.Context, report *Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, lastSweepKey, payload, s.ttl).Err()
}

// Last は直近のレポートを取得します。まだ実行されていない場合は nil を返します。
func (s *ReportStore) Last(ctx context.Context) (*Report, error) {
	data, err := s.rdb.Get(ctx, lastSweepKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, err
	}
	return &report, nil
}
