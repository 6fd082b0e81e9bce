package main

import (
	"log"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/bhoomimiglani/library-management-system/internal/config"
	"github.com/bhoomimiglani/library-management-system/internal/jobs"
)

// setupJobs は孤立表紙スイープのマネージャーを構築します。
func setupJobs(cfg *config.Config, books jobs.CoverLister) (*jobs.Manager, error) {
	opt, err := redis.ParseURL(cfg.QueueRedisURL)
	if err != nil {
		return nil, err
	}
	redisClient := redis.NewClient(opt)

	interval := time.Duration(cfg.SweepIntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = time.Hour
	}
	grace := time.Duration(cfg.SweepGraceMinutes) * time.Minute
	if grace <= 0 {
		grace = time.Hour
	}

	sweeper := jobs.NewSweeper(books, cfg.UploadDir, grace)
	// レポートは次のスイープまで読めれば十分なので、実行間隔の2倍だけ保持する
	reportStore := jobs.NewReportStore(redisClient, 2*interval)

	return jobs.NewManager(cfg.QueueRedisURL, interval, sweeper, reportStore, log.Default())
}
