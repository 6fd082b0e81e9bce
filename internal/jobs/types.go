// Package jobs は孤立した表紙ファイルを回収するメンテナンスジョブを提供します。
package jobs

import "time"

// Report はスイープ1回分の実行結果を表します。
type Report struct {
	JobID      string    `json:"jobId"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Scanned    int       `json:"scanned"`
	Removed    int       `json:"removed"`
	Errors     []string  `json:"errors,omitempty"`
}
