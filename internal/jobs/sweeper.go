package jobs

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// CoverLister は書籍が参照している表紙パスの列挙を提供します。
type CoverLister interface {
	CoverPaths(ctx context.Context) ([]string, error)
}

// Sweeper はアップロードディレクトリを走査し、どの書籍からも参照されず
// 猶予時間を過ぎた表紙ファイルを削除します。
// 猶予時間は、書籍ドキュメントが確定する前のアップロード直後のファイルを守ります。
type Sweeper struct {
	books CoverLister
	dir   string
	grace time.Duration
}

// NewSweeper は Sweeper を作成します。
func NewSweeper(books CoverLister, dir string, grace time.Duration) *Sweeper {
	return &Sweeper{
		books: books,
		dir:   dir,
		grace: grace,
	}
}

// Sweep はスイープを1回実行し、レポートを返します。
// 個々のファイル削除の失敗はレポートに記録し、走査は継続します。
func (s *Sweeper) Sweep(ctx context.Context) (*Report, error) {
	report := &Report{
		JobID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}

	referenced, err := s.referencedNames(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload dir: %w", err)
	}

	cutoff := time.Now().Add(-s.grace)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		report.Scanned++

		if referenced[entry.Name()] {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", entry.Name(), err))
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", entry.Name(), err))
			continue
		}
		report.Removed++
	}

	report.FinishedAt = time.Now().UTC()
	return report, nil
}

func (s *Sweeper) referencedNames(ctx context.Context) (map[string]bool, error) {
	paths, err := s.books.CoverPaths(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list referenced covers: %w", err)
	}

	names := make(map[string]bool, len(paths))
	for _, p := range paths {
		names[path.Base(p)] = true
	}
	return names, nil
}
