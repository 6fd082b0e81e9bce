package jobs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type stubCoverLister struct {
	paths []string
	err   error
}

func (s *stubCoverLister) CoverPaths(ctx context.Context) ([]string, error) {
	return s.paths, s.err
}

func writeFileWithAge(t *testing.T, dir, name string, age time.Duration) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	mtime := time.Now().Add(-age)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("failed to set mtime on %s: %v", name, err)
	}
	return path
}

func TestSweepRemovesOnlyOldOrphans(t *testing.T) {
	dir := t.TempDir()
	referenced := writeFileWithAge(t, dir, "referenced.png", 2*time.Hour)
	orphan := writeFileWithAge(t, dir, "orphan.png", 2*time.Hour)
	fresh := writeFileWithAge(t, dir, "fresh.png", time.Minute)

	lister := &stubCoverLister{paths: []string{"/uploads/referenced.png"}}
	sweeper := NewSweeper(lister, dir, time.Hour)

	report, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}

	if report.Scanned != 3 {
		t.Fatalf("scanned = %d, want 3", report.Scanned)
	}
	if report.Removed != 1 {
		t.Fatalf("removed = %d, want 1", report.Removed)
	}
	if len(report.Errors) != 0 {
		t.Fatalf("errors = %v", report.Errors)
	}
	if report.JobID == "" {
		t.Fatal("expected a job id")
	}

	if _, err := os.Stat(orphan); !os.IsNotExist(err) {
		t.Fatalf("orphan should be removed, stat err=%v", err)
	}
	for _, kept := range []string{referenced, fresh} {
		if _, err := os.Stat(kept); err != nil {
			t.Fatalf("%s should be kept: %v", kept, err)
		}
	}
}

func TestSweepKeepsEverythingWhenAllReferenced(t *testing.T) {
	dir := t.TempDir()
	writeFileWithAge(t, dir, "a.png", 2*time.Hour)
	writeFileWithAge(t, dir, "b.jpg", 2*time.Hour)

	lister := &stubCoverLister{paths: []string{"/uploads/a.png", "/uploads/b.jpg"}}
	sweeper := NewSweeper(lister, dir, time.Hour)

	report, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}
	if report.Removed != 0 {
		t.Fatalf("removed = %d, want 0", report.Removed)
	}
}

func TestSweepPropagatesListerError(t *testing.T) {
	lister := &stubCoverLister{err: errors.New("mongo down")}
	sweeper := NewSweeper(lister, t.TempDir(), time.Hour)

	if _, err := sweeper.Sweep(context.Background()); err == nil {
		t.Fatal("expected error when cover listing fails")
	}
}
