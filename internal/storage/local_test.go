package storage

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bhoomimiglani/library-management-system/internal/store"
)

// pngBytes はPNGシグネチャで始まる最小のデータです。
var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func fileHeader(t *testing.T, filename string, data []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	fw, err := writer.CreateFormFile("cover", filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	form, err := multipart.NewReader(&buf, writer.Boundary()).ReadForm(32 << 20)
	if err != nil {
		t.Fatalf("failed to read form: %v", err)
	}
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["cover"][0]
}

func TestSaveImageReturnsPublicPath(t *testing.T) {
	local, err := NewLocal(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}

	path, err := local.Save(context.Background(), fileHeader(t, "dune.png", pngBytes))
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	if !strings.HasPrefix(path, PublicPrefix) {
		t.Fatalf("path = %q, want %s prefix", path, PublicPrefix)
	}
	if !strings.HasSuffix(path, ".png") {
		t.Fatalf("path = %q, want .png suffix", path)
	}

	name := strings.TrimPrefix(path, PublicPrefix)
	data, err := os.ReadFile(filepath.Join(local.Dir(), name))
	if err != nil {
		t.Fatalf("saved file missing: %v", err)
	}
	if !bytes.Equal(data, pngBytes) {
		t.Fatal("saved content does not match upload")
	}
}

func TestSaveUsesDetectedExtensionWhenMissing(t *testing.T) {
	local, err := NewLocal(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}

	path, err := local.Save(context.Background(), fileHeader(t, "cover", pngBytes))
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if !strings.HasSuffix(path, ".png") {
		t.Fatalf("path = %q, want detected .png suffix", path)
	}
}

func TestSaveRejectsNonImage(t *testing.T) {
	local, err := NewLocal(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}

	_, err = local.Save(context.Background(), fileHeader(t, "notes.txt", []byte("plain text, not an image")))

	var serr *store.Error
	if !errors.As(err, &serr) {
		t.Fatalf("expected *store.Error, got %v", err)
	}
	if serr.Kind != store.KindValidationFailed {
		t.Fatalf("kind = %s, want %s", serr.Kind, store.KindValidationFailed)
	}
}

func TestSaveRejectsOversizedFile(t *testing.T) {
	local, err := NewLocal(t.TempDir(), 4)
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}

	_, err = local.Save(context.Background(), fileHeader(t, "dune.png", pngBytes))

	var serr *store.Error
	if !errors.As(err, &serr) || serr.Kind != store.KindValidationFailed {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteRemovesFile(t *testing.T) {
	local, err := NewLocal(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}

	path, err := local.Save(context.Background(), fileHeader(t, "dune.png", pngBytes))
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	if err := local.Delete(context.Background(), path); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	name := strings.TrimPrefix(path, PublicPrefix)
	if _, err := os.Stat(filepath.Join(local.Dir(), name)); !os.IsNotExist(err) {
		t.Fatalf("expected file to be removed, stat err=%v", err)
	}

	// 既に存在しないパスの削除はエラーにしない
	if err := local.Delete(context.Background(), path); err != nil {
		t.Fatalf("second Delete returned error: %v", err)
	}
}
