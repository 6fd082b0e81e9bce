// Package storage は表紙画像の保存先を抽象化し、ローカル実装を提供します。
package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/bhoomimiglani/library-management-system/internal/store"
)

// PublicPrefix は表紙画像を配信する公開パスの接頭辞です。
const PublicPrefix = "/uploads/"

// Local はローカルファイルシステムへの表紙保存を実装します。
type Local struct {
	dir     string
	maxSize int64
}

// NewLocal は保存ディレクトリを作成して Local を返します。
func NewLocal(dir string, maxSize int64) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &Local{dir: dir, maxSize: maxSize}, nil
}

// Dir は保存ディレクトリのパスを返します。
func (l *Local) Dir() string { return l.dir }

// Save はアップロードされたファイルを検証して保存し、公開パスを返します。
// ファイル名はアップロード時刻（ミリ秒）と元の拡張子から生成されます。
// 画像以外のコンテンツは KindValidationFailed で拒否されます。
func (l *Local) Save(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	if l.maxSize > 0 && fh.Size > l.maxSize {
		return "", store.Invalid(fmt.Sprintf("cover file exceeds %d bytes", l.maxSize))
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded cover: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("failed to read uploaded cover: %w", err)
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", store.Invalid("cover must be an image file")
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if ext == "" {
		ext = mtype.Extension()
	}

	name := strconv.FormatInt(time.Now().UnixMilli(), 10) + ext
	dest := filepath.Join(l.dir, name)
	if _, err := os.Stat(dest); err == nil {
		// 同一ミリ秒の衝突時のみ乱数サフィックスを足す
		name = strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + uuid.NewString()[:8] + ext
		dest = filepath.Join(l.dir, name)
	}

	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write cover file: %w", err)
	}

	return PublicPrefix + name, nil
}

// Delete は公開パスで指定された表紙ファイルを削除します。
// 既に存在しない場合は何もしません。
func (l *Local) Delete(ctx context.Context, publicPath string) error {
	name := path.Base(publicPath)
	if name == "." || name == "/" || name == "" {
		return store.Invalid("invalid cover path")
	}

	err := os.Remove(filepath.Join(l.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete cover file: %w", err)
	}
	return nil
}
