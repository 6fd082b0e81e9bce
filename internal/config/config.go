// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// サーバー設定
	Port    string // APIサーバーのポート番号
	GinMode string // Ginの実行モード (debug, release, test)

	// セッション設定
	SessionSecret string // セッションクッキー署名用の秘密鍵

	// 認証設定
	BcryptCost int // bcryptのコストファクター

	// MongoDB設定
	MongoURI string // MongoDB接続URI
	MongoDB  string // データベース名

	// アップロード設定
	UploadDir    string // 表紙画像の保存ディレクトリ
	MaxCoverSize int64  // 表紙画像の最大サイズ（バイト）

	// CORS設定
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り）

	// エラー互換モード
	// true の場合、すべての失敗を 200 + プレーンテキストで返します（旧実装互換）。
	CompatFlatErrors bool

	// メンテナンスジョブ設定
	QueueRedisURL        string // Asynq用Redis接続URL（空の場合はスイープ無効）
	SweepIntervalMinutes int    // 孤立表紙スイープの実行間隔（分）
	SweepGraceMinutes    int    // アップロード直後のファイルを守る猶予時間（分）
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	loadEnvFile()

	config := &Config{
		// サーバー設定
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		// セッション設定
		SessionSecret: getEnv("SESSION_SECRET", "librarysecret"),

		// 認証設定
		BcryptCost: getEnvAsInt("BCRYPT_COST", 10),

		// MongoDB設定
		MongoURI: getEnv("MONGO_URI", "mongodb://127.0.0.1:27017"),
		MongoDB:  getEnv("MONGO_DB", "libraryDB"),

		// アップロード設定
		UploadDir:    getEnv("UPLOAD_DIR", "public/uploads"),
		MaxCoverSize: getEnvAsInt64("MAX_COVER_SIZE", 10*1024*1024), // 10MB

		// CORS設定
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),

		// エラー互換モード
		CompatFlatErrors: getEnv("COMPAT_FLAT_ERRORS", "false") == "true",

		// メンテナンスジョブ設定
		QueueRedisURL:        getEnv("QUEUE_REDIS_URL", ""),
		SweepIntervalMinutes: getEnvAsInt("SWEEP_INTERVAL_MINUTES", 60),
		SweepGraceMinutes:    getEnvAsInt("SWEEP_GRACE_MINUTES", 60),
	}

	// 必須設定のバリデーション
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	// ローカル開発ではデフォルト値で動作する
	// 本番環境では厳格にチェックする想定
	if c.GinMode == "release" {
		if c.SessionSecret == "" || c.SessionSecret == "librarysecret" {
			return fmt.Errorf("SESSION_SECRET is required in release mode")
		}
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required in release mode")
		}
	}

	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost)
	}

	return nil
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt は環境変数を整数として取得します。
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsInt64 は環境変数を64ビット整数として取得します。
func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}
