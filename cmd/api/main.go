// Package main はライブラリカタログサーバーのエントリーポイントです。
package main

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/bhoomimiglani/library-management-system/internal/auth"
	"github.com/bhoomimiglani/library-management-system/internal/book"
	"github.com/bhoomimiglani/library-management-system/internal/config"
	"github.com/bhoomimiglani/library-management-system/internal/storage"
	"github.com/bhoomimiglani/library-management-system/internal/store/mongodb"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	// MongoDBへの接続と一意インデックスの作成
	ctx := context.Background()
	db, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("Failed to connect to mongodb: %v", err)
	}
	defer db.Close(ctx)

	if err := db.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}

	// 表紙画像の保存先を初期化
	covers, err := storage.NewLocal(cfg.UploadDir, cfg.MaxCoverSize)
	if err != nil {
		log.Fatalf("Failed to init cover storage: %v", err)
	}

	// Ginルーターの初期化（デフォルトミドルウェア: Logger, Recovery）
	router := gin.Default()

	// セッションストアの設定（クッキー署名鍵は必須）
	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.GinMode == gin.ReleaseMode,
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions(auth.SessionCookieName, sessionStore))

	// CORSミドルウェアの設定
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.CORSAllowedOrigins, ",")
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	// テンプレートと静的ファイルの配信
	router.LoadHTMLGlob("web/templates/*.html")
	router.Static("/uploads", covers.Dir())

	// ルーティングの設定
	setupRoutes(router, cfg, db, covers)

	// 孤立表紙スイープワーカーの起動（Redis設定がある場合のみ）
	if cfg.QueueRedisURL != "" {
		manager, err := setupJobs(cfg, db.Books())
		if err != nil {
			log.Fatalf("Failed to setup sweep jobs: %v", err)
		}
		manager.Start()
		defer manager.Shutdown(ctx)
	}

	// サーバーの起動
	addr := ":" + cfg.Port
	log.Printf("Starting library server on %s (mode: %s)", addr, cfg.GinMode)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "library-catalog",
		"version": "0.1.0",
	})
}

// setupRoutes は認証まわりと蔵書ルートの配線を行います。
func setupRoutes(router *gin.Engine, cfg *config.Config, db *mongodb.Store, covers *storage.Local) {
	// まずは誰でも叩けるヘルスチェックを登録
	router.GET("/health", handleHealth)

	authManager := auth.NewManager(db.Users(), auth.Options{
		BcryptCost:       cfg.BcryptCost,
		CompatFlatErrors: cfg.CompatFlatErrors,
	})

	// 登録・ログイン・ログアウトはガードなし
	router.GET("/register", authManager.ShowRegister)
	router.POST("/register", authManager.Register)
	router.GET("/login", authManager.ShowLogin)
	router.POST("/login", authManager.Login)
	router.GET("/logout", authManager.Logout)

	// 蔵書管理ルートはすべてログイン必須
	opts := book.Options{CompatFlatErrors: cfg.CompatFlatErrors}
	books := db.Books()

	protected := router.Group("")
	protected.Use(authManager.RequireLogin())
	{
		protected.GET("/", book.ListHandler(books, opts))
		protected.GET("/add", book.AddFormHandler())
		protected.POST("/add", book.AddHandler(books, covers, opts))
		protected.GET("/edit/:id", book.EditFormHandler(books, opts))
		protected.POST("/edit/:id", book.EditHandler(books, covers, opts))
		protected.GET("/delete/:id", book.DeleteHandler(books, opts))
		protected.POST("/issue/:id", book.IssueHandler(books, opts))
		protected.GET("/return/:id", book.ReturnHandler(books, opts))
	}
}
