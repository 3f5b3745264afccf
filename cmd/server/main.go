package main

import (
	"context"
	"log"

	config "agrasar-api/configs"
	"agrasar-api/pkg/app"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// .envファイルを読み込み
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	// 設定の読み込み
	cfg := config.LoadConfig()
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	logger, err := app.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// サービスの初期化
	a, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("アプリケーションの初期化に失敗しました", zap.Error(err))
	}
	defer a.Close()

	r := a.Router()

	addr := ":" + cfg.Port
	logger.Info("Starting Agrasar API server", zap.String("addr", addr), zap.String("llm_provider", cfg.LLMProvider))
	if err := r.Run(addr); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}
