package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	config "agrasar-api/configs"
	"agrasar-api/pkg/app"
	"agrasar-api/pkg/models"

	"github.com/gin-gonic/gin"
)

var (
	engine  *gin.Engine
	initErr error
	once    sync.Once
)

// setupApp はGinアプリケーションを初期化します。
// サーバーレス環境では、リクエストごとに初期化が走らないようsync.Onceで一度だけ実行します。
func setupApp() (*gin.Engine, error) {
	once.Do(func() {
		// .envファイルはVercelの環境変数設定から読み込まれるため、ここではgodotenvを呼び出しません。
		cfg := config.LoadConfig()
		gin.SetMode(gin.ReleaseMode)

		logger, err := app.NewLogger(cfg)
		if err != nil {
			initErr = err
			return
		}
		a, err := app.New(context.Background(), cfg, logger)
		if err != nil {
			initErr = err
			return
		}
		engine = a.Router()
	})
	return engine, initErr
}

// Handler はVercelからのすべてのリクエストを処理するエントリーポイントです。
func Handler(w http.ResponseWriter, r *http.Request) {
	app, err := setupApp()
	if err != nil {
		log.Printf("❌ [Handler] 初期化に失敗しました: %v", err)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(models.ErrorResponse{Error: "service unavailable"})
		return
	}
	app.ServeHTTP(w, r)
}
