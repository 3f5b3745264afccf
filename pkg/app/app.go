// Package app は設定からサービス一式を組み立てます。
// 常駐サーバー、サーバーレス関数、CLIの全てがここを経由して同じ構成で起動します。
package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	config "agrasar-api/configs"
	"agrasar-api/pkg/handlers"
	"agrasar-api/pkg/knowledge"
	"agrasar-api/pkg/llm"
	"agrasar-api/pkg/llm/gemini"
	"agrasar-api/pkg/llm/openai"
	"agrasar-api/pkg/services"
	"agrasar-api/pkg/store"
	"agrasar-api/pkg/store/memory"
	"agrasar-api/pkg/store/postgres"
)

// App は組み立て済みのアプリケーションです。
type App struct {
	Config     *config.Config
	Logger     *zap.Logger
	Villages   store.VillageStore
	Forecasts  store.ForecastStore
	Pinger     store.Pinger
	Forecaster *services.ForecastService
	Chat       *services.ChatService
	Monitoring *services.MonitoringService
	Schemes    *services.SchemeCatalog
	Field      *services.FieldService
	// Knowledge はQDRANT_URLが設定されている場合のみ作成される
	Knowledge *knowledge.Retriever

	closers []func()
}

// NewLogger は環境に応じたzapロガーを作成します。
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.IsDevelopment() {
		zcfg = zap.NewDevelopmentConfig()
	}
	if cfg.LogLevel != "" {
		level, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
		}
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}
	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// NewGateway は設定されたプロバイダの言語モデルゲートウェイを作成します。
func NewGateway(ctx context.Context, cfg *config.Config) (llm.Gateway, error) {
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		return gemini.NewClient(ctx, gemini.Options{
			APIKey:         cfg.LLMAPIKey,
			Model:          cfg.LLMModel,
			BaseURL:        cfg.LLMGatewayURL,
			EmbeddingModel: cfg.EmbeddingModel,
		})
	case config.ProviderOpenAI, "":
		return openai.NewClient(openai.Options{
			BaseURL:         cfg.LLMGatewayURL,
			APIKey:          cfg.LLMAPIKey,
			Model:           cfg.LLMModel,
			AzureDeployment: cfg.AzureOpenAIDeployment,
			AzureAPIVersion: cfg.AzureOpenAIAPIVersion,
			EmbeddingModel:  cfg.EmbeddingModel,
		}), nil
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLMProvider)
	}
}

// New は設定からアプリケーションを組み立てます。
// DATABASE_URL が未設定ならシードデータ入りのメモリストアを使います。
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	prompt, err := config.LoadSystemPrompt(cfg.SystemPromptPath)
	if err != nil {
		return nil, err
	}
	gateway, err := NewGateway(ctx, cfg)
	if err != nil {
		return nil, err
	}
	schemes, err := config.LoadSchemes(cfg.SchemesPath)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Logger: logger}
	var fieldStores services.FieldStores
	if cfg.DatabaseURL != "" {
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)
		a.Villages = postgres.NewVillageRepository(pool)
		a.Forecasts = postgres.NewForecastRepository(pool)
		a.Pinger = postgres.NewChecker(pool)
		field := postgres.NewFieldRepository(pool)
		fieldStores = services.FieldStores{Assets: field, WorkOrders: field, Incidents: field, Applications: field}
		logger.Info("PostgreSQLストアを使用します")
	} else {
		seed, err := config.LoadSeed("")
		if err != nil {
			return nil, err
		}
		mem := memory.New(seed.Villages...)
		for _, asset := range seed.Assets {
			mem.PutAsset(asset)
		}
		for _, order := range seed.WorkOrders {
			mem.PutWorkOrder(order)
		}
		a.Villages, a.Forecasts, a.Pinger = mem, mem, mem
		fieldStores = services.FieldStores{Assets: mem, WorkOrders: mem, Incidents: mem, Applications: mem}
		logger.Warn("DATABASE_URL が未設定のためメモリストアで起動します", zap.Int("villages", len(seed.Villages)))
	}
	fieldStores.Villages = a.Villages

	a.Forecaster = services.NewForecastService(a.Villages, a.Forecasts, gateway, prompt, logger.Named("forecast"))
	a.Chat = services.NewChatService(gateway, prompt, logger.Named("chat"))
	a.Monitoring = services.NewMonitoringService(logger.Named("http"))
	a.Schemes = services.NewSchemeCatalog(schemes)
	a.Field = services.NewFieldService(fieldStores, logger.Named("field"))

	if cfg.QdrantURL != "" {
		embedder, ok := gateway.(llm.Embedder)
		if !ok {
			a.Close()
			return nil, fmt.Errorf("LLM provider %q does not support embeddings", cfg.LLMProvider)
		}
		index, err := knowledge.DialQdrant(cfg.QdrantURL, cfg.QdrantAPIKey, cfg.QdrantCollection)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = index.Close() })
		a.Knowledge = knowledge.NewRetriever(embedder, index, logger.Named("knowledge"))
		a.Chat.UseRetriever(a.Knowledge)
		logger.Info("スキーム参照情報の検索を有効にしました", zap.String("collection", cfg.QdrantCollection))
	}
	return a, nil
}

// Router はHTTPルーターを返します。
func (a *App) Router() *gin.Engine {
	return handlers.NewRouter(handlers.Dependencies{
		Config:        a.Config,
		Forecasts:     a.Forecaster,
		Chat:          a.Chat,
		Monitoring:    a.Monitoring,
		Schemes:       a.Schemes,
		Field:         a.Field,
		VillageStore:  a.Villages,
		ForecastStore: a.Forecasts,
		Pinger:        a.Pinger,
	})
}

// Close は保持しているリソースを解放します。
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	_ = a.Logger.Sync()
}
