package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	config "agrasar-api/configs"
	"agrasar-api/pkg/services"
	"agrasar-api/pkg/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSAllowHeaders はブラウザクライアント（Supabase SDK互換）が送るヘッダです。
var CORSAllowHeaders = []string{"authorization", "x-client-info", "apikey", "content-type"}

// Dependencies はルーターが必要とするサービスとストアです。
type Dependencies struct {
	Config        *config.Config
	Forecasts     *services.ForecastService
	Chat          *services.ChatService
	Monitoring    *services.MonitoringService
	Schemes       *services.SchemeCatalog
	Field         *services.FieldService
	VillageStore  store.VillageStore
	ForecastStore store.ForecastStore
	// Pinger はヘルスチェックでの依存先確認に使う（nil可）
	Pinger store.Pinger
}

// NewRouter はGinルーターを構築します。常駐サーバーとサーバーレス関数の両方で共有します。
func NewRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(deps.Monitoring.LoggingMiddleware())
	r.Use(cors.New(corsConfig()))

	forecastHandler := NewForecastHandler(deps.Forecasts, deps.VillageStore, deps.ForecastStore)
	chatHandler := NewChatHandler(deps.Chat)
	villageHandler := NewVillageHandler(deps.VillageStore)
	schemeHandler := NewSchemeHandler(deps.Schemes)
	fieldHandler := NewFieldHandler(deps.Field)
	adminHandler := NewAdminHandler(deps.Config, deps.Pinger)
	monitoringHandler := NewMonitoringHandler(deps.Monitoring)

	// Origin ヘッダの無いプリフライトもCORSミドルウェアと同じ応答にする
	r.OPTIONS("/*path", Preflight)

	// ヘルスチェックエンドポイント
	r.GET("/health", adminHandler.HealthCheck)

	auth := APIKeyAuth(deps.Config.APIKey)

	// Supabase Edge Functions 互換のパス
	functions := r.Group("/functions/v1")
	functions.Use(auth, adminHandler.MaintenanceGuard())
	{
		functions.POST("/generate-forecast", forecastHandler.GenerateForecast)
		functions.POST("/gramsathi-chat", chatHandler.Chat)
	}

	v1 := r.Group("/api/v1")
	v1.Use(auth, adminHandler.MaintenanceGuard())
	{
		v1.POST("/chat", chatHandler.Chat)

		villages := v1.Group("/villages")
		{
			villages.GET("", villageHandler.ListVillages)
			villages.GET("/:id", villageHandler.GetVillage)
		}

		schemes := v1.Group("/schemes")
		{
			schemes.GET("", schemeHandler.ListSchemes)
			schemes.GET("/:id", schemeHandler.GetScheme)
		}

		// 市民からの受付
		v1.POST("/incidents", fieldHandler.ReportIncident)
		v1.GET("/incidents", fieldHandler.ListIncidents)
		v1.POST("/job-applications", fieldHandler.ApplyForJob)
		v1.GET("/job-applications", fieldHandler.ListJobApplications)

		// 現地データ
		v1.GET("/work-orders", fieldHandler.ListWorkOrders)
		v1.GET("/assets", fieldHandler.ListAssets)
		v1.GET("/summary", fieldHandler.GetSummary)

		forecasts := v1.Group("/forecasts")
		{
			forecasts.POST("/generate", forecastHandler.GenerateForecast)
			forecasts.GET("", forecastHandler.ListForecasts)
			forecasts.GET("/export", forecastHandler.ExportForecasts)
			forecasts.GET("/:id", forecastHandler.GetForecast)
		}

		// 管理者向けAPI
		admin := v1.Group("/admin")
		{
			admin.GET("/health-status", adminHandler.GetHealthStatus)
			admin.POST("/maintenance/start", adminHandler.StartMaintenance)
			admin.POST("/maintenance/stop", adminHandler.StopMaintenance)
		}

		// モニタリングAPI
		v1.GET("/monitoring/logs", monitoringHandler.GetLogs)
	}

	return r
}

func corsConfig() cors.Config {
	return cors.Config{
		AllowAllOrigins:           true,
		AllowMethods:              []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:              CORSAllowHeaders,
		ExposeHeaders:             []string{"Content-Disposition"},
		MaxAge:                    12 * time.Hour,
		OptionsResponseStatusCode: http.StatusOK,
	}
}

// Preflight は空の200レスポンスに許可ヘッダを付けて返します。
func Preflight(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Headers", strings.Join(CORSAllowHeaders, ", "))
	c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	c.AbortWithStatus(http.StatusOK)
}

// APIKeyAuth はAPIキーを検証するミドルウェアです。apiKey が空の場合は検証しません。
// キーは apikey / X-API-KEY ヘッダ、または Authorization: Bearer で受け付けます。
func APIKeyAuth(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.Next()
			return
		}
		provided := c.GetHeader("apikey")
		if provided == "" {
			provided = c.GetHeader("X-API-KEY")
		}
		if provided == "" {
			provided = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}
		if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
			respondError(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		c.Next()
	}
}
