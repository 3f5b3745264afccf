package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"

	"go.uber.org/zap"

	config "agrasar-api/configs"
	"agrasar-api/pkg/llm"
	"agrasar-api/pkg/models"
	"agrasar-api/pkg/store"
)

// ForecastPeriodDays は予測期間の日数（4週間）
const ForecastPeriodDays = 28

// 人口移動補正（%）の許容範囲
const (
	MinMigrationAdjustment = -100
	MaxMigrationAdjustment = 100
)

// ForecastService 村ごとの労働力・予算予測を生成するサービス
type ForecastService struct {
	villages  store.VillageStore
	forecasts store.ForecastStore
	gateway   llm.Gateway
	prompt    *config.SystemPromptConfig
	logger    *zap.Logger
}

// NewForecastService 新しい予測サービスを作成
func NewForecastService(villages store.VillageStore, forecasts store.ForecastStore, gateway llm.Gateway, prompt *config.SystemPromptConfig, logger *zap.Logger) *ForecastService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ForecastService{
		villages:  villages,
		forecasts: forecasts,
		gateway:   gateway,
		prompt:    prompt,
		logger:    logger,
	}
}

// forecastEstimate はモデルが返すJSONの形です。
type forecastEstimate struct {
	WorkersNeeded        *float64 `json:"workers_needed"`
	Confidence           *float64 `json:"confidence"`
	RecommendedWorkTypes []string `json:"recommended_work_types"`
	EstimatedBudget      *float64 `json:"estimated_budget"`
	Notes                string   `json:"notes"`
}

// Generate は予測を1件生成して保存します。
// 同じ入力で呼び出しても毎回新しい行が作られます（重複排除は行わない）。
func (s *ForecastService) Generate(ctx context.Context, req models.ForecastRequest) (models.Forecast, error) {
	req.VillageID = strings.TrimSpace(req.VillageID)
	if req.VillageID == "" {
		return models.Forecast{}, newError(KindValidation, nil, "village_id is required")
	}
	if req.StartDate.IsZero() {
		return models.Forecast{}, newError(KindValidation, nil, "start_date is required")
	}
	migration := math.Round(req.MigrationAdjustment)
	if migration < MinMigrationAdjustment || migration > MaxMigrationAdjustment {
		return models.Forecast{}, newError(KindValidation, nil,
			"migration_adjustment must be between %d and %d", MinMigrationAdjustment, MaxMigrationAdjustment)
	}

	// 1. 村データを取得（存在しなければ外部呼び出しの前に中断）
	village, err := s.villages.GetVillage(ctx, req.VillageID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Forecast{}, newError(KindNotFound, err, "village %s not found", req.VillageID)
		}
		return models.Forecast{}, newError(KindPersistence, err, "failed to load village: %v", err)
	}

	// 2-3. プロンプトを組み立ててモデルに問い合わせる
	userPrompt := buildForecastPrompt(village, int(migration), s.prompt.Wages.DailyWage, s.prompt.Forecast.WorkTypes)
	reply, err := s.gateway.Complete(ctx, forecastMessages(s.prompt, userPrompt))
	if err != nil {
		s.logger.Error("予測生成でゲートウェイ呼び出しに失敗",
			zap.String("village_id", village.ID),
			zap.Int("upstream_status", llm.StatusCodeOf(err)),
			zap.Error(err))
		return models.Forecast{}, gatewayError(err, false)
	}
	if strings.TrimSpace(reply) == "" {
		return models.Forecast{}, newError(KindParse, nil, "No response from AI")
	}

	// 4. 応答からJSONを抽出
	estimate, err := parseEstimate(reply)
	if err != nil {
		s.logger.Warn("AI応答の解析に失敗", zap.String("village_id", village.ID), zap.String("reply", reply))
		return models.Forecast{}, err
	}

	// 5. 期間は開始日から固定28日
	forecast := models.Forecast{
		VillageID:            village.ID,
		PeriodStart:          req.StartDate,
		PeriodEnd:            req.StartDate.AddDays(ForecastPeriodDays),
		WorkersNeeded:        int(math.Round(*estimate.WorkersNeeded)),
		Confidence:           *estimate.Confidence,
		RecommendedWorkTypes: estimate.RecommendedWorkTypes,
		EstimatedBudget:      *estimate.EstimatedBudget,
		Notes:                strings.TrimSpace(estimate.Notes),
	}
	if forecast.RecommendedWorkTypes == nil {
		forecast.RecommendedWorkTypes = []string{}
	}

	// 6. 保存
	saved, err := s.forecasts.CreateForecast(ctx, forecast)
	if err != nil {
		s.logger.Error("予測の保存に失敗", zap.String("village_id", village.ID), zap.Error(err))
		return models.Forecast{}, newError(KindPersistence, err, "failed to save forecast: %v", err)
	}

	s.logger.Info("予測を生成しました",
		zap.String("forecast_id", saved.ID),
		zap.String("village_id", saved.VillageID),
		zap.String("period_start", saved.PeriodStart.String()),
		zap.Int("workers_needed", saved.WorkersNeeded))
	return saved, nil
}

// parseEstimate はモデル応答から予測値を取り出し、値域を検証します。
func parseEstimate(reply string) (forecastEstimate, error) {
	raw, err := ExtractJSON(reply)
	if err != nil {
		return forecastEstimate{}, err
	}
	var est forecastEstimate
	if err := json.Unmarshal(raw, &est); err != nil {
		return forecastEstimate{}, newError(KindParse, err, "Failed to parse AI response")
	}

	var problems []string
	switch {
	case est.WorkersNeeded == nil:
		problems = append(problems, "workers_needed is missing")
	case *est.WorkersNeeded < 0:
		problems = append(problems, "workers_needed must be non-negative")
	case math.Round(*est.WorkersNeeded) > math.MaxInt32:
		// DBの INTEGER 列に収まらない値は保存前に弾く
		problems = append(problems, "workers_needed is out of range")
	}
	switch {
	case est.Confidence == nil:
		problems = append(problems, "confidence is missing")
	case *est.Confidence < 0 || *est.Confidence > 1:
		problems = append(problems, "confidence must be between 0 and 1")
	}
	switch {
	case est.EstimatedBudget == nil:
		problems = append(problems, "estimated_budget is missing")
	case *est.EstimatedBudget < 0:
		problems = append(problems, "estimated_budget must be non-negative")
	}
	if len(problems) > 0 {
		return forecastEstimate{}, newError(KindParse, nil, "Invalid AI forecast: %s", strings.Join(problems, "; "))
	}
	return est, nil
}

