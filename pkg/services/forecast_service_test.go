package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrasar-api/pkg/llm"
	"agrasar-api/pkg/models"
	"agrasar-api/pkg/store"
	"agrasar-api/pkg/store/memory"
)

const rampurReply = "```json\n" + `{
  "workers_needed": 40,
  "confidence": 0.82,
  "recommended_work_types": ["road repair", "water harvesting"],
  "estimated_budget": 414400,
  "notes": "Pre-monsoon demand is high."
}` + "\n```"

func newForecastFixture(t *testing.T, gw llm.Gateway) (*ForecastService, *memory.Store) {
	t.Helper()
	mem := memory.New(rampur)
	return NewForecastService(mem, mem, gw, loadPrompt(t), nil), mem
}

func TestGenerateForecast(t *testing.T) {
	gw := &fakeGateway{reply: rampurReply}
	svc, mem := newForecastFixture(t, gw)

	f, err := svc.Generate(context.Background(), models.ForecastRequest{
		VillageID:           "V1",
		StartDate:           models.NewDate(2025, time.March, 1),
		MigrationAdjustment: -5,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, f.ID)
	assert.Equal(t, "V1", f.VillageID)
	assert.Equal(t, "2025-03-01", f.PeriodStart.String())
	assert.Equal(t, "2025-03-29", f.PeriodEnd.String())
	assert.Equal(t, 40, f.WorkersNeeded)
	assert.InDelta(t, 0.82, f.Confidence, 1e-9)
	assert.Equal(t, []string{"road repair", "water harvesting"}, f.RecommendedWorkTypes)
	assert.InDelta(t, 414400, f.EstimatedBudget, 1e-9)
	assert.Equal(t, "Pre-monsoon demand is high.", f.Notes)
	assert.False(t, f.CreatedAt.IsZero())

	// プロンプトに村データと賃金が含まれる
	require.Equal(t, 1, gw.calls)
	require.Len(t, gw.last, 2)
	assert.Equal(t, llm.RoleSystem, gw.last[0].Role)
	assert.Contains(t, gw.last[1].Content, "Village: Rampur, Population: 1200, Households: 240")
	assert.Contains(t, gw.last[1].Content, "Migration adjustment: -5%")
	assert.Contains(t, gw.last[1].Content, "₹370/day")

	// 保存された行を読み戻せる
	stored, err := mem.GetForecast(context.Background(), f.ID)
	require.NoError(t, err)
	assert.Equal(t, f, stored)
}

func TestGenerateForecastIsNotIdempotent(t *testing.T) {
	svc, mem := newForecastFixture(t, &fakeGateway{reply: rampurReply})
	req := models.ForecastRequest{VillageID: "V1", StartDate: models.NewDate(2025, time.March, 1)}

	first, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	all, err := mem.ListForecasts(context.Background(), "V1")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGenerateForecastRoundsWorkers(t *testing.T) {
	svc, _ := newForecastFixture(t, &fakeGateway{
		reply: `{"workers_needed": 12.6, "confidence": 1, "estimated_budget": 0}`,
	})

	f, err := svc.Generate(context.Background(), models.ForecastRequest{VillageID: "V1", StartDate: models.NewDate(2025, time.December, 20)})
	require.NoError(t, err)
	assert.Equal(t, 13, f.WorkersNeeded)
	assert.Equal(t, "2026-01-17", f.PeriodEnd.String())
	assert.NotNil(t, f.RecommendedWorkTypes)
	assert.Empty(t, f.RecommendedWorkTypes)
}

func TestGenerateForecastValidation(t *testing.T) {
	gw := &fakeGateway{reply: rampurReply}
	svc, _ := newForecastFixture(t, gw)

	_, err := svc.Generate(context.Background(), models.ForecastRequest{StartDate: models.NewDate(2025, time.March, 1)})
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = svc.Generate(context.Background(), models.ForecastRequest{VillageID: "V1"})
	assert.True(t, errors.Is(err, ErrValidation))

	for _, adj := range []float64{-100.6, 150, 1e19} {
		_, err = svc.Generate(context.Background(), models.ForecastRequest{
			VillageID:           "V1",
			StartDate:           models.NewDate(2025, time.March, 1),
			MigrationAdjustment: adj,
		})
		assert.True(t, errors.Is(err, ErrValidation), "%v", adj)
	}

	assert.Zero(t, gw.calls)
}

func TestGenerateForecastLargestWorkerCount(t *testing.T) {
	svc, _ := newForecastFixture(t, &fakeGateway{
		reply: `{"workers_needed": 2147483647, "confidence": 0.5, "estimated_budget": 1}`,
	})

	f, err := svc.Generate(context.Background(), models.ForecastRequest{VillageID: "V1", StartDate: models.NewDate(2025, time.March, 1)})
	require.NoError(t, err)
	assert.Equal(t, 2147483647, f.WorkersNeeded)
}

func TestGenerateForecastFractionalMigration(t *testing.T) {
	gw := &fakeGateway{reply: rampurReply}
	svc, _ := newForecastFixture(t, gw)

	_, err := svc.Generate(context.Background(), models.ForecastRequest{
		VillageID:           "V1",
		StartDate:           models.NewDate(2025, time.March, 1),
		MigrationAdjustment: 5.4,
	})
	require.NoError(t, err)
	require.Len(t, gw.last, 2)
	assert.Contains(t, gw.last[1].Content, "Migration adjustment: 5%")
}

func TestGenerateForecastUnknownVillage(t *testing.T) {
	gw := &fakeGateway{reply: rampurReply}
	svc, mem := newForecastFixture(t, gw)

	_, err := svc.Generate(context.Background(), models.ForecastRequest{VillageID: "V999", StartDate: models.NewDate(2025, time.March, 1)})
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, errors.Is(err, store.ErrNotFound))

	// ゲートウェイは呼ばれず、何も保存されない
	assert.Zero(t, gw.calls)
	all, _ := mem.ListForecasts(context.Background(), "")
	assert.Empty(t, all)
}

func TestGenerateForecastUnparseableReply(t *testing.T) {
	testCases := []struct {
		name    string
		reply   string
		message string
	}{
		{"JSONなし", "I cannot help with that.", "Failed to parse AI response"},
		{"空の応答", "   ", "No response from AI"},
		{"信頼度が範囲外", `{"workers_needed": 10, "confidence": 1.5, "estimated_budget": 100}`, "Invalid AI forecast: confidence must be between 0 and 1"},
		{"負の人数", `{"workers_needed": -1, "confidence": 0.5, "estimated_budget": 100}`, "Invalid AI forecast: workers_needed must be non-negative"},
		{"予算なし", `{"workers_needed": 10, "confidence": 0.5}`, "Invalid AI forecast: estimated_budget is missing"},
		{"人数が桁あふれ", `{"workers_needed": 1e19, "confidence": 0.5, "estimated_budget": 1}`, "Invalid AI forecast: workers_needed is out of range"},
		{"人数がINTEGERの上限超え", `{"workers_needed": 2147483648, "confidence": 0.5, "estimated_budget": 1}`, "Invalid AI forecast: workers_needed is out of range"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc, mem := newForecastFixture(t, &fakeGateway{reply: tc.reply})

			_, err := svc.Generate(context.Background(), models.ForecastRequest{VillageID: "V1", StartDate: models.NewDate(2025, time.March, 1)})
			require.Error(t, err)
			assert.Equal(t, KindParse, KindOf(err))
			assert.Equal(t, tc.message, err.Error())

			all, _ := mem.ListForecasts(context.Background(), "")
			assert.Empty(t, all)
		})
	}
}

func TestGenerateForecastGatewayFailure(t *testing.T) {
	// 予測では429もそのまま上流エラーとして扱う
	gw := &fakeGateway{err: llm.NewStatusError("openai", http.StatusTooManyRequests, "")}
	svc, mem := newForecastFixture(t, gw)

	_, err := svc.Generate(context.Background(), models.ForecastRequest{VillageID: "V1", StartDate: models.NewDate(2025, time.March, 1)})
	require.Error(t, err)
	assert.Equal(t, KindUpstream, KindOf(err))
	assert.Equal(t, "openai API error: 429", err.Error())

	all, _ := mem.ListForecasts(context.Background(), "")
	assert.Empty(t, all)
}

type failingForecastStore struct{}

func (failingForecastStore) CreateForecast(context.Context, models.Forecast) (models.Forecast, error) {
	return models.Forecast{}, errors.New("connection refused")
}

func (failingForecastStore) GetForecast(context.Context, string) (models.Forecast, error) {
	return models.Forecast{}, store.ErrNotFound
}

func (failingForecastStore) ListForecasts(context.Context, string) ([]models.Forecast, error) {
	return nil, nil
}

func TestGenerateForecastPersistenceFailure(t *testing.T) {
	svc := NewForecastService(memory.New(rampur), failingForecastStore{}, &fakeGateway{reply: rampurReply}, loadPrompt(t), nil)

	_, err := svc.Generate(context.Background(), models.ForecastRequest{VillageID: "V1", StartDate: models.NewDate(2025, time.March, 1)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPersistence))
}

func TestGenerateForecastResultIsDetachedFromStore(t *testing.T) {
	svc, mem := newForecastFixture(t, &fakeGateway{reply: rampurReply})

	f, err := svc.Generate(context.Background(), models.ForecastRequest{VillageID: "V1", StartDate: models.NewDate(2025, time.March, 1)})
	require.NoError(t, err)
	f.RecommendedWorkTypes[0] = "changed"

	stored, err := mem.GetForecast(context.Background(), f.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"road repair", "water harvesting"}, stored.RecommendedWorkTypes)
}
