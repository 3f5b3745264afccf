package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"agrasar-api/pkg/models"
	"agrasar-api/pkg/store"
)

// ForecastRepository は forecasts テーブルへの追記と参照を担当します。
type ForecastRepository struct {
	pool *pgxpool.Pool
}

var _ store.ForecastStore = (*ForecastRepository)(nil)

func NewForecastRepository(pool *pgxpool.Pool) *ForecastRepository {
	return &ForecastRepository{pool: pool}
}

const forecastColumns = `id::text, COALESCE(village_id, ''), period_start, period_end, workers_needed, confidence,
	COALESCE(recommended_work_types, '{}'), COALESCE(estimated_budget, 0)::float8, COALESCE(notes, ''), created_at`

func scanForecast(row pgx.Row) (models.Forecast, error) {
	var (
		f          models.Forecast
		start, end time.Time
	)
	err := row.Scan(&f.ID, &f.VillageID, &start, &end, &f.WorkersNeeded, &f.Confidence,
		&f.RecommendedWorkTypes, &f.EstimatedBudget, &f.Notes, &f.CreatedAt)
	if err != nil {
		return models.Forecast{}, err
	}
	f.PeriodStart = models.DateOf(start)
	f.PeriodEnd = models.DateOf(end)
	return f, nil
}

// CreateForecast は1行を挿入し、DBが確定した値（作成日時など）を読み戻して返します。
func (r *ForecastRepository) CreateForecast(ctx context.Context, f models.Forecast) (models.Forecast, error) {
	id := uuid.New()
	workTypes := f.RecommendedWorkTypes
	if workTypes == nil {
		workTypes = []string{}
	}
	var notes *string
	if f.Notes != "" {
		notes = &f.Notes
	}
	saved, err := scanForecast(r.pool.QueryRow(ctx, `
INSERT INTO forecasts (id, village_id, period_start, period_end, workers_needed, confidence,
	recommended_work_types, estimated_budget, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING `+forecastColumns,
		id, f.VillageID, f.PeriodStart.Time, f.PeriodEnd.Time, f.WorkersNeeded, f.Confidence,
		workTypes, f.EstimatedBudget, notes))
	if err != nil {
		return models.Forecast{}, fmt.Errorf("insert forecast: %w", err)
	}
	return saved, nil
}

func (r *ForecastRepository) GetForecast(ctx context.Context, id string) (models.Forecast, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.Forecast{}, store.ErrNotFound
	}
	f, err := scanForecast(r.pool.QueryRow(ctx, `SELECT `+forecastColumns+` FROM forecasts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Forecast{}, store.ErrNotFound
		}
		return models.Forecast{}, fmt.Errorf("select forecast %s: %w", id, err)
	}
	return f, nil
}

func (r *ForecastRepository) ListForecasts(ctx context.Context, villageID string) ([]models.Forecast, error) {
	query := `SELECT ` + forecastColumns + ` FROM forecasts`
	args := []any{}
	if villageID != "" {
		query += ` WHERE village_id = $1`
		args = append(args, villageID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select forecasts: %w", err)
	}
	defer rows.Close()

	out := make([]models.Forecast, 0)
	for rows.Next() {
		f, err := scanForecast(rows)
		if err != nil {
			return nil, fmt.Errorf("scan forecast: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
