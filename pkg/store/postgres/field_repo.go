package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"agrasar-api/pkg/models"
	"agrasar-api/pkg/store"
)

// FieldRepository は資産・作業指示・不具合報告・就労申請のテーブルを担当します。
type FieldRepository struct {
	pool *pgxpool.Pool
}

var (
	_ store.AssetStore          = (*FieldRepository)(nil)
	_ store.WorkOrderStore      = (*FieldRepository)(nil)
	_ store.IncidentStore       = (*FieldRepository)(nil)
	_ store.JobApplicationStore = (*FieldRepository)(nil)
)

func NewFieldRepository(pool *pgxpool.Pool) *FieldRepository {
	return &FieldRepository{pool: pool}
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func dateArg(d *models.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

func dateOf(t *time.Time) *models.Date {
	if t == nil {
		return nil
	}
	d := models.DateOf(*t)
	return &d
}

const assetColumns = `id, COALESCE(village_id, ''), name, type, condition, last_inspection,
	COALESCE(lat, 0), COALESCE(lng, 0)`

func scanAsset(row pgx.Row) (models.Asset, error) {
	var (
		a          models.Asset
		inspection *time.Time
	)
	if err := row.Scan(&a.ID, &a.VillageID, &a.Name, &a.Type, &a.Condition, &inspection, &a.Lat, &a.Lng); err != nil {
		return models.Asset{}, err
	}
	a.LastInspection = dateOf(inspection)
	return a, nil
}

func (r *FieldRepository) ListAssets(ctx context.Context, villageID string) ([]models.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets`
	args := []any{}
	if villageID != "" {
		query += ` WHERE village_id = $1`
		args = append(args, villageID)
	}
	query += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select assets: %w", err)
	}
	defer rows.Close()

	out := make([]models.Asset, 0)
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpsertAsset は資産データを登録します（CLIのシード投入用）。
func (r *FieldRepository) UpsertAsset(ctx context.Context, a models.Asset) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO assets (id, village_id, name, type, condition, last_inspection, lat, lng)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE SET
	village_id = EXCLUDED.village_id,
	name = EXCLUDED.name,
	type = EXCLUDED.type,
	condition = EXCLUDED.condition,
	last_inspection = EXCLUDED.last_inspection,
	lat = EXCLUDED.lat,
	lng = EXCLUDED.lng,
	updated_at = now()
`, a.ID, nullIfEmpty(a.VillageID), a.Name, a.Type, a.Condition, dateArg(a.LastInspection), a.Lat, a.Lng)
	if err != nil {
		return fmt.Errorf("upsert asset %s: %w", a.ID, err)
	}
	return nil
}

const workOrderColumns = `id, COALESCE(village_id, ''), title, COALESCE(description, ''), status,
	COALESCE(workers_needed, 0), COALESCE(estimated_budget, 0)::float8, start_date, end_date, created_at`

func scanWorkOrder(row pgx.Row) (models.WorkOrder, error) {
	var (
		w          models.WorkOrder
		start, end *time.Time
	)
	err := row.Scan(&w.ID, &w.VillageID, &w.Title, &w.Description, &w.Status,
		&w.WorkersNeeded, &w.EstimatedBudget, &start, &end, &w.CreatedAt)
	if err != nil {
		return models.WorkOrder{}, err
	}
	w.StartDate = dateOf(start)
	w.EndDate = dateOf(end)
	return w, nil
}

func (r *FieldRepository) GetWorkOrder(ctx context.Context, id string) (models.WorkOrder, error) {
	w, err := scanWorkOrder(r.pool.QueryRow(ctx, `SELECT `+workOrderColumns+` FROM work_orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.WorkOrder{}, store.ErrNotFound
		}
		return models.WorkOrder{}, fmt.Errorf("select work order %s: %w", id, err)
	}
	return w, nil
}

func (r *FieldRepository) ListWorkOrders(ctx context.Context, status string) ([]models.WorkOrder, error) {
	query := `SELECT ` + workOrderColumns + ` FROM work_orders`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select work orders: %w", err)
	}
	defer rows.Close()

	out := make([]models.WorkOrder, 0)
	for rows.Next() {
		w, err := scanWorkOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan work order: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// UpsertWorkOrder は作業指示を登録します（CLIのシード投入用）。
func (r *FieldRepository) UpsertWorkOrder(ctx context.Context, w models.WorkOrder) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO work_orders (id, village_id, title, description, status, workers_needed, estimated_budget, start_date, end_date)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET
	village_id = EXCLUDED.village_id,
	title = EXCLUDED.title,
	description = EXCLUDED.description,
	status = EXCLUDED.status,
	workers_needed = EXCLUDED.workers_needed,
	estimated_budget = EXCLUDED.estimated_budget,
	start_date = EXCLUDED.start_date,
	end_date = EXCLUDED.end_date,
	updated_at = now()
`, w.ID, nullIfEmpty(w.VillageID), w.Title, nullIfEmpty(w.Description), w.Status, w.WorkersNeeded,
		w.EstimatedBudget, dateArg(w.StartDate), dateArg(w.EndDate))
	if err != nil {
		return fmt.Errorf("upsert work order %s: %w", w.ID, err)
	}
	return nil
}

const incidentColumns = `id, COALESCE(village_id, ''), COALESCE(asset_type, ''), COALESCE(description, ''),
	severity, status, COALESCE(reported_by_name, ''), COALESCE(reported_by_mobile, ''),
	COALESCE(lat, 0), COALESCE(lng, 0), created_at`

func scanIncident(row pgx.Row) (models.Incident, error) {
	var in models.Incident
	err := row.Scan(&in.ID, &in.VillageID, &in.AssetType, &in.Description, &in.Severity, &in.Status,
		&in.ReportedByName, &in.ReportedByMobile, &in.Lat, &in.Lng, &in.CreatedAt)
	return in, err
}

func (r *FieldRepository) CreateIncident(ctx context.Context, in models.Incident) (models.Incident, error) {
	saved, err := scanIncident(r.pool.QueryRow(ctx, `
INSERT INTO incidents (id, village_id, asset_type, description, severity, status,
	reported_by_name, reported_by_mobile, lat, lng)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING `+incidentColumns,
		in.ID, in.VillageID, nullIfEmpty(in.AssetType), in.Description, in.Severity, in.Status,
		in.ReportedByName, nullIfEmpty(in.ReportedByMobile), in.Lat, in.Lng))
	if err != nil {
		return models.Incident{}, fmt.Errorf("insert incident: %w", err)
	}
	return saved, nil
}

func (r *FieldRepository) ListIncidents(ctx context.Context, villageID, status string) ([]models.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE ($1 = '' OR village_id = $1) AND ($2 = '' OR status = $2)
	ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, villageID, status)
	if err != nil {
		return nil, fmt.Errorf("select incidents: %w", err)
	}
	defer rows.Close()

	out := make([]models.Incident, 0)
	for rows.Next() {
		in, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

const jobApplicationColumns = `id, village_id, COALESCE(work_order_id, ''), applicant_name, applicant_mobile,
	applicant_age, COALESCE(applicant_gender, ''), COALESCE(preferred_work_type, ''), status, created_at`

func scanJobApplication(row pgx.Row) (models.JobApplication, error) {
	var a models.JobApplication
	err := row.Scan(&a.ID, &a.VillageID, &a.WorkOrderID, &a.ApplicantName, &a.ApplicantMobile,
		&a.ApplicantAge, &a.ApplicantGender, &a.PreferredWorkType, &a.Status, &a.CreatedAt)
	return a, err
}

func (r *FieldRepository) CreateJobApplication(ctx context.Context, a models.JobApplication) (models.JobApplication, error) {
	saved, err := scanJobApplication(r.pool.QueryRow(ctx, `
INSERT INTO job_applications (id, work_order_id, village_id, applicant_name, applicant_mobile,
	applicant_age, applicant_gender, preferred_work_type, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING `+jobApplicationColumns,
		a.ID, nullIfEmpty(a.WorkOrderID), a.VillageID, a.ApplicantName, a.ApplicantMobile,
		a.ApplicantAge, nullIfEmpty(a.ApplicantGender), nullIfEmpty(a.PreferredWorkType), a.Status))
	if err != nil {
		return models.JobApplication{}, fmt.Errorf("insert job application: %w", err)
	}
	return saved, nil
}

func (r *FieldRepository) ListJobApplications(ctx context.Context, villageID string) ([]models.JobApplication, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+jobApplicationColumns+` FROM job_applications
	WHERE ($1 = '' OR village_id = $1) ORDER BY created_at DESC`, villageID)
	if err != nil {
		return nil, fmt.Errorf("select job applications: %w", err)
	}
	defer rows.Close()

	out := make([]models.JobApplication, 0)
	for rows.Next() {
		a, err := scanJobApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job application: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
