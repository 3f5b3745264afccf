package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"agrasar-api/pkg/models"
	"agrasar-api/pkg/store"
)

// VillageRepository は villages テーブルの読み取りを担当します。
type VillageRepository struct {
	pool *pgxpool.Pool
}

var _ store.VillageStore = (*VillageRepository)(nil)

func NewVillageRepository(pool *pgxpool.Pool) *VillageRepository {
	return &VillageRepository{pool: pool}
}

const villageColumns = `id, name, block, district, state, population, households, lat, lng`

func scanVillage(row pgx.Row) (models.Village, error) {
	var v models.Village
	err := row.Scan(&v.ID, &v.Name, &v.Block, &v.District, &v.State, &v.Population, &v.Households, &v.Lat, &v.Lng)
	return v, err
}

func (r *VillageRepository) GetVillage(ctx context.Context, id string) (models.Village, error) {
	v, err := scanVillage(r.pool.QueryRow(ctx, `SELECT `+villageColumns+` FROM villages WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Village{}, store.ErrNotFound
		}
		return models.Village{}, fmt.Errorf("select village %s: %w", id, err)
	}
	return v, nil
}

func (r *VillageRepository) ListVillages(ctx context.Context) ([]models.Village, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+villageColumns+` FROM villages ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("select villages: %w", err)
	}
	defer rows.Close()

	out := make([]models.Village, 0)
	for rows.Next() {
		v, err := scanVillage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan village: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// UpsertVillage は村データを登録します（CLIのシード投入用）。
func (r *VillageRepository) UpsertVillage(ctx context.Context, v models.Village) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO villages (id, name, block, district, state, population, households, lat, lng)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name,
	block = EXCLUDED.block,
	district = EXCLUDED.district,
	state = EXCLUDED.state,
	population = EXCLUDED.population,
	households = EXCLUDED.households,
	lat = EXCLUDED.lat,
	lng = EXCLUDED.lng,
	updated_at = now()
`, v.ID, v.Name, v.Block, v.District, v.State, v.Population, v.Households, v.Lat, v.Lng)
	if err != nil {
		return fmt.Errorf("upsert village %s: %w", v.ID, err)
	}
	return nil
}
