package main

import (
	"errors"
	"fmt"

	config "agrasar-api/configs"
	"agrasar-api/pkg/store/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

var seedPath string

// migrateCmd はスキーマ管理のサブコマンド群です
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the PostgreSQL schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations and upsert the village, asset and work order seed",
	RunE:  runMigrateUp,
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the migration status",
	RunE:  runMigrateStatus,
}

func init() {
	migrateUpCmd.Flags().StringVar(&seedPath, "seed", "", "seed YAML with villages, assets and work orders (defaults to the embedded seed)")
	migrateUpCmd.Flags().Bool("no-seed", false, "skip seeding")
	migrateCmd.AddCommand(migrateUpCmd, migrateStatusCmd)
}

func openPool(cmd *cobra.Command) (*pgxpool.Pool, error) {
	cfg := config.LoadConfig()
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}
	return postgres.Connect(cmd.Context(), cfg.DatabaseURL)
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	pool, err := openPool(cmd)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := postgres.Migrate(cmd.Context(), pool); err != nil {
		return err
	}

	if skip, _ := cmd.Flags().GetBool("no-seed"); skip {
		return nil
	}
	seed, err := config.LoadSeed(seedPath)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	villages := postgres.NewVillageRepository(pool)
	for _, v := range seed.Villages {
		if err := villages.UpsertVillage(ctx, v); err != nil {
			return fmt.Errorf("seed village %s: %w", v.ID, err)
		}
	}
	// 資産と作業指示は村を参照するため村の後に投入する
	field := postgres.NewFieldRepository(pool)
	for _, a := range seed.Assets {
		if err := field.UpsertAsset(ctx, a); err != nil {
			return fmt.Errorf("seed asset %s: %w", a.ID, err)
		}
	}
	for _, w := range seed.WorkOrders {
		if err := field.UpsertWorkOrder(ctx, w); err != nil {
			return fmt.Errorf("seed work order %s: %w", w.ID, err)
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "migrations applied, seeded %d villages, %d assets, %d work orders\n",
		len(seed.Villages), len(seed.Assets), len(seed.WorkOrders))
	return nil
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	pool, err := openPool(cmd)
	if err != nil {
		return err
	}
	defer pool.Close()
	return postgres.MigrationStatus(cmd.Context(), pool)
}
