package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	config "agrasar-api/configs"
	"agrasar-api/pkg/app"
	"agrasar-api/pkg/models"

	"github.com/spf13/cobra"
)

var (
	forecastVillage   string
	forecastStart     string
	forecastMigration int
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Work demand forecasts",
}

var forecastGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate and store a 4-week forecast for a village",
	RunE:  runForecastGenerate,
}

var villagesCmd = &cobra.Command{
	Use:   "villages",
	Short: "Village records",
}

var villagesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known villages",
	RunE:  runVillagesList,
}

func init() {
	forecastGenerateCmd.Flags().StringVar(&forecastVillage, "village", "", "village id")
	forecastGenerateCmd.Flags().StringVar(&forecastStart, "start", "", "period start date (YYYY-MM-DD)")
	forecastGenerateCmd.Flags().IntVar(&forecastMigration, "migration", 0, "migration adjustment (percent)")
	_ = forecastGenerateCmd.MarkFlagRequired("village")
	_ = forecastGenerateCmd.MarkFlagRequired("start")
	forecastCmd.AddCommand(forecastGenerateCmd)
	villagesCmd.AddCommand(villagesListCmd)
}

func buildApp(cmd *cobra.Command) (*app.App, error) {
	cfg := config.LoadConfig()
	logger, err := app.NewLogger(cfg)
	if err != nil {
		return nil, err
	}
	return app.New(cmd.Context(), cfg, logger)
}

func runForecastGenerate(cmd *cobra.Command, args []string) error {
	start, err := models.ParseDate(forecastStart)
	if err != nil {
		return fmt.Errorf("invalid --start: %w", err)
	}
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	forecast, err := a.Forecaster.Generate(cmd.Context(), models.ForecastRequest{
		VillageID:           forecastVillage,
		StartDate:           start,
		MigrationAdjustment: float64(forecastMigration),
	})
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(forecast)
}

func runVillagesList(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	villages, err := a.Villages.ListVillages(cmd.Context())
	if err != nil {
		return err
	}
	if len(villages) == 0 {
		return errors.New("no villages found")
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDISTRICT\tSTATE\tPOPULATION")
	for _, v := range villages {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", v.ID, v.Name, v.District, v.State, v.Population)
	}
	return w.Flush()
}
