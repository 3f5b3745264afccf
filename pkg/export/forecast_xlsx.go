// Package export は行政ポータル向けのダウンロード用ファイルを生成します。
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"agrasar-api/pkg/models"
)

// ForecastSheet はワークブック内のシート名です。
const ForecastSheet = "Forecasts"

var forecastHeader = []interface{}{
	"Forecast ID", "Village", "Block", "District", "Period Start", "Period End",
	"Workers Needed", "Confidence", "Estimated Budget (INR)", "Recommended Work Types", "Notes",
}

// WriteForecastsXLSX は予測一覧を1シートのExcelブックとして w に書き出します。
// villages は村IDから村情報を引くためのもので、見つからない村は空欄になります。
func WriteForecastsXLSX(w io.Writer, villages map[string]models.Village, forecasts []models.Forecast) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ForecastSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(ForecastSheet, "A1", &forecastHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(forecastHeader))
	if err := f.SetCellStyle(ForecastSheet, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}

	for i, fc := range forecasts {
		v := villages[fc.VillageID]
		row := []interface{}{
			fc.ID,
			v.Name,
			v.Block,
			v.District,
			fc.PeriodStart.String(),
			fc.PeriodEnd.String(),
			fc.WorkersNeeded,
			fc.Confidence,
			fc.EstimatedBudget,
			strings.Join(fc.RecommendedWorkTypes, ", "),
			fc.Notes,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(ForecastSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(ForecastSheet, "B", "D", 18); err != nil {
		return err
	}
	if err := f.SetColWidth(ForecastSheet, "J", "K", 40); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
