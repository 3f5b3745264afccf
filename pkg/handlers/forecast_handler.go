package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"agrasar-api/pkg/export"
	"agrasar-api/pkg/models"
	"agrasar-api/pkg/services"
	"agrasar-api/pkg/store"
)

// ForecastHandler 労働力予測ハンドラー
type ForecastHandler struct {
	service   *services.ForecastService
	villages  store.VillageStore
	forecasts store.ForecastStore
}

// NewForecastHandler 新しい予測ハンドラーを作成
func NewForecastHandler(service *services.ForecastService, villages store.VillageStore, forecasts store.ForecastStore) *ForecastHandler {
	return &ForecastHandler{service: service, villages: villages, forecasts: forecasts}
}

// GenerateForecast は予測を生成して保存し、保存されたレコードを返します。
func (h *ForecastHandler) GenerateForecast(c *gin.Context) {
	var request models.ForecastRequest
	if !bindJSON(c, &request) {
		return
	}

	forecast, err := h.service.Generate(c.Request.Context(), request)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, forecast)
}

// ListForecasts は予測一覧を返します（village_id で絞り込み可能）。
func (h *ForecastHandler) ListForecasts(c *gin.Context) {
	forecasts, err := h.forecasts.ListForecasts(c.Request.Context(), c.Query("village_id"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, forecasts)
}

// GetForecast は1件の予測を返します。
func (h *ForecastHandler) GetForecast(c *gin.Context) {
	id := c.Param("id")
	forecast, err := h.forecasts.GetForecast(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, err, fmt.Sprintf("forecast %s not found", id))
		return
	}
	c.JSON(http.StatusOK, forecast)
}

// ExportForecasts は予測一覧をExcelファイルとしてダウンロードさせます。
func (h *ForecastHandler) ExportForecasts(c *gin.Context) {
	ctx := c.Request.Context()
	forecasts, err := h.forecasts.ListForecasts(ctx, c.Query("village_id"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	villages, err := h.villages.ListVillages(ctx)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	byID := make(map[string]models.Village, len(villages))
	for _, v := range villages {
		byID[v.ID] = v
	}

	filename := fmt.Sprintf("forecasts_%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)
	if err := export.WriteForecastsXLSX(c.Writer, byID, forecasts); err != nil {
		_ = c.Error(err)
	}
}
