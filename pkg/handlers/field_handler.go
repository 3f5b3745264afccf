package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"agrasar-api/pkg/models"
	"agrasar-api/pkg/services"
)

// FieldHandler 不具合報告・就労申請・作業指示・資産のハンドラー
type FieldHandler struct {
	service *services.FieldService
}

func NewFieldHandler(service *services.FieldService) *FieldHandler {
	return &FieldHandler{service: service}
}

// ReportIncident は市民からの不具合報告を受け付け、201で保存内容を返します。
func (h *FieldHandler) ReportIncident(c *gin.Context) {
	var req models.IncidentReport
	if !bindJSON(c, &req) {
		return
	}
	incident, err := h.service.ReportIncident(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, incident)
}

// ListIncidents は不具合報告を新しい順に返します（village_id, status で絞り込み可能）。
func (h *FieldHandler) ListIncidents(c *gin.Context) {
	incidents, err := h.service.ListIncidents(c.Request.Context(), c.Query("village_id"), c.Query("status"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, incidents)
}

// ApplyForJob は就労申請を受け付け、201で保存内容を返します。
func (h *FieldHandler) ApplyForJob(c *gin.Context) {
	var req models.JobApplicationRequest
	if !bindJSON(c, &req) {
		return
	}
	application, err := h.service.ApplyForJob(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, application)
}

func (h *FieldHandler) ListJobApplications(c *gin.Context) {
	applications, err := h.service.ListJobApplications(c.Request.Context(), c.Query("village_id"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, applications)
}

// ListWorkOrders は作業指示を返します。既定は募集中（Open）のみで、status=all で全件になります。
func (h *FieldHandler) ListWorkOrders(c *gin.Context) {
	status := c.DefaultQuery("status", models.WorkOrderStatusOpen)
	if strings.EqualFold(status, "all") {
		status = ""
	}
	orders, err := h.service.ListWorkOrders(c.Request.Context(), status)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *FieldHandler) ListAssets(c *gin.Context) {
	assets, err := h.service.ListAssets(c.Request.Context(), c.Query("village_id"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, assets)
}

// GetSummary は行政ポータルの概要件数を返します。
func (h *FieldHandler) GetSummary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, summary)
}
