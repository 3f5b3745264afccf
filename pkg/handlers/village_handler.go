package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"agrasar-api/pkg/store"
)

// VillageHandler 村データの参照ハンドラー
type VillageHandler struct {
	villages store.VillageStore
}

func NewVillageHandler(villages store.VillageStore) *VillageHandler {
	return &VillageHandler{villages: villages}
}

func (h *VillageHandler) ListVillages(c *gin.Context) {
	villages, err := h.villages.ListVillages(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, villages)
}

func (h *VillageHandler) GetVillage(c *gin.Context) {
	id := c.Param("id")
	village, err := h.villages.GetVillage(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, err, fmt.Sprintf("village %s not found", id))
		return
	}
	c.JSON(http.StatusOK, village)
}
