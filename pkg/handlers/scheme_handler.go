package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"agrasar-api/pkg/services"
)

// SchemeHandler スキーム案内のハンドラー
type SchemeHandler struct {
	catalog *services.SchemeCatalog
}

func NewSchemeHandler(catalog *services.SchemeCatalog) *SchemeHandler {
	return &SchemeHandler{catalog: catalog}
}

// ListSchemes はスキーム一覧を返します。q を指定すると名前・説明・分類で絞り込みます。
func (h *SchemeHandler) ListSchemes(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Search(c.Query("q")))
}

func (h *SchemeHandler) GetScheme(c *gin.Context) {
	id := c.Param("id")
	scheme, ok := h.catalog.Get(id)
	if !ok {
		respondError(c, http.StatusNotFound, fmt.Sprintf("scheme %s not found", id))
		return
	}
	c.JSON(http.StatusOK, scheme)
}
