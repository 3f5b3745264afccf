package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"agrasar-api/pkg/models"
	"agrasar-api/pkg/services"
	"agrasar-api/pkg/store"
)

// statusForError はサービスエラーの分類をHTTPステータスに変換します。
// 予測生成では分類ごとのステータスを持たず、入力不備以外は500を返します。
func statusForError(err error) int {
	switch services.KindOf(err) {
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindRateLimited:
		return http.StatusTooManyRequests
	case services.KindPaymentRequired:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

// respondError はエラーを {error: string} 形式で返します。
func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{Error: message})
}

// respondServiceError はサービス層のエラーをそのままの文面で返します。
func respondServiceError(c *gin.Context, err error) {
	respondError(c, statusForError(err), err.Error())
}

// respondStoreError は参照系APIのストアエラーを返します。
func respondStoreError(c *gin.Context, err error, notFoundMessage string) {
	if errors.Is(err, store.ErrNotFound) {
		respondError(c, http.StatusNotFound, notFoundMessage)
		return
	}
	respondError(c, http.StatusInternalServerError, err.Error())
}

// bindJSON はリクエストボディをバインドし、失敗時は400を返して false を返します。
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}
