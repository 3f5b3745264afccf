package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agrasar-api/pkg/models"
	"agrasar-api/pkg/services"
)

// ChatHandler 市民向けチャット（GramSathi）のハンドラー
type ChatHandler struct {
	service *services.ChatService
}

func NewChatHandler(service *services.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

// Chat は会話履歴全体を受け取り、アシスタントの次の応答を返します。
// 上流のレート制限は429、課金エラーは402、それ以外は500になります。
func (h *ChatHandler) Chat(c *gin.Context) {
	var req models.ChatRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.service.Respond(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
