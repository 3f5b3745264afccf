package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	config "agrasar-api/configs"
	"agrasar-api/pkg/llm"
	"agrasar-api/pkg/models"
)

// FallbackReply はモデルが空の応答を返した場合に利用者へ返す文面です。
const FallbackReply = "Sorry, I could not generate a response. Please try again."

// ChatService は市民向けチャットアシスタント（GramSathi）の応答を生成します。
// 会話履歴はサーバー側に保持せず、毎回リクエストに含まれる全履歴を使います。
type ChatService struct {
	gateway   llm.Gateway
	prompt    *config.SystemPromptConfig
	logger    *zap.Logger
	retriever ContextRetriever
}

// ContextRetriever は質問に関連する参照情報（スキームの説明など）を返します。
type ContextRetriever interface {
	Retrieve(ctx context.Context, query string) ([]string, error)
}

// NewChatService 新しいチャットサービスを作成
func NewChatService(gateway llm.Gateway, prompt *config.SystemPromptConfig, logger *zap.Logger) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{gateway: gateway, prompt: prompt, logger: logger}
}

// UseRetriever は参照情報の検索を有効にします。nil を渡すと無効になります。
func (s *ChatService) UseRetriever(r ContextRetriever) {
	s.retriever = r
}

// SystemPrompt は指定言語のシステムプロンプトを返します。未知の言語コードは英語になります。
func (s *ChatService) SystemPrompt(language string) string {
	return s.prompt.BuildSystemPrompt(s.prompt.LanguageName(language))
}

// Respond はアシスタントの次の発話を生成します。
func (s *ChatService) Respond(ctx context.Context, req models.ChatRequest) (models.ChatResponse, error) {
	messages := make([]llm.Message, 0, len(req.Messages)+1)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: s.SystemPrompt(req.Language)})
	for _, msg := range req.Messages {
		// user / assistant 以外のロールは捨てる（systemの差し込みを防ぐ）
		switch msg.Role {
		case models.RoleUser:
			messages = append(messages, llm.Message{Role: llm.RoleUser, Content: msg.Content})
		case models.RoleAssistant:
			messages = append(messages, llm.Message{Role: llm.RoleAssistant, Content: msg.Content})
		}
	}
	if len(messages) == 1 {
		return models.ChatResponse{}, newError(KindValidation, nil, "messages must contain at least one user or assistant message")
	}
	messages[0].Content += s.referenceSection(ctx, messages)

	reply, err := s.gateway.Complete(ctx, messages)
	if err != nil {
		s.logger.Error("チャット応答の生成に失敗",
			zap.String("language", req.Language),
			zap.Int("upstream_status", llm.StatusCodeOf(err)),
			zap.Error(err))
		return models.ChatResponse{}, gatewayError(err, true)
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		reply = FallbackReply
	}
	return models.ChatResponse{Message: reply}, nil
}

// referenceSection は最後の利用者発話で参照情報を検索し、システムプロンプトへの追記を返します。
// 検索に失敗しても応答は続けます。
func (s *ChatService) referenceSection(ctx context.Context, messages []llm.Message) string {
	if s.retriever == nil {
		return ""
	}
	var query string
	for i := len(messages) - 1; i > 0; i-- {
		if messages[i].Role == llm.RoleUser {
			query = messages[i].Content
			break
		}
	}
	snippets, err := s.retriever.Retrieve(ctx, query)
	if err != nil {
		s.logger.Warn("参照情報の検索に失敗", zap.Error(err))
		return ""
	}
	if len(snippets) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\nReference information about government schemes (use only if relevant to the question):\n")
	for _, snippet := range snippets {
		sb.WriteString("- ")
		sb.WriteString(strings.ReplaceAll(snippet, "\n", " "))
		sb.WriteString("\n")
	}
	return sb.String()
}
