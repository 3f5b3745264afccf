package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"agrasar-api/pkg/llm"
)

const (
	providerName          = "Gemini"
	defaultModel          = "gemini-1.5-flash"
	defaultEmbeddingModel = "gemini-embedding-001"
)

// Options はGeminiクライアントの設定です。
type Options struct {
	APIKey string
	Model  string
	// BaseURL はテストやプロキシ経由の接続でのみ指定します。
	BaseURL        string
	EmbeddingModel string
	Temperature    *float32
}

// Client はGoogle Gemini APIを使う llm.Gateway 実装です。
type Client struct {
	client         *genai.Client
	model          string
	embeddingModel string
	config         *genai.GenerateContentConfig
}

var (
	_ llm.Gateway  = (*Client)(nil)
	_ llm.Embedder = (*Client)(nil)
)

// NewClient は新しいGeminiクライアントを作成します。
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%s API key is required", providerName)
	}
	model := opts.Model
	if model == "" {
		model = defaultModel
	}
	embeddingModel := opts.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = defaultEmbeddingModel
	}

	cfg := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &Client{
		client:         client,
		model:          model,
		embeddingModel: embeddingModel,
		config:         &genai.GenerateContentConfig{Temperature: opts.Temperature},
	}, nil
}

// Complete はメッセージ列をGeminiの contents 形式に変換して生成を行います。
func (c *Client) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	system, contents := toContents(messages)

	config := *c.config
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, &config)
	if err != nil {
		return "", translateError(err)
	}
	return result.Text(), nil
}

// Embed はテキストの埋め込みベクトルを生成します。
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	result, err := c.client.Models.EmbedContent(ctx,
		c.embeddingModel,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
		nil,
	)
	if err != nil {
		return nil, translateError(err)
	}
	if len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("%s returned no embedding", providerName)
	}
	return result.Embeddings[0].Values, nil
}

// toContents はsystemメッセージをシステム指示にまとめ、assistantをGeminiの model ロールに変換します。
func toContents(messages []llm.Message) (string, []*genai.Content) {
	var system []string
	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case llm.RoleSystem:
			system = append(system, msg.Content)
		case llm.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}
	return strings.Join(system, "\n\n"), contents
}

// translateError はgenaiのAPIエラーを llm.StatusError に変換します。
func translateError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return llm.NewStatusError(providerName, apiErr.Code, apiErr.Message)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return llm.NewStatusError(providerName, apiErrPtr.Code, apiErrPtr.Message)
	}
	return fmt.Errorf("%s request failed: %w", providerName, err)
}
