package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"agrasar-api/pkg/llm"
)

const (
	providerName    = "OpenAI"
	defaultBaseURL  = "https://api.openai.com/v1"
	defaultModel    = "gpt-4o-mini"
	defaultEmbedder = "text-embedding-3-small"
	defaultTimeout  = 60 * time.Second
	azureAPIVersion = "2024-06-01"
)

// Options はクライアントの接続設定です。
type Options struct {
	// BaseURL はOpenAI互換エンドポイントのベースURL（例: https://api.openai.com/v1）。
	// AzureDeployment を指定した場合はAzureリソースのエンドポイントとして扱います。
	BaseURL string
	APIKey  string
	Model   string
	// AzureDeployment が空でない場合、Azure OpenAIのURL形式と api-key ヘッダを使用します。
	AzureDeployment string
	AzureAPIVersion string
	// EmbeddingModel はAzureの場合は埋め込み用のデプロイ名として扱います。
	EmbeddingModel string
	Temperature    float32
	MaxTokens      int
	HTTPClient     *http.Client
}

// Client はOpenAI互換のチャット補完APIを呼び出す llm.Gateway 実装です。
type Client struct {
	opts       Options
	httpClient *http.Client
}

var (
	_ llm.Gateway  = (*Client)(nil)
	_ llm.Embedder = (*Client)(nil)
)

// NewClient は新しいクライアントを作成します。
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Model == "" {
		opts.Model = defaultModel
	}
	if opts.EmbeddingModel == "" {
		opts.EmbeddingModel = defaultEmbedder
	}
	if opts.AzureDeployment != "" && opts.AzureAPIVersion == "" {
		opts.AzureAPIVersion = azureAPIVersion
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{opts: opts, httpClient: httpClient}
}

// --- データ構造定義 ---

type chatCompletionRequest struct {
	Model       string        `json:"model,omitempty"`
	Messages    []llm.Message `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float32       `json:"temperature,omitempty"`
	Stream      bool          `json:"stream"`
}

type chatCompletionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

type embeddingRequest struct {
	Model string `json:"model,omitempty"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// errorResponse はOpenAI形式のエラーペイロードです。
// ゲートウェイによっては {"error": "..."} の文字列形式で返すため両方を扱います。
type errorResponse struct {
	Error json.RawMessage `json:"error"`
}

// Complete はチャット補完を実行し、最初の選択肢のテキストを返します。
func (c *Client) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	request := chatCompletionRequest{
		Messages:    messages,
		MaxTokens:   c.opts.MaxTokens,
		Temperature: c.opts.Temperature,
	}
	if c.opts.AzureDeployment == "" {
		// Azureはデプロイ名でモデルが決まるため model を送らない
		request.Model = c.opts.Model
	}

	var response chatCompletionResponse
	if err := c.doRequest(ctx, c.completionsURL(), request, &response); err != nil {
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", nil
	}
	return response.Choices[0].Message.Content, nil
}

// Embed はテキストのベクトル表現を生成します。
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	request := embeddingRequest{Input: text}
	if c.opts.AzureDeployment == "" {
		request.Model = c.opts.EmbeddingModel
	}

	var response embeddingResponse
	if err := c.doRequest(ctx, c.endpoint(c.opts.EmbeddingModel, "embeddings"), request, &response); err != nil {
		return nil, err
	}
	if len(response.Data) == 0 || len(response.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("%s returned no embedding", providerName)
	}
	return response.Data[0].Embedding, nil
}

func (c *Client) completionsURL() string {
	return c.endpoint(c.opts.AzureDeployment, "chat/completions")
}

// endpoint はAzureの場合はデプロイ単位のURLを、それ以外は {base}/{op} を返します。
func (c *Client) endpoint(deployment, op string) string {
	base := strings.TrimSuffix(c.opts.BaseURL, "/")
	if c.opts.AzureDeployment != "" {
		return fmt.Sprintf("%s/openai/deployments/%s/%s?api-version=%s",
			base, deployment, op, c.opts.AzureAPIVersion)
	}
	return base + "/" + op
}

// doRequest はHTTPリクエストの実行と基本的なレスポンス処理を行う共通メソッドです。
func (c *Client) doRequest(ctx context.Context, url string, requestData, responseData interface{}) error {
	if c.opts.APIKey == "" {
		return fmt.Errorf("%s API key is not configured", providerName)
	}

	requestBody, err := json.Marshal(requestData)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(requestBody))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.opts.AzureDeployment != "" {
		req.Header.Set("api-key", c.opts.APIKey)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", providerName, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return llm.NewStatusError(providerName, resp.StatusCode, errorMessage(body))
	}

	if err := json.Unmarshal(body, responseData); err != nil {
		return fmt.Errorf("decode %s response: %w", providerName, err)
	}
	return nil
}

// errorMessage はエラーペイロードからメッセージを取り出します。取り出せなければ空文字。
func errorMessage(body []byte) string {
	var payload errorResponse
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Error) == 0 {
		return ""
	}
	var asString string
	if err := json.Unmarshal(payload.Error, &asString); err == nil {
		return asString
	}
	var asObject struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload.Error, &asObject); err == nil {
		return asObject.Message
	}
	return ""
}
