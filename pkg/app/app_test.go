package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	config "agrasar-api/configs"
	"agrasar-api/pkg/llm/gemini"
	"agrasar-api/pkg/llm/openai"
)

func TestNewWithMemoryStore(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{Environment: "test", LLMProvider: config.ProviderOpenAI, AdminUsername: "admin"}

	a, err := New(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	villages, err := a.Villages.ListVillages(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, villages)

	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	// シードの作業指示と資産もメモリストアに入る
	orders, err := a.Field.ListWorkOrders(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, orders, 3)
	w = httptest.NewRecorder()
	a.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/summary", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"poor_assets":2`)
}

func TestNewGateway(t *testing.T) {
	gw, err := NewGateway(context.Background(), &config.Config{LLMProvider: config.ProviderOpenAI})
	require.NoError(t, err)
	assert.IsType(t, &openai.Client{}, gw)

	gw, err = NewGateway(context.Background(), &config.Config{LLMProvider: config.ProviderGemini, LLMAPIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &gemini.Client{}, gw)

	_, err = NewGateway(context.Background(), &config.Config{LLMProvider: "anthropic"})
	assert.Error(t, err)
}

func TestNewRejectsBadPromptPath(t *testing.T) {
	cfg := &config.Config{SystemPromptPath: "/nonexistent/prompt.yaml"}
	_, err := New(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(&config.Config{Environment: "production", LogLevel: "debug"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))

	_, err = NewLogger(&config.Config{LogLevel: "loud"})
	assert.Error(t, err)
}

func TestNewWithKnowledgeIndex(t *testing.T) {
	cfg := &config.Config{
		LLMProvider:      config.ProviderOpenAI,
		QdrantURL:        "localhost:6334",
		QdrantCollection: "test_schemes",
	}

	// gRPC接続は遅延確立のため、Qdrantが起動していなくても組み立ては成功する
	a, err := New(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Knowledge)
	assert.NotEmpty(t, a.Schemes.All())
}
