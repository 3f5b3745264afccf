package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	config "agrasar-api/configs"
	"agrasar-api/pkg/llm"
	"agrasar-api/pkg/models"
)

// fakeGateway は呼び出しを記録し、固定の応答を返すテスト用ゲートウェイです。
type fakeGateway struct {
	mu    sync.Mutex
	reply string
	err   error
	calls int
	last  []llm.Message
}

func (g *fakeGateway) Complete(_ context.Context, messages []llm.Message) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.last = append([]llm.Message(nil), messages...)
	return g.reply, g.err
}

func loadPrompt(t *testing.T) *config.SystemPromptConfig {
	t.Helper()
	prompt, err := config.LoadSystemPrompt("")
	require.NoError(t, err)
	return prompt
}

var rampur = models.Village{
	ID:         "V1",
	Name:       "Rampur",
	District:   "Rudraprayag",
	State:      "Uttarakhand",
	Population: 1200,
	Households: 240,
}
