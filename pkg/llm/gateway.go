// Package llm は外部の大規模言語モデルAPIへの呼び出しを抽象化します。
// ドメイン側は Gateway だけに依存し、具体的なプロバイダ（OpenAI互換 / Gemini）は
// 設定によって差し替えます。
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Message roles understood by every gateway implementation.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message はプロバイダ非依存のチャットメッセージです。
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Gateway は同期的なチャット補完エンドポイントです。
// 返り値はモデルが生成したテキストそのもので、ストリーミングやリトライは行いません。
type Gateway interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Embedder はテキストを埋め込みベクトルに変換します。ナレッジ検索で使用します。
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// StatusError はゲートウェイが非成功ステータスを返したことを表します。
type StatusError struct {
	Provider   string
	StatusCode int
	// Message はゲートウェイ自身のエラーペイロードから取り出したメッセージ。
	// 取り出せなかった場合は汎用メッセージが入る。
	Message string
}

// NewStatusError は StatusError を作成します。message が空の場合はステータスコード付きの汎用メッセージを使います。
func NewStatusError(provider string, statusCode int, message string) *StatusError {
	if message == "" {
		message = fmt.Sprintf("%s API error: %d", provider, statusCode)
	}
	return &StatusError{Provider: provider, StatusCode: statusCode, Message: message}
}

func (e *StatusError) Error() string {
	return e.Message
}

// StatusCodeOf はエラーチェーンから上流のHTTPステータスを取り出します。見つからなければ0。
func StatusCodeOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// Func は関数を Gateway として扱うためのアダプタです。
type Func func(ctx context.Context, messages []Message) (string, error)

// Complete implements Gateway.
func (f Func) Complete(ctx context.Context, messages []Message) (string, error) {
	return f(ctx, messages)
}
