package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout はAPIとDBで共通に使う日付フォーマット (YYYY-MM-DD)
const DateLayout = "2006-01-02"

// Date は時刻を持たない暦日を表します。常にUTCの0時として保持します。
type Date struct {
	time.Time
}

// NewDate は年月日からDateを作成します。
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate は "2006-01-02" 形式の文字列をDateに変換します。
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Date{t}, nil
}

// DateOf は任意の時刻から暦日部分だけを取り出します。
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// AddDays は固定日数を加算します（月単位の計算は行わない）。
func (d Date) AddDays(days int) Date {
	return Date{d.Time.AddDate(0, 0, days)}
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	// ISO8601のタイムスタンプが渡された場合は日付部分のみを使う
	if len(s) > len(DateLayout) && s[len(DateLayout)] == 'T' {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Village 村の基本情報（予測の読み取り専用入力）
type Village struct {
	ID         string  `json:"id" yaml:"id"`
	Name       string  `json:"name" yaml:"name"`
	Block      string  `json:"block" yaml:"block"`
	District   string  `json:"district" yaml:"district"`
	State      string  `json:"state" yaml:"state"`
	Population int     `json:"population" yaml:"population"`
	Households int     `json:"households" yaml:"households"`
	Lat        float64 `json:"lat" yaml:"lat"`
	Lng        float64 `json:"lng" yaml:"lng"`
}

// ForecastRequest 予測生成リクエスト
// MigrationAdjustment は人口移動による増減（%）。小数は予測時に四捨五入します。
type ForecastRequest struct {
	VillageID           string  `json:"village_id"`
	StartDate           Date    `json:"start_date"`
	MigrationAdjustment float64 `json:"migration_adjustment"`
}

// Forecast 4週間分の労働力・予算予測
type Forecast struct {
	ID                   string    `json:"id"`
	VillageID            string    `json:"village_id"`
	PeriodStart          Date      `json:"period_start"`
	PeriodEnd            Date      `json:"period_end"`
	WorkersNeeded        int       `json:"workers_needed"`
	Confidence           float64   `json:"confidence"`
	RecommendedWorkTypes []string  `json:"recommended_work_types"`
	EstimatedBudget      float64   `json:"estimated_budget"`
	Notes                string    `json:"notes,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
}

// Chat roles accepted from callers.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage チャットメッセージ
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents an incoming chat request.
// 会話履歴はサーバー側に保持しないため、毎回全件が送られてくる。
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
	Language string        `json:"language,omitempty"`
}

// ChatResponse represents the response from the chat API
type ChatResponse struct {
	Message string `json:"message"`
}

// ErrorResponse は全エンドポイント共通のエラーボディです。
type ErrorResponse struct {
	Error string `json:"error"`
}

// Scheme 農村開発スキーム（市民向け案内とチャットの参照情報）
type Scheme struct {
	ID                  string `json:"id" yaml:"id"`
	Name                string `json:"name" yaml:"name"`
	Category            string `json:"category" yaml:"category"`
	Description         string `json:"description" yaml:"description"`
	EligibilityCriteria string `json:"eligibility_criteria,omitempty" yaml:"eligibility_criteria"`
	Benefits            string `json:"benefits,omitempty" yaml:"benefits"`
	ApplicationProcess  string `json:"application_process,omitempty" yaml:"application_process"`
}

// Text は検索用にスキームの内容を1つの文章にまとめます。
func (s Scheme) Text() string {
	parts := []string{s.Name + " (" + s.Category + "): " + s.Description}
	if s.EligibilityCriteria != "" {
		parts = append(parts, "Eligibility: "+s.EligibilityCriteria)
	}
	if s.Benefits != "" {
		parts = append(parts, "Benefits: "+s.Benefits)
	}
	if s.ApplicationProcess != "" {
		parts = append(parts, "How to apply: "+s.ApplicationProcess)
	}
	return strings.Join(parts, "\n")
}
