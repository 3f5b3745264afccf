package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"agrasar-api/pkg/models"
)

//go:embed system_prompt.yaml
var defaultSystemPrompt []byte

//go:embed villages_seed.yaml
var defaultVillageSeed []byte

//go:embed schemes_seed.yaml
var defaultSchemeSeed []byte

// 法定賃金が設定されていない場合の既定値（MGNREGA 2025-26）
const (
	DefaultDailyWage      = 370
	DefaultEmploymentDays = 100
	DefaultLanguageName   = "English"
)

// SystemPromptConfig はsystem_prompt.yamlの構造を定義
type SystemPromptConfig struct {
	System struct {
		Name    string `yaml:"name"`
		Role    string `yaml:"role"`
		Version string `yaml:"version"`
	} `yaml:"system"`

	Roles      []string `yaml:"roles"`
	Guidelines []string `yaml:"guidelines"`

	Wages struct {
		SchemeYear     string `yaml:"scheme_year"`
		DailyWage      int    `yaml:"daily_wage"`
		EmploymentDays int    `yaml:"employment_days"`
	} `yaml:"wages"`

	Closing         string            `yaml:"closing"`
	DefaultLanguage string            `yaml:"default_language"`
	Languages       map[string]string `yaml:"languages"`

	Forecast struct {
		ExpertInstruction string   `yaml:"expert_instruction"`
		WorkTypes         []string `yaml:"work_types"`
	} `yaml:"forecast"`
}

// LoadSystemPrompt はYAMLからシステムプロンプト設定を読み込む。
// path が空の場合はバイナリに埋め込まれた既定の設定を使う。
func LoadSystemPrompt(path string) (*SystemPromptConfig, error) {
	data := defaultSystemPrompt
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read system prompt config: %w", err)
		}
		data = b
	}
	return ParseSystemPrompt(data)
}

// ParseSystemPrompt はYAMLをパースし、未設定の値に既定値を入れます。
func ParseSystemPrompt(data []byte) (*SystemPromptConfig, error) {
	var cfg SystemPromptConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse system prompt yaml: %w", err)
	}
	if cfg.Wages.DailyWage <= 0 {
		cfg.Wages.DailyWage = DefaultDailyWage
	}
	if cfg.Wages.EmploymentDays <= 0 {
		cfg.Wages.EmploymentDays = DefaultEmploymentDays
	}
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = "en"
	}
	if cfg.Languages == nil {
		cfg.Languages = map[string]string{}
	}
	return &cfg, nil
}

// LanguageName は言語コードを表示名に変換します。未知のコードは既定言語（英語）になります。
func (c *SystemPromptConfig) LanguageName(code string) string {
	if name, ok := c.Languages[strings.ToLower(strings.TrimSpace(code))]; ok && name != "" {
		return name
	}
	if name, ok := c.Languages[c.DefaultLanguage]; ok && name != "" {
		return name
	}
	return DefaultLanguageName
}

// BuildSystemPrompt は設定からシステムプロンプトを構築
func (c *SystemPromptConfig) BuildSystemPrompt(languageName string) string {
	var sb strings.Builder

	// 役割の定義
	sb.WriteString(fmt.Sprintf("You are %s - %s.\n\n", c.System.Name, c.System.Role))
	sb.WriteString(fmt.Sprintf("IMPORTANT: Respond ONLY in %s language. Do not mix languages unless explicitly asked.\n\n", languageName))

	sb.WriteString("Your roles:\n")
	for i, role := range c.Roles {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, role))
	}
	sb.WriteString("\n")

	sb.WriteString("Important guidelines:\n")
	for _, g := range c.Guidelines {
		sb.WriteString(fmt.Sprintf("- %s\n", g))
	}
	sb.WriteString("\n")

	if c.Wages.SchemeYear != "" {
		sb.WriteString(fmt.Sprintf("MGNREGA rates (%s):\n", c.Wages.SchemeYear))
	} else {
		sb.WriteString("MGNREGA rates:\n")
	}
	sb.WriteString(fmt.Sprintf("- Daily wage: ₹%d\n", c.Wages.DailyWage))
	sb.WriteString(fmt.Sprintf("- Typical employment days: %d days/year\n\n", c.Wages.EmploymentDays))

	if c.Closing != "" {
		sb.WriteString(c.Closing)
		sb.WriteString("\n")
	}
	return sb.String()
}

// Seed はローカル開発とDB初期投入に使う村・資産・作業指示のデータです。
type Seed struct {
	Villages   []models.Village
	Assets     []models.Asset
	WorkOrders []models.WorkOrder
}

type assetSeed struct {
	ID             string  `yaml:"id"`
	VillageID      string  `yaml:"village_id"`
	Name           string  `yaml:"name"`
	Type           string  `yaml:"type"`
	Condition      string  `yaml:"condition"`
	LastInspection string  `yaml:"last_inspection"`
	Lat            float64 `yaml:"lat"`
	Lng            float64 `yaml:"lng"`
}

type workOrderSeed struct {
	ID              string  `yaml:"id"`
	VillageID       string  `yaml:"village_id"`
	Title           string  `yaml:"title"`
	Description     string  `yaml:"description"`
	Status          string  `yaml:"status"`
	WorkersNeeded   int     `yaml:"workers_needed"`
	EstimatedBudget float64 `yaml:"estimated_budget"`
	StartDate       string  `yaml:"start_date"`
	EndDate         string  `yaml:"end_date"`
}

type seedFile struct {
	Villages   []models.Village `yaml:"villages"`
	Assets     []assetSeed      `yaml:"assets"`
	WorkOrders []workOrderSeed  `yaml:"work_orders"`
}

// optionalDate は空文字なら nil を返します。
func optionalDate(s string) (*models.Date, error) {
	if s == "" {
		return nil, nil
	}
	d, err := models.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// LoadSeed はローカル開発用の村・資産・作業指示を読み込みます。path が空なら埋め込みデータを使います。
func LoadSeed(path string) (*Seed, error) {
	data := defaultVillageSeed
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read village seed: %w", err)
		}
		data = b
	}
	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse village seed yaml: %w", err)
	}

	seed := &Seed{Villages: file.Villages}
	for _, a := range file.Assets {
		inspected, err := optionalDate(a.LastInspection)
		if err != nil {
			return nil, fmt.Errorf("asset %s: %w", a.ID, err)
		}
		condition := a.Condition
		if condition == "" {
			condition = "Good"
		}
		seed.Assets = append(seed.Assets, models.Asset{
			ID: a.ID, VillageID: a.VillageID, Name: a.Name, Type: a.Type, Condition: condition,
			LastInspection: inspected, Lat: a.Lat, Lng: a.Lng,
		})
	}
	for _, w := range file.WorkOrders {
		start, err := optionalDate(w.StartDate)
		if err != nil {
			return nil, fmt.Errorf("work order %s: %w", w.ID, err)
		}
		end, err := optionalDate(w.EndDate)
		if err != nil {
			return nil, fmt.Errorf("work order %s: %w", w.ID, err)
		}
		status := w.Status
		if status == "" {
			status = models.WorkOrderStatusOpen
		}
		seed.WorkOrders = append(seed.WorkOrders, models.WorkOrder{
			ID: w.ID, VillageID: w.VillageID, Title: w.Title, Description: w.Description, Status: status,
			WorkersNeeded: w.WorkersNeeded, EstimatedBudget: w.EstimatedBudget, StartDate: start, EndDate: end,
		})
	}
	return seed, nil
}

type schemeSeed struct {
	Schemes []models.Scheme `yaml:"schemes"`
}

// LoadSchemes はスキーム一覧を読み込みます。path が空なら埋め込みデータを使います。
func LoadSchemes(path string) ([]models.Scheme, error) {
	data := defaultSchemeSeed
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read scheme catalog: %w", err)
		}
		data = b
	}
	var seed schemeSeed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse scheme catalog yaml: %w", err)
	}
	return seed.Schemes, nil
}
