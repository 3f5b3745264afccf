package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	config "agrasar-api/configs"
	"agrasar-api/pkg/llm"
	"agrasar-api/pkg/models"
)

// buildForecastPrompt は村データから4週間の労働力・費用予測を依頼するプロンプトを組み立てます。
func buildForecastPrompt(village models.Village, migrationAdjustment, dailyWage int, workTypes []string) string {
	if len(workTypes) == 0 {
		workTypes = []string{"road repair", "water harvesting", "pond construction"}
	}

	var sb strings.Builder
	sb.WriteString("Given village data, create a 4-week MGNREGA labour & cost forecast.\n\n")
	sb.WriteString(fmt.Sprintf("Village: %s, Population: %d, Households: %d\n", village.Name, village.Population, village.Households))
	sb.WriteString(fmt.Sprintf("Migration adjustment: %d%%\n", migrationAdjustment))
	sb.WriteString(fmt.Sprintf("MGNREGA wage: ₹%d/day\n\n", dailyWage))
	sb.WriteString("Estimate:\n")
	sb.WriteString("- Workers needed per week\n")
	sb.WriteString(fmt.Sprintf("- Recommended work types (%s)\n", strings.Join(workTypes, ", ")))
	sb.WriteString("- Estimated budget\n")
	sb.WriteString("- Confidence level (0-1)\n")
	sb.WriteString("- Brief reasoning (1-2 lines)\n\n")
	sb.WriteString(`Respond with JSON:
{
  "workers_needed": <number>,
  "confidence": <0-1>,
  "recommended_work_types": [<types>],
  "estimated_budget": <amount in INR>,
  "notes": "<brief reasoning>"
}`)
	return sb.String()
}

// forecastMessages はゲートウェイに送るメッセージ列を返します。
func forecastMessages(prompt *config.SystemPromptConfig, userPrompt string) []llm.Message {
	instruction := prompt.Forecast.ExpertInstruction
	if instruction == "" {
		instruction = "You are an expert in MGNREGA forecasting. Always respond with valid JSON only."
	}
	return []llm.Message{
		{Role: llm.RoleSystem, Content: instruction},
		{Role: llm.RoleUser, Content: userPrompt},
	}
}

// gatewayError はゲートウェイのエラーをサービスエラーに変換します。
// quota が true の場合、429/402 をそれぞれ専用の分類にします。
func gatewayError(err error, quota bool) *Error {
	var se *llm.StatusError
	if !errors.As(err, &se) {
		return newError(KindUpstream, err, "%s", err.Error())
	}
	if quota {
		switch se.StatusCode {
		case http.StatusTooManyRequests:
			return newError(KindRateLimited, err, RateLimitMessage)
		case http.StatusPaymentRequired:
			return newError(KindPaymentRequired, err, PaymentRequiredMessage)
		}
	}
	return newError(KindUpstream, err, "%s", se.Message)
}
