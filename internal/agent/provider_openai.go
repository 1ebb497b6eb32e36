package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go"

	"github.com/sentinela-labs/sentinela/internal/models"
)

const jsonFormatInstructions = `
### FORMATO DE SAÍDA ESTRITO
Você DEVE retornar apenas JSON válido, exatamente neste formato:
{
  "risk_level": "BAIXO|MEDIO|ALTO|CRITICO",
  "risk_score": 0.0,
  "bert_score": 0.0,
  "confidence": 0.0,
  "reasoning": "XXX",
  "relevant_sources": ["XXX"],
  "factors": {}
}

### REQUISITOS
- Sem formatação Markdown (sem crases triplas, sem explicações).
- Nenhum texto antes ou depois do JSON.
- Sem vírgulas sobrando em objetos ou arrays.
- Escape correto de caracteres especiais nas strings.`

// OpenAIProvider produces verdicts through the chat completions API. The
// model is prompted into strict JSON output and the response is cleaned of
// markdown fences before parsing.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

func NewOpenAIProvider(client *openai.Client, model string) *OpenAIProvider {
	if model == "" || strings.HasPrefix(model, "gemini") {
		model = "gpt-4o-mini"
	}
	return &OpenAIProvider{client: client, model: model}
}

func (p *OpenAIProvider) GenerateVerdict(ctx context.Context, system, prompt string) (*models.PostAnalysisOutput, error) {
	chatCompletion, err := p.client.Chat.Completions.New(ctx,
		openai.ChatCompletionNewParams{
			Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(system + "\n" + jsonFormatInstructions),
				openai.UserMessage(prompt),
			}),
			Model:       openai.F(p.model),
			Temperature: openai.Float(0.3),
		})
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}

	if len(chatCompletion.Choices) == 0 ||
		strings.TrimSpace(chatCompletion.Choices[0].Message.Content) == "" {
		return nil, fmt.Errorf("openai returned an empty response")
	}

	raw := CleanModelResponse(chatCompletion.Choices[0].Message.Content)

	var out models.PostAnalysisOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("failed to parse openai verdict: %w", err)
	}

	return &out, nil
}

func (p *OpenAIProvider) Name() string {
	return fmt.Sprintf("openai:%s", p.model)
}

// CleanModelResponse strips the markdown fences and curly quotes chat models
// wrap JSON in despite being told not to.
func CleanModelResponse(response string) string {
	response = strings.TrimSpace(response)

	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")

	response = strings.ReplaceAll(response, "“", `"`)
	response = strings.ReplaceAll(response, "”", `"`)

	return strings.TrimSpace(response)
}
