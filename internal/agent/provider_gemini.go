package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"

	"github.com/sentinela-labs/sentinela/internal/models"
)

// verdictSchema constrains Gemini to the PostAnalysisOutput shape.
var verdictSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"risk_level": {
			Type: genai.TypeString,
			Enum: []string{models.RiskBaixo, models.RiskMedio, models.RiskAlto, models.RiskCritico},
		},
		"risk_score": {Type: genai.TypeNumber},
		"bert_score": {Type: genai.TypeNumber},
		"confidence": {Type: genai.TypeNumber},
		"reasoning":  {Type: genai.TypeString},
		"relevant_sources": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
		"factors": {Type: genai.TypeObject},
	},
	Required: []string{"risk_level", "risk_score", "confidence", "reasoning"},
}

// GeminiProvider produces verdicts with the Gemini API using a response
// schema, so the model output is already valid JSON for the verdict shape.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

func NewGeminiProvider(client *genai.Client, model string) *GeminiProvider {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &GeminiProvider{client: client, model: model}
}

func (p *GeminiProvider) GenerateVerdict(ctx context.Context, system, prompt string) (*models.PostAnalysisOutput, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.3),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    verdictSchema,
	}

	result, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), config)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	raw := result.Text()
	if raw == "" {
		return nil, fmt.Errorf("gemini returned an empty response")
	}

	var out models.PostAnalysisOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("failed to parse gemini verdict: %w", err)
	}

	return &out, nil
}

func (p *GeminiProvider) Name() string {
	return fmt.Sprintf("gemini:%s", p.model)
}
