package agent

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinela-labs/sentinela/internal/models"
)

type stubRetriever struct {
	context string
	sources []string
}

func (s *stubRetriever) GetContext(_ context.Context, _ string, _ int) string {
	return s.context
}

func (s *stubRetriever) GetSources(_ context.Context, _ string, _ int) []string {
	return s.sources
}

type stubProvider struct {
	out        *models.PostAnalysisOutput
	err        error
	lastPrompt string
}

func (s *stubProvider) GenerateVerdict(_ context.Context, _, prompt string) (*models.PostAnalysisOutput, error) {
	s.lastPrompt = prompt
	return s.out, s.err
}

func (s *stubProvider) Name() string { return "stub" }

func analysisInput() models.PostAnalysisInput {
	return models.PostAnalysisInput{
		PostInput: models.PostInput{
			Text:          "Breaking: cientistas descobrem...",
			Metadata:      map[string]any{"likes": 15000},
			SocialNetwork: "Facebook",
		},
		BertScore: 0.7,
	}
}

func TestAnalyzePrimaryPath(t *testing.T) {
	retriever := &stubRetriever{
		context: "[Fonte 1: G1]\nVacinas são seguras.",
		sources: []string{"G1", "Folha"},
	}
	provider := &stubProvider{
		out: &models.PostAnalysisOutput{
			RiskLevel:       models.RiskAlto,
			RiskScore:       0.72,
			BertScore:       0.0, // model echo is ignored
			Confidence:      0.9,
			Reasoning:       "Contradiz fontes confiáveis.",
			RelevantSources: []string{"llm-invented-source"},
		},
	}

	out := New(retriever, provider).Analyze(context.Background(), analysisInput())

	assert.Equal(t, models.RiskAlto, out.RiskLevel)
	assert.Equal(t, 0.72, out.RiskScore)
	// bert_score comes from the classifier, not the model
	assert.Equal(t, 0.7, out.BertScore)
	// sources come from retrieval, whatever the model claims
	assert.Equal(t, []string{"G1", "Folha"}, out.RelevantSources)
	assert.NotNil(t, out.Factors)
}

func TestAnalyzePromptContents(t *testing.T) {
	retriever := &stubRetriever{context: "[Fonte 1: G1]\nconteúdo confiável"}
	provider := &stubProvider{
		out: &models.PostAnalysisOutput{RiskLevel: models.RiskBaixo, Reasoning: "ok"},
	}

	New(retriever, provider).Analyze(context.Background(), analysisInput())

	require.NotEmpty(t, provider.lastPrompt)
	assert.Contains(t, provider.lastPrompt, "Breaking: cientistas descobrem...")
	assert.Contains(t, provider.lastPrompt, "SCORE BERT: 0.700")
	assert.Contains(t, provider.lastPrompt, "conteúdo confiável")
	assert.Contains(t, provider.lastPrompt, "REDE SOCIAL: Facebook")
	assert.Contains(t, provider.lastPrompt, "likes: 15000")
}

func TestAnalyzeFallsBackOnProviderError(t *testing.T) {
	provider := &stubProvider{err: fmt.Errorf("model unavailable")}

	out := New(&stubRetriever{}, provider).Analyze(context.Background(), analysisInput())

	// bert 0.7 lands in the ALTO band of the fallback heuristic
	assert.Equal(t, models.RiskAlto, out.RiskLevel)
	assert.InDelta(t, 0.7*0.9, out.RiskScore, 1e-9)
	assert.Equal(t, 0.6, out.Confidence)
}

func TestAnalyzeFallsBackOnInvalidRiskLevel(t *testing.T) {
	provider := &stubProvider{
		out: &models.PostAnalysisOutput{RiskLevel: "EXTREMO", Reasoning: "x"},
	}

	out := New(&stubRetriever{}, provider).Analyze(context.Background(), analysisInput())
	assert.Equal(t, models.RiskAlto, out.RiskLevel)
	assert.Equal(t, 0.6, out.Confidence)
}

func TestAnalyzeFallsBackWithoutProvider(t *testing.T) {
	out := New(&stubRetriever{}, nil).Analyze(context.Background(), analysisInput())
	assert.Equal(t, models.RiskAlto, out.RiskLevel)
}

func TestAnalyzeClampsScores(t *testing.T) {
	provider := &stubProvider{
		out: &models.PostAnalysisOutput{
			RiskLevel:  models.RiskCritico,
			RiskScore:  1.7,
			Confidence: -0.2,
			Reasoning:  "x",
		},
	}

	out := New(&stubRetriever{}, provider).Analyze(context.Background(), analysisInput())
	assert.Equal(t, 1.0, out.RiskScore)
	assert.Equal(t, 0.0, out.Confidence)
}

func TestCleanModelResponse(t *testing.T) {
	assert.Equal(t, `{"a":1}`, CleanModelResponse("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, CleanModelResponse("  {\"a\":1}  "))
	assert.Equal(t, `{"a":"b"}`, CleanModelResponse("{“a”:“b”}"))
}
