package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sentinela-labs/sentinela/internal/models"
	"github.com/sentinela-labs/sentinela/internal/sentiment"
)

const (
	contextDocuments = 5
	sourceDocuments  = 3
)

// Retriever supplies trusted-news context for a query.
type Retriever interface {
	GetContext(ctx context.Context, query string, k int) string
	GetSources(ctx context.Context, query string, k int) []string
}

// Provider turns a prompt into a structured verdict.
type Provider interface {
	GenerateVerdict(ctx context.Context, system, prompt string) (*models.PostAnalysisOutput, error)
	Name() string
}

// Agent merges the classifier score with retrieved context and asks the LLM
// for a structured verdict. There are exactly two paths: the primary
// retrieval+LLM path, and the deterministic score-only Fallback taken
// whenever the primary path fails for any reason.
type Agent struct {
	retriever Retriever
	provider  Provider
}

func New(retriever Retriever, provider Provider) *Agent {
	return &Agent{retriever: retriever, provider: provider}
}

// Analyze never fails: a broken primary path degrades to the fallback
// heuristic.
func (a *Agent) Analyze(ctx context.Context, in models.PostAnalysisInput) models.PostAnalysisOutput {
	out, err := a.primary(ctx, in)
	if err != nil {
		slog.Warn("[Agent] Primary path failed, using fallback heuristic",
			slog.Float64("bert_score", in.BertScore),
			slog.String("error", err.Error()))
		return Fallback(in)
	}
	return *out
}

func (a *Agent) primary(ctx context.Context, in models.PostAnalysisInput) (*models.PostAnalysisOutput, error) {
	if a.provider == nil {
		return nil, fmt.Errorf("no LLM provider configured")
	}

	var newsContext string
	var sources []string
	if a.retriever != nil {
		newsContext = a.retriever.GetContext(ctx, in.Text, contextDocuments)
		sources = a.retriever.GetSources(ctx, in.Text, sourceDocuments)
	}

	sentimentScore, sentimentLabel := sentiment.Analyze(in.Text)
	prompt := BuildPrompt(in, newsContext, sentimentScore, sentimentLabel)

	out, err := a.provider.GenerateVerdict(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	if !models.ValidRiskLevel(out.RiskLevel) {
		return nil, fmt.Errorf("provider %s returned unknown risk level %q", a.provider.Name(), out.RiskLevel)
	}

	// The LLM-authored risk fields are trusted; the source list is not.
	// Sources come from the retrieval step the service ran itself, and the
	// classifier score is a known input the model only echoes.
	out.BertScore = in.BertScore
	out.RiskScore = clamp01(out.RiskScore)
	out.Confidence = clamp01(out.Confidence)
	if sources == nil {
		sources = []string{}
	}
	out.RelevantSources = sources
	if out.Factors == nil {
		out.Factors = map[string]any{}
	}

	return out, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
