package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sentinela-labs/sentinela/internal/classifier"
	"github.com/sentinela-labs/sentinela/internal/models"
)

// Classifier scores raw text; it degrades internally and never fails.
type Classifier interface {
	Classify(ctx context.Context, text string) float64
}

// Analyzer produces a verdict; it falls back internally and never fails.
type Analyzer interface {
	Analyze(ctx context.Context, in models.PostAnalysisInput) models.PostAnalysisOutput
}

// AnalysisStore is the verdict cache. Both operations swallow storage
// errors: a failed lookup is a miss, a failed save returns false.
type AnalysisStore interface {
	GetAnalysis(ctx context.Context, post models.PostInput) (*models.PostAnalysisOutput, bool)
	SaveAnalysis(ctx context.Context, post models.PostInput, out models.PostAnalysisOutput) bool
}

// Publisher emits completed analyses to downstream consumers, best-effort.
type Publisher interface {
	PublishAnalysis(post models.PostInput, out models.PostAnalysisOutput)
}

// Workflow runs one post through the linear pipeline:
// parse → cache lookup → classify → analyze → cache write → respond.
// The store and publisher are optional; the workflow is built once at
// process start and handed to the HTTP handlers.
type Workflow struct {
	classifier Classifier
	agent      Analyzer
	store      AnalysisStore
	publisher  Publisher
}

func New(classifier Classifier, agent Analyzer, store AnalysisStore, publisher Publisher) *Workflow {
	return &Workflow{
		classifier: classifier,
		agent:      agent,
		store:      store,
		publisher:  publisher,
	}
}

// ProcessPost always returns a response: any failure in the pipeline
// produces the conservative error verdict instead of an error.
func (w *Workflow) ProcessPost(ctx context.Context, post models.PostInput) (response models.AnalysisResponse) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("[Workflow] Recovered from panic", slog.Any("panic", r))
			response = errorResponse(fmt.Sprintf("panic: %v", r))
		}
	}()

	if strings.TrimSpace(post.Text) == "" {
		return errorResponse("post text is required")
	}

	if w.store != nil {
		if cached, ok := w.store.GetAnalysis(ctx, post); ok {
			return verdictResponse(*cached, true)
		}
	}

	bertScore := w.classifier.Classify(ctx, post.Text)
	slog.Info("[Workflow] Post classified", slog.Float64("bert_score", bertScore))

	out := w.agent.Analyze(ctx, models.PostAnalysisInput{
		PostInput: post,
		BertScore: bertScore,
	})

	if w.store != nil {
		if !w.store.SaveAnalysis(ctx, post, out) {
			slog.Warn("[Workflow] Failed to cache analysis, continuing")
		}
	}
	if w.publisher != nil {
		w.publisher.PublishAnalysis(post, out)
	}

	return verdictResponse(out, false)
}

func verdictResponse(out models.PostAnalysisOutput, fromCache bool) models.AnalysisResponse {
	out.RiskScore = classifier.Round3(out.RiskScore)
	out.BertScore = classifier.Round3(out.BertScore)
	out.Confidence = classifier.Round3(out.Confidence)
	if out.RelevantSources == nil {
		out.RelevantSources = []string{}
	}
	if out.Factors == nil {
		out.Factors = map[string]any{}
	}

	return models.AnalysisResponse{
		PostAnalysisOutput: out,
		FromCache:          &fromCache,
	}
}

func errorResponse(message string) models.AnalysisResponse {
	return models.AnalysisResponse{
		PostAnalysisOutput: models.PostAnalysisOutput{
			RiskLevel:       models.RiskMedio, // conservative default
			RiskScore:       0.5,
			BertScore:       0.5,
			Confidence:      0.0,
			Reasoning:       "Erro no processamento: " + message,
			RelevantSources: []string{},
			Factors:         map[string]any{},
		},
		Error:        true,
		ErrorMessage: message,
	}
}
