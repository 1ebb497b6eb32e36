package embedding

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"

	"github.com/sentinela-labs/sentinela/internal/textutil"
)

// Roughly the input budget of bge-style embedding models; inputs are
// truncated before tokenization so the pipeline never overflows.
const hugotEmbedMaxRunes = 2048

// HugotEngine embeds text locally with an ONNX feature-extraction pipeline.
type HugotEngine struct {
	pipeline *pipelines.FeatureExtractionPipeline
	model    string
}

// NewHugotEngine downloads the embedding model on first use and builds a
// feature-extraction pipeline on the shared hugot session.
func NewHugotEngine(session *hugot.Session, modelName, modelDir string) (*HugotEngine, error) {
	modelPath, err := hugot.DownloadModel(modelName, modelDir, hugot.NewDownloadOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch embedding model %s: %w", modelName, err)
	}

	config := hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "trustedNewsEmbeddingPipeline",
	}
	pipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedding pipeline: %w", err)
	}

	slog.Info("[HugotEngine] Embedding pipeline ready",
		slog.String("model", modelName),
		slog.String("path", modelPath))

	return &HugotEngine{pipeline: pipeline, model: modelName}, nil
}

func (e *HugotEngine) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *HugotEngine) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	inputs := make([]string, len(texts))
	for i, t := range texts {
		inputs[i] = textutil.Truncate(textutil.Normalize(t), hugotEmbedMaxRunes)
	}

	output, err := e.pipeline.RunPipeline(inputs)
	if err != nil {
		return nil, fmt.Errorf("embedding pipeline failed: %w", err)
	}

	if len(output.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding pipeline returned %d vectors for %d inputs",
			len(output.Embeddings), len(texts))
	}

	return output.Embeddings, nil
}

func (e *HugotEngine) Name() string {
	return fmt.Sprintf("hugot:%s", e.model)
}
