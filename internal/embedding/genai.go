package embedding

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GenAIEngine embeds text remotely with the Gemini embeddings API.
type GenAIEngine struct {
	client *genai.Client
	model  string
}

func NewGenAIEngine(client *genai.Client, model string) *GenAIEngine {
	if model == "" {
		model = "gemini-embedding-001"
	}
	return &GenAIEngine{client: client, model: model}
}

func (e *GenAIEngine) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *GenAIEngine) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	result, err := e.client.Models.EmbedContent(ctx,
		e.model,
		contents,
		&genai.EmbedContentConfig{
			TaskType: "SEMANTIC_SIMILARITY",
		},
	)
	if err != nil {
		return nil, fmt.Errorf("genai embed failed: %w", err)
	}

	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("genai returned %d embeddings for %d inputs",
			len(result.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(result.Embeddings))
	for i, emb := range result.Embeddings {
		vectors[i] = emb.Values
	}

	return vectors, nil
}

func (e *GenAIEngine) Name() string {
	return fmt.Sprintf("genai:%s", e.model)
}
