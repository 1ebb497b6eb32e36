package embedding

import "context"

// Engine turns text into dense vectors for the trusted-news vector store.
// Implementations: local ONNX feature extraction (hugot) and the Gemini
// embeddings API.
type Engine interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Name() string
}
