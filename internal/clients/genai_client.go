package clients

import (
	"context"
	"log/slog"
	"sync"

	"google.golang.org/genai"
)

var (
	genaiInstance *GenAIClient
	genaiOnce     sync.Once
)

type GenAIClient struct {
	Client *genai.Client
}

// GetGenAIClient returns the shared Gemini client used for both the verdict
// LLM and (optionally) remote embeddings.
func GetGenAIClient(ctx context.Context, apiKey string) (*GenAIClient, error) {
	var initErr error
	genaiOnce.Do(func() {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey: apiKey,
		})
		if err != nil {
			initErr = err
			return
		}

		slog.Info("[GenAIClient] Gemini client initialized")
		genaiInstance = &GenAIClient{Client: client}
	})

	return genaiInstance, initErr
}
