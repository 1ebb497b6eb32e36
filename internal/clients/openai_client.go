package clients

import (
	"log/slog"
	"sync"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var (
	openAIInstance *OpenAIClient
	openAIOnce     sync.Once
)

type OpenAIClient struct {
	Client *openai.Client
}

// GetOpenAIClient returns the shared OpenAI client, used when the service is
// configured with LLM_PROVIDER=openai.
func GetOpenAIClient(apiKey string) *OpenAIClient {
	openAIOnce.Do(func() {
		client := openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithRequestTimeout(LLM_REQUEST_TIMEOUT),
		)

		openAIInstance = &OpenAIClient{Client: client}
		slog.Info("[OpenAIClient] OpenAI client initialized",
			slog.Duration("timeout", LLM_REQUEST_TIMEOUT))
	})
	return openAIInstance
}
