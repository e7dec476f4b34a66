package openai

import (
	"sync"

	"github.com/meridianlabs/brandgraph/pkg/ai"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/sync/semaphore"
)

// Adapter implements ai.Adapter against OpenAI-compatible APIs. It manages
// separate clients for embeddings and chat/completion tasks so the two
// endpoints can point at different providers.
//
// An Adapter should be created using NewAdapter.
type Adapter struct {
	embeddingModel  string
	chatModel       string
	extractionModel string

	embeddingURL string
	embeddingKey string
	chatURL      string
	chatKey      string

	timeoutMin int
	reqLock    *semaphore.Weighted

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	ChatClient      *openai.Client
	EmbeddingClient *openai.Client
}

// NewAdapterParams defines the configuration parameters for creating a new
// Adapter.
//
// EmbeddingModel specifies the model used for embeddings.
// ChatModel specifies the model used for brief writing.
// ExtractionModel specifies the model used for mention analysis.
// EmbeddingURL and EmbeddingKey configure the embedding API endpoint.
// ChatURL and ChatKey configure the chat/completion API endpoint.
type NewAdapterParams struct {
	EmbeddingModel  string
	ChatModel       string
	ExtractionModel string

	EmbeddingURL string
	EmbeddingKey string
	ChatURL      string
	ChatKey      string

	TimeoutMin            int
	MaxConcurrentRequests int64
}

// NewAdapter creates and returns a new Adapter configured with the provided
// parameters. It initializes separate OpenAI clients for embeddings and
// chat/completion tasks.
//
// Example:
//
//	params := openai.NewAdapterParams{
//		EmbeddingModel:  "text-embedding-3-small",
//		ChatModel:       "gpt-4o-mini",
//		ExtractionModel: "gpt-4o-mini",
//		EmbeddingURL:    "https://api.openai.com/v1",
//		EmbeddingKey:    os.Getenv("OPENAI_API_KEY"),
//		ChatURL:         "https://api.openai.com/v1",
//		ChatKey:         os.Getenv("OPENAI_API_KEY"),
//	}
//	adapter := openai.NewAdapter(params)
func NewAdapter(
	params NewAdapterParams,
) *Adapter {
	chatClient := newOpenaiClient(params.ChatURL, params.ChatKey)
	embedClient := newOpenaiClient(params.EmbeddingURL, params.EmbeddingKey)

	timeoutMin := params.TimeoutMin
	if timeoutMin <= 0 {
		timeoutMin = 5
	}
	maxConcurrent := params.MaxConcurrentRequests
	if maxConcurrent <= 0 {
		maxConcurrent = 15
	}

	return &Adapter{
		embeddingModel:  params.EmbeddingModel,
		chatModel:       params.ChatModel,
		extractionModel: params.ExtractionModel,

		chatURL:      params.ChatURL,
		chatKey:      params.ChatKey,
		embeddingURL: params.EmbeddingURL,
		embeddingKey: params.EmbeddingKey,

		timeoutMin: timeoutMin,
		reqLock:    semaphore.NewWeighted(maxConcurrent),

		metricsLock: sync.Mutex{},
		metrics: ai.ModelMetrics{
			InputTokens:  0,
			OutputTokens: 0,
			TotalTokens:  0,
			DurationMs:   0,
		},

		ChatClient:      chatClient,
		EmbeddingClient: embedClient,
	}
}

func newOpenaiClient(
	baseURL string,
	apiKey string,
) *openai.Client {
	if apiKey == "" {
		return nil
	}
	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}

	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(options...)

	return &client
}
