package encoder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/resilience"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

const DefaultOpenAIModel = "text-embedding-3-small"

// OpenAIConfig configures an OpenAI-compatible embeddings client. BaseURL
// may point at a local server; an empty APIKey is sent as "none" for
// services that do not authenticate.
type OpenAIConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Dim         int
	BatchSize   int
	Timeout     time.Duration
	MaxRetries  int
	// MaxInFlight bounds concurrent embedding calls; zero means 4.
	MaxInFlight int
}

// OpenAI encodes text through langchaingo's OpenAI embeddings client.
type OpenAI struct {
	embedder embeddings.Embedder
	model    string
	dim      int
	guard    *guard
	logger   *slog.Logger
}

func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}
	if cfg.APIKey == "" {
		cfg.APIKey = "none"
	}
	if cfg.Dim <= 0 {
		return nil, fmt.Errorf("openai encoder needs the model's output dimension")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 32
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithEmbeddingModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating openai client: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(client,
		embeddings.WithStripNewLines(true),
		embeddings.WithBatchSize(cfg.BatchSize),
	)
	if err != nil {
		return nil, fmt.Errorf("creating openai embedder: %w", err)
	}
	return &OpenAI{
		embedder: embedder,
		model:    cfg.Model,
		dim:      cfg.Dim,
		guard:    newGuard("openai-embed", cfg.Timeout, cfg.MaxRetries, cfg.MaxInFlight),
		logger:   slog.Default().With("component", "openai-encoder", "model", cfg.Model),
	}, nil
}

func (o *OpenAI) Dim() int {
	return o.dim
}

func (o *OpenAI) Name() string {
	return "openai/" + o.model
}

func (o *OpenAI) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	return o.guard.encode(ctx, func(ctx context.Context) ([][]float32, error) {
		vecs, err := o.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			o.logger.Error("failed to generate embeddings", "count", len(texts), "error", err)
			return nil, err
		}
		if err := checkBatch(o.Name(), texts, vecs, o.dim); err != nil {
			return nil, resilience.Permanent(err)
		}
		return vecs, nil
	})
}
