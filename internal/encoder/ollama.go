package encoder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/resilience"
)

const (
	DefaultOllamaHost  = "http://localhost:11434"
	DefaultOllamaModel = "all-minilm"
)

// OllamaConfig configures the Ollama encoder. Dim must match the model's
// output width; responses of any other width are rejected.
type OllamaConfig struct {
	Host        string
	Model       string
	Dim         int
	Timeout     time.Duration
	MaxRetries  int
	// MaxInFlight bounds concurrent /api/embed calls; zero means 4.
	MaxInFlight int
	HTTPClient  *http.Client
}

type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaEmbedResponse struct {
	Model      string      `json:"model"`
	Embeddings [][]float64 `json:"embeddings"`
}

// Ollama encodes text with a local Ollama server's /api/embed endpoint.
type Ollama struct {
	client *http.Client
	host   string
	model  string
	dim    int
	guard  *guard
	logger *slog.Logger
}

func NewOllama(cfg OllamaConfig) *Ollama {
	if cfg.Host == "" {
		cfg.Host = DefaultOllamaHost
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOllamaModel
	}
	if cfg.Dim <= 0 {
		cfg.Dim = DefaultHashDim
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Transport: &http.Transport{
			MaxIdleConns:        4,
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     10 * time.Second,
		}}
	}
	return &Ollama{
		client: client,
		host:   strings.TrimRight(cfg.Host, "/"),
		model:  cfg.Model,
		dim:    cfg.Dim,
		guard:  newGuard("ollama-embed", cfg.Timeout, cfg.MaxRetries, cfg.MaxInFlight),
		logger: slog.Default().With("component", "ollama-encoder", "model", cfg.Model),
	}
}

func (o *Ollama) Dim() int {
	return o.dim
}

func (o *Ollama) Name() string {
	return "ollama/" + o.model
}

func (o *Ollama) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	return o.guard.encode(ctx, func(ctx context.Context) ([][]float32, error) {
		return o.embed(ctx, texts)
	})
}

func (o *Ollama) embed(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(ollamaEmbedRequest{Model: o.model, Input: texts})
	if err != nil {
		return nil, resilience.Permanent(fmt.Errorf("encoding request: %w", err))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.host+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, resilience.Permanent(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling ollama: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		err := fmt.Errorf("ollama returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, resilience.Permanent(err)
		}
		return nil, err
	}

	var decoded ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding ollama response: %w", err)
	}
	vecs := make([][]float32, len(decoded.Embeddings))
	for i, e := range decoded.Embeddings {
		v := make([]float32, len(e))
		for j, x := range e {
			v[j] = float32(x)
		}
		vecs[i] = v
	}
	if err := checkBatch(o.Name(), texts, vecs, o.dim); err != nil {
		return nil, resilience.Permanent(err)
	}
	o.logger.Debug("encoded batch", "count", len(texts))
	return vecs, nil
}
