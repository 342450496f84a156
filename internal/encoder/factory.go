package encoder

import (
	"fmt"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/pkg/errors"
)

const (
	ProviderHash   = "hash"
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// New builds the configured encoder wrapped in Normalizing, so every vector
// it returns is unit length. Callers on the query path add Cached on top.
func New(cfg config.EncoderConfig) (Encoder, error) {
	var base Encoder
	switch strings.ToLower(cfg.Provider) {
	case "", ProviderHash:
		base = NewHash(cfg.Dimensions)
	case ProviderOllama:
		base = NewOllama(OllamaConfig{
			Host:        cfg.Host,
			Model:       cfg.Model,
			Dim:         cfg.Dimensions,
			Timeout:     cfg.Timeout,
			MaxRetries:  cfg.MaxRetries,
			MaxInFlight: cfg.MaxInFlight,
		})
	case ProviderOpenAI:
		o, err := NewOpenAI(OpenAIConfig{
			BaseURL:     cfg.Host,
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			Dim:         cfg.Dimensions,
			Timeout:     cfg.Timeout,
			MaxRetries:  cfg.MaxRetries,
			MaxInFlight: cfg.MaxInFlight,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrEncoderUnavailable, err)
		}
		base = o
	default:
		return nil, fmt.Errorf("%w: unknown encoder provider %q", apperrors.ErrInvalidParams, cfg.Provider)
	}
	return NewNormalizing(base), nil
}
