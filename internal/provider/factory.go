package provider

import (
	"context"
	"fmt"

	"photofind/internal/config"
	"photofind/internal/gallery"
)

// NewProviderFromConfig creates a Provider based on the configured type.
// Missing credentials fail here, before any indexing or search starts.
func NewProviderFromConfig(ctx context.Context, cfg config.ProviderConfig) (gallery.Provider, error) {
	switch cfg.Type {
	case "openai", "":
		return NewOpenAIProvider(cfg)
	case "gemini":
		return NewGeminiProvider(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown provider type: %q", cfg.Type)
	}
}
