package embeddingclient

import (
	"context"
	"fmt"

	"github.com/WangWilly/xChain/pkgs/commonpkg/config"
	"github.com/WangWilly/xChain/pkgs/commonpkg/errs"
	"github.com/tidwall/gjson"
)

////////////////////////////////////////////////////////////////////////////////

const USER_AGENT = "xChain/1.0"

// Embedder turns text into a vector of exactly Dim() components.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dim() int
}

// New picks the provider variant once. An empty provider means local.
func New(cfg config.Embedding) (Embedder, error) {
	if cfg.VectorDim <= 0 {
		return nil, fmt.Errorf("%w: vector_dim must be positive, got %d", errs.ErrConfiguration, cfg.VectorDim)
	}

	switch cfg.Provider {
	case config.EMBED_PROVIDER_OPENAI:
		return newOpenAI(cfg)
	case config.EMBED_PROVIDER_OLLAMA:
		return newOllama(cfg), nil
	case "", config.EMBED_PROVIDER_LOCAL:
		return NewLocal(cfg.VectorDim), nil
	default:
		return nil, fmt.Errorf("%w: unknown embedding provider %q", errs.ErrConfiguration, cfg.Provider)
	}
}

////////////////////////////////////////////////////////////////////////////////

// parseVector reads a JSON number array at path.
func parseVector(body []byte, path string) ([]float32, error) {
	result := gjson.GetBytes(body, path)
	if !result.IsArray() {
		return nil, fmt.Errorf("no vector at %q", path)
	}

	items := result.Array()
	vec := make([]float32, 0, len(items))
	for i, item := range items {
		if item.Type != gjson.Number {
			return nil, fmt.Errorf("component %d at %q is not a number", i, path)
		}
		vec = append(vec, float32(item.Float()))
	}
	return vec, nil
}

func checkDim(vec []float32, dim int) error {
	if len(vec) != dim {
		return errs.NewDimensionMismatch(len(vec), dim)
	}
	return nil
}
