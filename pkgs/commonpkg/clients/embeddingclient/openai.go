package embeddingclient

import (
	"context"
	"fmt"
	"time"

	"github.com/WangWilly/xChain/pkgs/commonpkg/config"
	"github.com/WangWilly/xChain/pkgs/commonpkg/errs"
	"github.com/go-resty/resty/v2"
)

////////////////////////////////////////////////////////////////////////////////

const (
	OPENAI_EMBEDDINGS_ENDPOINT = "/embeddings"
	OPENAI_DEFAULT_TIMEOUT     = 20 * time.Second
	OPENAI_DEFAULT_VECTOR_PATH = "data.0.embedding"
)

type openAIRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

////////////////////////////////////////////////////////////////////////////////

// openAIEmbedder talks to an OpenAI compatible /embeddings endpoint. Every
// failure is returned to the caller.
type openAIEmbedder struct {
	restyClient *resty.Client
	model       string
	vectorPath  string
	dim         int
}

func newOpenAI(cfg config.Embedding) (*openAIEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: an api key is required for openai embeddings", errs.ErrConfiguration)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = OPENAI_DEFAULT_TIMEOUT
	}
	vectorPath := cfg.VectorPath
	if vectorPath == "" {
		vectorPath = OPENAI_DEFAULT_VECTOR_PATH
	}

	restyClient := resty.New()
	restyClient.SetBaseURL(cfg.APIBase)
	restyClient.SetHeader("User-Agent", USER_AGENT)
	restyClient.SetAuthToken(cfg.APIKey)
	restyClient.SetTimeout(timeout)

	return &openAIEmbedder{
		restyClient: restyClient,
		model:       cfg.Model,
		vectorPath:  vectorPath,
		dim:         cfg.VectorDim,
	}, nil
}

func (e *openAIEmbedder) Dim() int {
	return e.dim
}

func (e *openAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.restyClient.R().
		SetContext(ctx).
		SetBody(openAIRequest{Model: e.model, Input: text}).
		Post(OPENAI_EMBEDDINGS_ENDPOINT)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to request embedding: %v", errs.ErrTransport, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: embedding API returned status %d", errs.ErrTransport, resp.StatusCode())
	}

	vec, err := parseVector(resp.Body(), e.vectorPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode embedding: %v", errs.ErrTransport, err)
	}

	if err := checkDim(vec, e.dim); err != nil {
		return nil, err
	}
	return vec, nil
}
