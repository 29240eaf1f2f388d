package embeddingclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/WangWilly/xChain/pkgs/commonpkg/config"
	"github.com/WangWilly/xChain/pkgs/commonpkg/errs"
	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"
)

////////////////////////////////////////////////////////////////////////////////

const (
	OLLAMA_EMBEDDINGS_ENDPOINT = "/api/embeddings"
	OLLAMA_DEFAULT_TIMEOUT     = 30 * time.Second
	OLLAMA_VECTOR_PATH         = "embedding"
)

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

////////////////////////////////////////////////////////////////////////////////

// ollamaEmbedder asks a local Ollama server and falls back to the local
// generator when the server cannot answer. A wrongly sized answer is still an
// error.
type ollamaEmbedder struct {
	restyClient *resty.Client
	model       string
	dim         int
	fallback    *LocalEmbedder
}

func newOllama(cfg config.Embedding) *ollamaEmbedder {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = OLLAMA_DEFAULT_TIMEOUT
	}

	restyClient := resty.New()
	restyClient.SetBaseURL(cfg.OllamaBase)
	restyClient.SetHeader("User-Agent", USER_AGENT)
	restyClient.SetTimeout(timeout)

	return &ollamaEmbedder{
		restyClient: restyClient,
		model:       cfg.Model,
		dim:         cfg.VectorDim,
		fallback:    NewLocal(cfg.VectorDim),
	}
}

func (e *ollamaEmbedder) Dim() int {
	return e.dim
}

func (e *ollamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	logger := log.WithFields(log.Fields{
		"caller": "ollamaEmbedder.Embed",
		"model":  e.model,
	})

	vec, err := e.request(ctx, text)
	if err != nil {
		// the caller gave up; a local vector would only hide that
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, errs.ErrTransport) {
			logger.WithError(err).Warn("Ollama unavailable, using local embedding")
			return e.fallback.Embed(ctx, text)
		}
		return nil, err
	}
	return vec, nil
}

func (e *ollamaEmbedder) request(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.restyClient.R().
		SetContext(ctx).
		SetBody(ollamaRequest{Model: e.model, Prompt: text}).
		Post(OLLAMA_EMBEDDINGS_ENDPOINT)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to request embedding: %v", errs.ErrTransport, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: ollama returned status %d", errs.ErrTransport, resp.StatusCode())
	}

	vec, err := parseVector(resp.Body(), OLLAMA_VECTOR_PATH)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode embedding: %v", errs.ErrTransport, err)
	}

	if err := checkDim(vec, e.dim); err != nil {
		return nil, err
	}
	return vec, nil
}
