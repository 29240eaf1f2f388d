package embeddingclient

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"math/rand/v2"
)

// LocalEmbedder derives a unit vector from the SHA-256 of the text. Equal
// texts always give equal vectors, across processes and restarts.
type LocalEmbedder struct {
	dim int
}

func NewLocal(dim int) *LocalEmbedder {
	return &LocalEmbedder{dim: dim}
}

func (e *LocalEmbedder) Dim() int {
	return e.dim
}

func (e *LocalEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return e.generate(text), nil
}

func (e *LocalEmbedder) generate(text string) []float32 {
	digest := sha256.Sum256([]byte(text))
	seed := binary.BigEndian.Uint64(digest[:8])
	rng := rand.New(rand.NewPCG(seed, 0))

	draws := make([]float64, e.dim)
	var sum float64
	for i := range draws {
		draws[i] = rng.NormFloat64()
		sum += draws[i] * draws[i]
	}

	norm := math.Sqrt(sum)
	if norm == 0 {
		norm = 1
	}

	vec := make([]float32, e.dim)
	for i, d := range draws {
		vec[i] = float32(d / norm)
	}
	return vec
}
