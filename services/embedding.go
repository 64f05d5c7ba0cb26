package services

import (
	"hash/fnv"
	"math"
	"strings"
)

// Embedder turns text into a fixed-length numeric vector. The shipped
// implementation is a token-hashing stand-in; a real embedding backend can
// replace it without touching the rest of the pipeline.
type Embedder interface {
	Dimension() int
	Embed(text string) ([]float32, error)
}

type HashingEmbedder struct {
	dim int
}

func NewHashingEmbedder(dim int) *HashingEmbedder {
	if dim <= 0 {
		dim = 64
	}
	return &HashingEmbedder{dim: dim}
}

func (e *HashingEmbedder) Dimension() int {
	return e.dim
}

// Embed buckets lower-cased whitespace tokens by hash and L2-normalizes the
// histogram. Deterministic, no semantic content.
func (e *HashingEmbedder) Embed(text string) ([]float32, error) {
	vec := make([]float32, e.dim)
	tokens := strings.Fields(strings.ToLower(text))
	for _, tok := range tokens {
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[h.Sum32()%uint32(e.dim)]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		inv := 1 / math.Sqrt(norm)
		for i := range vec {
			vec[i] = float32(float64(vec[i]) * inv)
		}
	}
	return vec, nil
}
