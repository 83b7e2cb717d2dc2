// Package hashEmbedding is an offline embedder: feature-hashed bag of words, L2 normalised.
// Identical texts map to identical vectors, which is all the local demo and tests rely on.
package hashEmbedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/akolanti/docqa/internal/rag/embedding"
)

type client struct {
	dimension int
}

func NewHashEmbedder(dimension int) embedding.Embedder {
	if dimension <= 0 {
		dimension = 512
	}
	return &client{dimension: dimension}
}

func (c *client) Dimension() int {
	return c.dimension
}

func (c *client) GetEmbedding(_ context.Context, query string) ([]float32, error) {
	return c.vector(query), nil
}

func (c *client) BatchEmbedding(_ context.Context, chunks []string) ([][]float32, error) {
	out := make([][]float32, len(chunks))
	for i, chunk := range chunks {
		out[i] = c.vector(chunk)
	}
	return out, nil
}

func (c *client) vector(text string) []float32 {
	vec := make([]float32, c.dimension)
	for _, token := range tokenize(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		sum := h.Sum32()

		// top bit picks the sign so collisions tend to cancel instead of pile up
		sign := float32(1)
		if sum&0x80000000 != 0 {
			sign = -1
		}
		vec[int(sum%uint32(c.dimension))] += sign
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec
	}
	inv := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= inv
	}
	return vec
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
