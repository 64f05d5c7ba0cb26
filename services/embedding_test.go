package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashingEmbedderDimension(t *testing.T) {
	assert.Equal(t, 64, NewHashingEmbedder(0).Dimension())
	assert.Equal(t, 128, NewHashingEmbedder(128).Dimension())
}

func TestHashingEmbedderDeterministic(t *testing.T) {
	e := NewHashingEmbedder(64)

	a, err := e.Embed("job search tips for engineers")
	require.NoError(t, err)
	b, err := e.Embed("job search tips for engineers")
	require.NoError(t, err)
	c, err := e.Embed("cooking recipes")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestHashingEmbedderNormalized(t *testing.T) {
	e := NewHashingEmbedder(64)
	vec, err := e.Embed("normalize this vector please")
	require.NoError(t, err)

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)
}

func TestHashingEmbedderEmptyText(t *testing.T) {
	e := NewHashingEmbedder(16)
	vec, err := e.Embed("")
	require.NoError(t, err)
	require.Len(t, vec, 16)
	for _, v := range vec {
		assert.Zero(t, v)
	}
}
