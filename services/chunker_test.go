package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkTextEmpty(t *testing.T) {
	assert.Nil(t, ChunkText("", 500))
	assert.Nil(t, ChunkText("   \n\t  ", 500))
}

func TestChunkTextSingleSentence(t *testing.T) {
	chunks := ChunkText("hello world.", 500)
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello world.", chunks[0])
}

func TestChunkTextNoTerminator(t *testing.T) {
	// trailing text without a terminator is still emitted
	chunks := ChunkText("no terminator here", 500)
	require.Len(t, chunks, 1)
	assert.Equal(t, "no terminator here", chunks[0])
}

func TestChunkTextGreedyAccumulation(t *testing.T) {
	text := "one one. two two. three three."
	chunks := ChunkText(text, 18)

	// "one one." + " two two." fills the first buffer (17 bytes); the third
	// sentence starts a new one
	require.Len(t, chunks, 2)
	assert.Equal(t, "one one. two two.", chunks[0])
	assert.Equal(t, " three three.", chunks[1])

	// nothing is lost
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestChunkTextOvershootBySentence(t *testing.T) {
	// a single sentence longer than the limit is emitted whole: greedy
	// segmentation may exceed maxChunkLength by up to one sentence
	long := strings.Repeat("word ", 30) + "end."
	chunks := ChunkText(long, 50)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.NotEmpty(t, strings.TrimSpace(c))
	}
	assert.Equal(t, long, strings.Join(chunks, ""))
}

func TestChunkTextCJKTerminators(t *testing.T) {
	chunks := ChunkText("第一句。第二句！第三句？", 12)
	require.Len(t, chunks, 3)
	assert.Equal(t, "第一句。", chunks[0])
	assert.Equal(t, "第二句！", chunks[1])
	assert.Equal(t, "第三句？", chunks[2])
}

func TestFingerprintDeterministic(t *testing.T) {
	a := Fingerprint("some chunk text")
	b := Fingerprint("some chunk text")
	c := Fingerprint("other chunk text")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 16)
}

func TestBuildChunksNonEmptyContent(t *testing.T) {
	chunks := BuildChunks("alpha. beta. gamma.", 8)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.NotEmpty(t, c.Text)
		assert.Equal(t, Fingerprint(c.Text), c.Fingerprint)
	}
}
