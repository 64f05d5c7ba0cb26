package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/painfulChen/offercome-sub000/models"
)

func TestContentHashDeterministic(t *testing.T) {
	meta := models.DocumentMetadata{Category: "resume", StudentID: "s1", Tags: []string{"go", "backend"}}

	h1 := ContentHash("some content", meta, "cv.pdf")
	h2 := ContentHash("some content", meta, "cv.pdf")

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 32)
}

func TestContentHashVariesOnInputs(t *testing.T) {
	meta := models.DocumentMetadata{Category: "resume"}
	base := ContentHash("some content", meta, "cv.pdf")

	assert.NotEqual(t, base, ContentHash("other content", meta, "cv.pdf"))
	assert.NotEqual(t, base, ContentHash("some content", meta, "other.pdf"))
	assert.NotEqual(t, base, ContentHash("some content", models.DocumentMetadata{Category: "interview"}, "cv.pdf"))
}

func TestContentHashIgnoresProcessedAt(t *testing.T) {
	early := models.DocumentMetadata{Category: "resume", ProcessedAt: time.Unix(1000, 0)}
	late := models.DocumentMetadata{Category: "resume", ProcessedAt: time.Unix(2000, 0)}

	assert.Equal(t, ContentHash("same content", early, "cv.pdf"), ContentHash("same content", late, "cv.pdf"))
}
