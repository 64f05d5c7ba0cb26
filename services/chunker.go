package services

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/painfulChen/offercome-sub000/models"
)

// sentence terminators, latin and CJK
var sentenceTerminators = map[rune]bool{
	'.': true, '!': true, '?': true,
	'。': true, '！': true, '？': true,
	';': true, '；': true,
}

// ChunkText splits text into greedy sentence-accumulated segments. A chunk
// is emitted once appending the next sentence would exceed maxChunkLength,
// so a chunk may overshoot the limit by up to one sentence. The final
// non-empty buffer is always emitted.
func ChunkText(text string, maxChunkLength int) []string {
	if maxChunkLength <= 0 {
		maxChunkLength = 500
	}
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	var buf strings.Builder
	for _, sentence := range sentences {
		if buf.Len() > 0 && buf.Len()+len(sentence) > maxChunkLength {
			chunks = append(chunks, buf.String())
			buf.Reset()
		}
		buf.WriteString(sentence)
	}
	if strings.TrimSpace(buf.String()) != "" {
		chunks = append(chunks, buf.String())
	}
	return chunks
}

func splitSentences(text string) []string {
	var sentences []string
	var cur strings.Builder
	for _, r := range text {
		cur.WriteRune(r)
		if sentenceTerminators[r] {
			if s := cur.String(); strings.TrimSpace(s) != "" {
				sentences = append(sentences, s)
			}
			cur.Reset()
		}
	}
	if s := cur.String(); strings.TrimSpace(s) != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// Fingerprint is a fast non-cryptographic identity hash for a chunk's text.
func Fingerprint(text string) string {
	h := fnv.New64a()
	h.Write([]byte(text))
	return fmt.Sprintf("%016x", h.Sum64())
}

// BuildChunks produces the document's chunk representation: each segment
// paired with its fingerprint.
func BuildChunks(text string, maxChunkLength int) []models.Chunk {
	segments := ChunkText(text, maxChunkLength)
	chunks := make([]models.Chunk, 0, len(segments))
	for _, seg := range segments {
		chunks = append(chunks, models.Chunk{
			Text:        seg,
			Fingerprint: Fingerprint(seg),
		})
	}
	return chunks
}
