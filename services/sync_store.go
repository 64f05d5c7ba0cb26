package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/painfulChen/offercome-sub000/models"
	"github.com/painfulChen/offercome-sub000/repository"
)

// DurableStore is what the sync queue flushes into. The write must be an
// upsert keyed on content hash so retries never create duplicate rows.
type DurableStore interface {
	UpsertBatch(ctx context.Context, items []*models.QueueItem) error
}

type repoSyncStore struct {
	docs     repository.DocumentRepository
	chunks   repository.ChunkRepository
	embedder Embedder
}

// NewSyncStore adapts the gorm repositories into the queue's flush target.
// Chunk rows get their embedding vectors here, at persist time, so the
// in-memory hot path never pays for embedding.
func NewSyncStore(docs repository.DocumentRepository, chunks repository.ChunkRepository, embedder Embedder) DurableStore {
	return &repoSyncStore{docs: docs, chunks: chunks, embedder: embedder}
}

func (s *repoSyncStore) UpsertBatch(ctx context.Context, items []*models.QueueItem) error {
	records := make([]*models.DocumentRecord, 0, len(items))
	for _, item := range items {
		records = append(records, models.NewDocumentRecord(&item.Document, item.ContentHash, s.embedder.Dimension()))
	}
	if err := s.docs.UpsertBatch(ctx, records); err != nil {
		return fmt.Errorf("upsert documents: %w", err)
	}

	for _, item := range items {
		docID, err := s.canonicalDocumentID(ctx, item)
		if err != nil {
			return err
		}
		chunkRecords, err := s.buildChunkRecords(docID, &item.Document)
		if err != nil {
			return err
		}
		if err := s.chunks.ReplaceForDocument(ctx, docID, chunkRecords); err != nil {
			return fmt.Errorf("replace chunks for %s: %w", docID, err)
		}
	}
	return nil
}

// canonicalDocumentID resolves which document_id owns the content hash. A
// duplicate upload keeps the original row's id, so chunk rows must attach
// to it rather than the newer document's id.
func (s *repoSyncStore) canonicalDocumentID(ctx context.Context, item *models.QueueItem) (string, error) {
	rec, err := s.docs.GetByContentHash(ctx, item.ContentHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return item.Document.ID, nil
		}
		return "", fmt.Errorf("resolve content hash %s: %w", item.ContentHash, err)
	}
	return rec.DocumentID, nil
}

func (s *repoSyncStore) buildChunkRecords(docID string, doc *models.Document) ([]*models.ChunkRecord, error) {
	records := make([]*models.ChunkRecord, 0, len(doc.Chunks))
	for i, chunk := range doc.Chunks {
		vec, err := s.embedder.Embed(chunk.Text)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %d of %s: %w", i, docID, err)
		}
		records = append(records, &models.ChunkRecord{
			ChunkID:     uuid.New().String(),
			DocumentID:  docID,
			ChunkIndex:  int32(i),
			ChunkText:   chunk.Text,
			Fingerprint: chunk.Fingerprint,
			Embedding:   pgvector.NewVector(vec),
		})
	}
	return records, nil
}
