package repository

import (
	"context"

	"github.com/painfulChen/offercome-sub000/models"
)

type DocumentRepository interface {
	// UpsertBatch writes records keyed on content_hash; re-writing the same
	// hash updates the existing row, never inserts a duplicate.
	UpsertBatch(ctx context.Context, records []*models.DocumentRecord) error

	GetByID(ctx context.Context, documentID string) (*models.DocumentRecord, error)
	GetByContentHash(ctx context.Context, contentHash string) (*models.DocumentRecord, error)
	ListActive(ctx context.Context) ([]*models.DocumentRecord, error)

	// UpdateStatus flips the soft-delete flag; rows are never removed.
	UpdateStatus(ctx context.Context, documentID string, status string) error
	CountActive(ctx context.Context) (int64, error)

	Ping(ctx context.Context) error
}

type ChunkRepository interface {
	// ReplaceForDocument swaps a document's chunk rows atomically with the
	// latest chunking of its content.
	ReplaceForDocument(ctx context.Context, documentID string, chunks []*models.ChunkRecord) error

	GetByDocumentID(ctx context.Context, documentID string) ([]*models.ChunkRecord, error)
	CountByDocumentID(ctx context.Context, documentID string) (int64, error)
}
