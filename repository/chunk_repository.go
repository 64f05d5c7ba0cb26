package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/painfulChen/offercome-sub000/models"
)

type chunkRepository struct {
	DB *gorm.DB
}

func NewChunkRepository(db *gorm.DB) ChunkRepository {
	return &chunkRepository{DB: db}
}

func (r *chunkRepository) ReplaceForDocument(ctx context.Context, documentID string, chunks []*models.ChunkRecord) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", documentID).Delete(&models.ChunkRecord{}).Error; err != nil {
			return err
		}
		if len(chunks) == 0 {
			return nil
		}
		return tx.Create(&chunks).Error
	})
}

func (r *chunkRepository) GetByDocumentID(ctx context.Context, documentID string) ([]*models.ChunkRecord, error) {
	var chunks []*models.ChunkRecord
	err := r.DB.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("chunk_index").
		Find(&chunks).Error
	return chunks, err
}

func (r *chunkRepository) CountByDocumentID(ctx context.Context, documentID string) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).
		Model(&models.ChunkRecord{}).
		Where("document_id = ?", documentID).
		Count(&count).Error
	return count, err
}
