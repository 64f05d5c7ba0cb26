package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/painfulChen/offercome-sub000/models"
)

type documentRepository struct {
	DB *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{DB: db}
}

func (r *documentRepository) UpsertBatch(ctx context.Context, records []*models.DocumentRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "content_hash"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"title",
				"content",
				"file_name",
				"file_path",
				"file_size",
				"mime_type",
				"category",
				"tags",
				"metadata",
				"vector_dimension",
				"status",
				"updated_at",
			}),
		}).
		Create(&records).Error
}

func (r *documentRepository) GetByID(ctx context.Context, documentID string) (*models.DocumentRecord, error) {
	var rec models.DocumentRecord
	err := r.DB.WithContext(ctx).Where("document_id = ?", documentID).First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *documentRepository) GetByContentHash(ctx context.Context, contentHash string) (*models.DocumentRecord, error) {
	var rec models.DocumentRecord
	err := r.DB.WithContext(ctx).Where("content_hash = ?", contentHash).First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *documentRepository) ListActive(ctx context.Context) ([]*models.DocumentRecord, error) {
	var recs []*models.DocumentRecord
	err := r.DB.WithContext(ctx).
		Where("status = ?", models.StatusActive).
		Order("created_at").
		Find(&recs).Error
	return recs, err
}

func (r *documentRepository) UpdateStatus(ctx context.Context, documentID string, status string) error {
	return r.DB.WithContext(ctx).
		Model(&models.DocumentRecord{}).
		Where("document_id = ?", documentID).
		Update("status", status).Error
}

func (r *documentRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).
		Model(&models.DocumentRecord{}).
		Where("status = ?", models.StatusActive).
		Count(&count).Error
	return count, err
}

func (r *documentRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
