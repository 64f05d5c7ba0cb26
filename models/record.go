package models

import (
	"encoding/json"
	"time"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// DocumentRecord 持久化文档行，content_hash 为自然键（upsert 依据）
type DocumentRecord struct {
	// 主键字段
	DocumentID string `gorm:"column:document_id;type:varchar(255);primaryKey" json:"document_id"`

	// 基本信息字段
	Title       string `gorm:"column:title;type:varchar(512)" json:"title"`
	Type        string `gorm:"column:type;type:varchar(50);index:idx_rag_type" json:"type"`
	StudentID   string `gorm:"column:student_id;type:varchar(255);index:idx_rag_student" json:"student_id"`
	ModuleID    string `gorm:"column:module_id;type:varchar(255);index:idx_rag_module" json:"module_id"`
	ServiceType string `gorm:"column:service_type;type:varchar(100);index:idx_rag_service" json:"service_type"`
	FileName    string `gorm:"column:file_name;type:varchar(512)" json:"file_name"`
	FilePath    string `gorm:"column:file_path;type:text" json:"file_path"`
	FileSize    int64  `gorm:"column:file_size;type:bigint" json:"file_size"`
	MimeType    string `gorm:"column:mime_type;type:varchar(128)" json:"mime_type"`
	Content     string `gorm:"column:content;type:text;not null" json:"content"`

	Category string         `gorm:"column:category;type:varchar(128)" json:"category"`
	Tags     pq.StringArray `gorm:"column:tags;type:text[]" json:"tags"`
	Metadata string         `gorm:"column:metadata;type:jsonb" json:"metadata"`

	VectorDimension int32 `gorm:"column:vector_dimension;type:int" json:"vector_dimension"`

	// 状态追踪字段
	Status      string `gorm:"column:status;type:varchar(50);default:'active';index:idx_rag_status" json:"status"`
	ContentHash string `gorm:"column:content_hash;type:varchar(64);uniqueIndex:idx_rag_content_hash" json:"content_hash"`

	// 时间戳字段
	CreatedAt time.Time `gorm:"column:created_at;type:timestamp" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp" json:"updated_at"`
}

// TableName 指定表名
func (DocumentRecord) TableName() string {
	return "rag_documents"
}

// BeforeCreate GORM 钩子：创建前设置默认值
func (r *DocumentRecord) BeforeCreate(tx *gorm.DB) error {
	if r.Status == "" {
		r.Status = StatusActive
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	return nil
}

func (r *DocumentRecord) IsActive() bool {
	return r.Status == StatusActive
}

// NewDocumentRecord flattens an in-memory document into its durable row.
// Per-access stats never reach the durable store.
func NewDocumentRecord(doc *Document, contentHash string, vectorDim int) *DocumentRecord {
	metaJSON, _ := json.Marshal(doc.Metadata)
	return &DocumentRecord{
		DocumentID:      doc.ID,
		Title:           doc.Title,
		Type:            string(doc.Type),
		StudentID:       doc.Metadata.StudentID,
		ModuleID:        doc.Metadata.ModuleID,
		ServiceType:     doc.Metadata.ServiceType,
		FileName:        doc.FileName,
		FilePath:        doc.FilePath,
		FileSize:        doc.FileSize,
		MimeType:        doc.MimeType,
		Content:         doc.Content,
		Category:        doc.Metadata.Category,
		Tags:            pq.StringArray(doc.Metadata.Tags),
		Metadata:        string(metaJSON),
		VectorDimension: int32(vectorDim),
		Status:          doc.Status,
		ContentHash:     contentHash,
		CreatedAt:       doc.CreatedAt,
	}
}

// ToDocument rehydrates the in-memory form from a durable row. Chunks are
// rebuilt by the caller; stats start fresh.
func (r *DocumentRecord) ToDocument() *Document {
	var meta DocumentMetadata
	if r.Metadata != "" {
		_ = json.Unmarshal([]byte(r.Metadata), &meta)
	}
	if meta.Category == "" {
		meta.Category = r.Category
	}
	return &Document{
		ID:        r.DocumentID,
		Title:     r.Title,
		Type:      DocumentType(r.Type),
		FileName:  r.FileName,
		FilePath:  r.FilePath,
		FileSize:  r.FileSize,
		MimeType:  r.MimeType,
		Content:   r.Content,
		Metadata:  meta,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
	}
}

// ChunkRecord 持久化分块行，embedding 由哈希嵌入器生成
type ChunkRecord struct {
	// 主键字段
	ChunkID string `gorm:"column:chunk_id;type:varchar(255);primaryKey" json:"chunk_id"`

	// 外键字段
	DocumentID string `gorm:"column:document_id;type:varchar(255);not null;index:idx_rag_chunk_doc" json:"document_id"`

	ChunkIndex  int32  `gorm:"column:chunk_index;type:int;not null" json:"chunk_index"`
	ChunkText   string `gorm:"column:chunk_text;type:text;not null" json:"chunk_text"`
	Fingerprint string `gorm:"column:fingerprint;type:varchar(32)" json:"fingerprint"`

	// 向量字段（pgvector）
	Embedding pgvector.Vector `gorm:"column:embedding;type:vector(64)" json:"embedding"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:now()" json:"created_at"`
}

// TableName 指定表名
func (ChunkRecord) TableName() string {
	return "rag_chunks"
}

// BeforeCreate GORM 钩子：创建前设置默认值
func (c *ChunkRecord) BeforeCreate(tx *gorm.DB) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	return nil
}
