package models

import "time"

type DocumentType string

const (
	DocTypeLocalFile   DocumentType = "local-file"
	DocTypeFeishuDoc   DocumentType = "feishu-document"
	DocTypeFeishuSheet DocumentType = "feishu-spreadsheet"
	DocTypeImage       DocumentType = "image"
	DocTypeText        DocumentType = "text"
	DocTypeUnknown     DocumentType = "unknown"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Chunk is one bounded segment of a document's content plus its
// fingerprint. The fingerprint is a fast non-cryptographic hash used for
// identity and debugging only.
type Chunk struct {
	Text        string `json:"text"`
	Fingerprint string `json:"fingerprint"`
}

// DocumentMetadata carries the recognized metadata keys. StudentID,
// ModuleID and ServiceType are required for documents created through the
// router; the bare pipeline accepts them empty.
type DocumentMetadata struct {
	Category    string    `json:"category"`
	Tags        []string  `json:"tags,omitempty"`
	Source      string    `json:"source,omitempty"`
	StudentID   string    `json:"student_id,omitempty"`
	ModuleID    string    `json:"module_id,omitempty"`
	ServiceType string    `json:"service_type,omitempty"`
	StudentName string    `json:"student_name,omitempty"`
	ModuleName  string    `json:"module_name,omitempty"`
	UploadedBy  string    `json:"uploaded_by,omitempty"`
	ProcessedAt time.Time `json:"processed_at,omitempty"`
}

// DocumentStats are mutated on access and are never part of the content hash.
type DocumentStats struct {
	SearchCount    int       `json:"search_count"`
	LastSearched   time.Time `json:"last_searched,omitempty"`
	RelevanceScore float64   `json:"relevance_score"`
}

type Document struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Type      DocumentType     `json:"type"`
	FileName  string           `json:"file_name,omitempty"`
	FilePath  string           `json:"file_path,omitempty"`
	FileSize  int64            `json:"file_size,omitempty"`
	MimeType  string           `json:"mime_type,omitempty"`
	Content   string           `json:"content"`
	Chunks    []Chunk          `json:"chunks"`
	Metadata  DocumentMetadata `json:"metadata"`
	Stats     DocumentStats    `json:"stats"`
	Status    string           `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
}

// Clone returns a deep copy. The sync queue snapshots documents at enqueue
// time so later in-memory mutation does not leak into a pending flush.
func (d *Document) Clone() *Document {
	cp := *d
	cp.Chunks = make([]Chunk, len(d.Chunks))
	copy(cp.Chunks, d.Chunks)
	if d.Metadata.Tags != nil {
		cp.Metadata.Tags = make([]string, len(d.Metadata.Tags))
		copy(cp.Metadata.Tags, d.Metadata.Tags)
	}
	return &cp
}

// QueueItem wraps a document snapshot pending durable synchronization.
// Two items with the same ContentHash are the same durable record.
type QueueItem struct {
	Document    Document  `json:"document"`
	ContentHash string    `json:"content_hash"`
	EnqueuedAt  time.Time `json:"enqueued_at"`
	RetryCount  int       `json:"retry_count"`
}
