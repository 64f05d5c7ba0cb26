package models

import "time"

type DocumentEventType string

const (
	EventDocumentIngested  DocumentEventType = "ingested"
	EventDocumentPersisted DocumentEventType = "persisted"
	EventDocumentDeleted   DocumentEventType = "deleted"
	EventSyncFailed        DocumentEventType = "sync_failed"
)

type DocumentEvent struct {
	Type        DocumentEventType `json:"type"`
	DocID       string            `json:"doc_id"`
	StudentID   string            `json:"student_id,omitempty"`
	ContentHash string            `json:"content_hash,omitempty"`
	Status      string            `json:"status,omitempty"`
	Message     string            `json:"message,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}
