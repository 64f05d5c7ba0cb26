package models

import "time"

type TextIngestReq struct {
	Content     string   `json:"content"`
	Title       string   `json:"title"`
	FileName    string   `json:"file_name"`
	StudentID   string   `json:"student_id"`
	ModuleID    string   `json:"module_id"`
	ServiceType string   `json:"service_type"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	UploadedBy  string   `json:"uploaded_by"`
}

type IngestResp struct {
	Success    bool   `json:"success"`
	DocumentID string `json:"document_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

type SearchResult struct {
	DocumentID string           `json:"document_id"`
	Title      string           `json:"title"`
	Content    string           `json:"content"`
	Relevance  float64          `json:"relevance"`
	Metadata   DocumentMetadata `json:"metadata"`
}

type SearchResp struct {
	Success bool           `json:"success"`
	Results []SearchResult `json:"results"`
}

type StatsResp struct {
	TotalDocuments     int            `json:"total_documents"`
	TotalSize          int64          `json:"total_size"`
	Categories         map[string]int `json:"categories"`
	Types              map[string]int `json:"types"`
	PersistedDocuments int64          `json:"persisted_documents"`
	DBConnected        bool           `json:"db_connected"`
}

// DocumentDetailResp 持久化视图：rag_documents 行 + 分块计数
type DocumentDetailResp struct {
	Success     bool   `json:"success"`
	DocumentID  string `json:"document_id"`
	Title       string `json:"title"`
	Type        string `json:"type"`
	FileName    string `json:"file_name"`
	FilePath    string `json:"file_path,omitempty"`
	FileSize    int64  `json:"file_size"`
	MimeType    string `json:"mime_type,omitempty"`
	Category    string `json:"category"`
	Status      string `json:"status"`
	ChunkCount  int64  `json:"chunk_count"`
	DownloadURL string `json:"download_url,omitempty"`
}

type ChunkInfo struct {
	ChunkIndex  int32  `json:"chunk_index"`
	Text        string `json:"text"`
	Fingerprint string `json:"fingerprint"`
}

type ChunkListResp struct {
	Success bool        `json:"success"`
	Chunks  []ChunkInfo `json:"chunks"`
}

type QueueStatsResp struct {
	Backlog     int       `json:"backlog"`
	Flushes     int64     `json:"flushes"`
	FlushErrors int64     `json:"flush_errors"`
	Dropped     int64     `json:"dropped"`
	LastFlush   time.Time `json:"last_flush,omitempty"`
}

type HealthResp struct {
	Healthy    bool      `json:"healthy"`
	Backlog    int       `json:"backlog"`
	RunCount   int64     `json:"run_count"`
	ErrorCount int64     `json:"error_count"`
	LastRun    time.Time `json:"last_run,omitempty"`
}
