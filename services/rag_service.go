package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/painfulChen/offercome-sub000/models"
	"github.com/painfulChen/offercome-sub000/pkg/logging"
	"github.com/painfulChen/offercome-sub000/platform/events"
	"github.com/painfulChen/offercome-sub000/repository"
)

const (
	relevanceFloor   = 0.1
	previewMaxLength = 500
)

// RagService is one pipeline instance: an in-memory document store that is
// searchable the moment a document is ingested, with durability handled
// asynchronously by the shared sync queue. The router creates one per
// partition; they all share the durable store underneath.
type RagService struct {
	scope          string
	maxChunkLength int

	extractor ContentExtractor
	queue     *SyncQueue
	docRepo   repository.DocumentRepository
	publisher *events.EventPublisher

	mu         sync.RWMutex
	docs       map[string]*models.Document
	order      []string
	coldLoaded bool
}

func NewRagService(
	scope string,
	maxChunkLength int,
	extractor ContentExtractor,
	queue *SyncQueue,
	docRepo repository.DocumentRepository,
	publisher *events.EventPublisher,
) *RagService {
	if maxChunkLength <= 0 {
		maxChunkLength = 500
	}
	return &RagService{
		scope:          scope,
		maxChunkLength: maxChunkLength,
		extractor:      extractor,
		queue:          queue,
		docRepo:        docRepo,
		publisher:      publisher,
		docs:           make(map[string]*models.Document),
	}
}

// IngestFile extracts text from raw bytes and indexes the result. An
// extraction failure creates nothing: no in-memory document, no queue item.
// File identity (size, object key, mime type) must be on the document before
// indexing, because the queue snapshots at enqueue time.
func (s *RagService) IngestFile(ctx context.Context, fileName, filePath, mimeType string, data []byte, docType models.DocumentType, meta models.DocumentMetadata) (*models.Document, error) {
	if s.extractor == nil {
		return nil, fmt.Errorf("no content extractor configured")
	}
	content, err := s.extractor.Extract(ctx, fileName, data, docType)
	if err != nil {
		return nil, fmt.Errorf("extract content: %w", err)
	}
	doc, err := s.newDocument(content, fileName, fileName, docType, meta)
	if err != nil {
		return nil, err
	}
	doc.FileSize = int64(len(data))
	doc.FilePath = filePath
	doc.MimeType = mimeType
	s.index(ctx, doc)
	return doc, nil
}

// IngestText indexes plain text directly. The document is searchable as soon
// as this returns; the durable write happens asynchronously.
func (s *RagService) IngestText(ctx context.Context, content, title, fileName string, docType models.DocumentType, meta models.DocumentMetadata) (*models.Document, error) {
	doc, err := s.newDocument(content, title, fileName, docType, meta)
	if err != nil {
		return nil, err
	}
	s.index(ctx, doc)
	return doc, nil
}

func (s *RagService) newDocument(content, title, fileName string, docType models.DocumentType, meta models.DocumentMetadata) (*models.Document, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("empty content")
	}
	if docType == "" {
		docType = models.DocTypeUnknown
	}
	if meta.Category == "" {
		meta.Category = "general"
	}
	meta.ProcessedAt = time.Now()

	return &models.Document{
		ID:        uuid.New().String(),
		Title:     title,
		Type:      docType,
		FileName:  fileName,
		Content:   content,
		Chunks:    BuildChunks(content, s.maxChunkLength),
		Metadata:  meta,
		Status:    models.StatusActive,
		CreatedAt: time.Now(),
	}, nil
}

func (s *RagService) index(ctx context.Context, doc *models.Document) {
	s.mu.Lock()
	s.docs[doc.ID] = doc
	s.order = append(s.order, doc.ID)
	s.mu.Unlock()

	if s.queue != nil {
		s.queue.Enqueue(ctx, doc)
	}
	_ = s.publisher.PublishDocumentEvent(&models.DocumentEvent{
		Type:      models.EventDocumentIngested,
		DocID:     doc.ID,
		StudentID: doc.Metadata.StudentID,
		Status:    doc.Status,
	})
}

// Search ranks in-memory documents by token overlap with the query. It
// never errors: a malformed query or an empty index yields zero matches.
// When memory is cold it falls back to loading active rows from the durable
// store, without partition filtering (callers re-filter scoped results).
func (s *RagService) Search(ctx context.Context, query string, limit int) []models.SearchResult {
	queryTokens := strings.Fields(strings.ToLower(query))
	if len(queryTokens) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = 5
	}

	s.ensureLoaded(ctx)

	s.mu.RLock()
	var results []models.SearchResult
	for _, id := range s.order {
		doc := s.docs[id]
		if doc == nil || doc.Status != models.StatusActive {
			continue
		}
		score := relevance(queryTokens, doc.Content)
		if score <= relevanceFloor {
			continue
		}
		results = append(results, models.SearchResult{
			DocumentID: doc.ID,
			Title:      doc.Title,
			Content:    preview(doc.Content),
			Relevance:  score,
			Metadata:   doc.Metadata,
		})
	}
	s.mu.RUnlock()

	// ties keep scan order; that ordering is not a guarantee
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Relevance > results[j].Relevance
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// Touch records a search hit on a resolved document. Deliberately not part
// of the bulk scan in Search: stats only move when a caller singles a
// document out.
func (s *RagService) Touch(docID string, score float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc, ok := s.docs[docID]; ok {
		doc.Stats.SearchCount++
		doc.Stats.LastSearched = time.Now()
		doc.Stats.RelevanceScore = score
	}
}

// Get returns the in-memory document, if present.
func (s *RagService) Get(docID string) (*models.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[docID]
	return doc, ok
}

// Delete soft-deletes: status flips to inactive in memory and, best effort,
// in the durable store. Persisted rows are never removed.
func (s *RagService) Delete(ctx context.Context, docID string) error {
	s.mu.Lock()
	doc, ok := s.docs[docID]
	if ok {
		doc.Status = models.StatusInactive
	}
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("document %s not found", docID)
	}

	if s.docRepo != nil {
		if err := s.docRepo.UpdateStatus(ctx, docID, models.StatusInactive); err != nil {
			logging.Logger.Warn("durable soft delete failed", "docID", docID, "error", err)
		}
	}
	_ = s.publisher.PublishDocumentEvent(&models.DocumentEvent{
		Type:   models.EventDocumentDeleted,
		DocID:  docID,
		Status: models.StatusInactive,
	})
	return nil
}

// Stats summarizes the in-memory index plus durable-store connectivity.
func (s *RagService) Stats(ctx context.Context) models.StatsResp {
	s.mu.RLock()
	resp := models.StatsResp{
		Categories: make(map[string]int),
		Types:      make(map[string]int),
	}
	for _, doc := range s.docs {
		if doc.Status != models.StatusActive {
			continue
		}
		resp.TotalDocuments++
		resp.TotalSize += int64(len(doc.Content))
		resp.Categories[doc.Metadata.Category]++
		resp.Types[string(doc.Type)]++
	}
	s.mu.RUnlock()

	if s.docRepo != nil {
		resp.DBConnected = s.docRepo.Ping(ctx) == nil
		if n, err := s.docRepo.CountActive(ctx); err == nil {
			resp.PersistedDocuments = n
		}
	}
	return resp
}

// ensureLoaded populates a cold in-memory store from the durable store,
// once. The load is not partition-aware, which is exactly why scoped reads
// re-filter results on the metadata they require.
func (s *RagService) ensureLoaded(ctx context.Context) {
	s.mu.RLock()
	needsLoad := len(s.docs) == 0 && !s.coldLoaded && s.docRepo != nil
	s.mu.RUnlock()
	if !needsLoad {
		return
	}

	records, err := s.docRepo.ListActive(ctx)
	if err != nil {
		// degrade to the (empty) in-memory view, never fail the search
		logging.Logger.Warn("cold load from durable store failed", "scope", s.scope, "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.coldLoaded || len(s.docs) > 0 {
		return
	}
	s.coldLoaded = true
	for _, rec := range records {
		doc := rec.ToDocument()
		doc.Chunks = BuildChunks(doc.Content, s.maxChunkLength)
		s.docs[doc.ID] = doc
		s.order = append(s.order, doc.ID)
	}
	logging.Logger.Info("cold loaded documents", "scope", s.scope, "count", len(records))
}

// relevance is |queryTokens ∩ contentTokens| / |queryTokens|, both sides
// lower-cased whitespace tokens.
func relevance(queryTokens []string, content string) float64 {
	contentTokens := make(map[string]bool)
	for _, tok := range strings.Fields(strings.ToLower(content)) {
		contentTokens[tok] = true
	}
	matched := 0
	for _, tok := range queryTokens {
		if contentTokens[tok] {
			matched++
		}
	}
	return float64(matched) / float64(len(queryTokens))
}

func preview(content string) string {
	if len(content) <= previewMaxLength {
		return content
	}
	cut := content[:previewMaxLength]
	// back off a partial rune at the cut point
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut + "..."
}
