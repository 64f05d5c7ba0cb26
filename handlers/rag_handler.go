package handlers

import (
	"context"
	"io"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/painfulChen/offercome-sub000/models"
	"github.com/painfulChen/offercome-sub000/pkg/logging"
	"github.com/painfulChen/offercome-sub000/platform/cache"
	"github.com/painfulChen/offercome-sub000/platform/storage"
	"github.com/painfulChen/offercome-sub000/repository"
	"github.com/painfulChen/offercome-sub000/services"
)

const (
	statsCacheTTL   = 30 * time.Second
	downloadLinkTTL = 15 * time.Minute
)

type RagHandler struct {
	router      *services.RagRouter
	scheduler   *services.SyncScheduler
	storage     *storage.Service
	docRepo     repository.DocumentRepository
	chunkRepo   repository.ChunkRepository
	maxFileSize int64
	statsCache  *cache.TypedCache[models.StatsResp]
}

func NewRagHandler(
	router *services.RagRouter,
	scheduler *services.SyncScheduler,
	storageService *storage.Service,
	docRepo repository.DocumentRepository,
	chunkRepo repository.ChunkRepository,
	maxFileSize int64,
	cacheService cache.CacheService,
) *RagHandler {
	h := &RagHandler{
		router:      router,
		scheduler:   scheduler,
		storage:     storageService,
		docRepo:     docRepo,
		chunkRepo:   chunkRepo,
		maxFileSize: maxFileSize,
	}
	if cacheService != nil {
		h.statsCache = cache.NewTypedCache[models.StatsResp](cacheService)
	}
	return h
}

func partitionFromQuery(c *fiber.Ctx) services.PartitionKey {
	return services.PartitionKey{
		StudentID:   c.Query("student_id"),
		ModuleID:    c.Query("module_id"),
		ServiceType: c.Query("service_type"),
	}
}

// Upload ingests a raw file: raw bytes go to bucket storage (best effort),
// text extraction runs through the model API, the result is indexed.
func (h *RagHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.IngestResp{Success: false, Error: "file required"})
	}
	if fileHeader.Size > h.maxFileSize {
		return c.Status(fiber.StatusBadRequest).JSON(models.IngestResp{Success: false, Error: "file too large"})
	}

	key := services.PartitionKey{
		StudentID:   c.FormValue("student_id"),
		ModuleID:    c.FormValue("module_id"),
		ServiceType: c.FormValue("service_type"),
	}
	docType := models.DocumentType(c.FormValue("doc_type", string(models.DocTypeLocalFile)))
	meta := models.DocumentMetadata{
		Category:   c.FormValue("category"),
		Source:     c.FormValue("source"),
		UploadedBy: c.FormValue("uploaded_by"),
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.IngestResp{Success: false, Error: "cannot read file"})
	}
	data, err := io.ReadAll(file)
	if cerr := file.Close(); cerr != nil {
		logging.Logger.Warn("fail closing upload", "error", cerr)
	}
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.IngestResp{Success: false, Error: "cannot read file"})
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	var filePath string
	if h.storage != nil {
		filePath, err = h.storage.UploadBytes(c.Context(), fileHeader.Filename, data, mimeType)
		if err != nil {
			// the pipeline serves from memory; losing the raw copy is not fatal
			logging.Logger.Warn("raw file storage failed", "file", fileHeader.Filename, "error", err)
			filePath = ""
		}
	}

	doc, err := h.router.IngestFile(c.Context(), key, fileHeader.Filename, filePath, mimeType, data, docType, meta)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.IngestResp{Success: false, Error: err.Error()})
	}

	return c.JSON(models.IngestResp{Success: true, DocumentID: doc.ID})
}

// IngestText indexes text supplied directly in the request body.
func (h *RagHandler) IngestText(c *fiber.Ctx) error {
	var req models.TextIngestReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.IngestResp{Success: false, Error: "invalid request"})
	}
	key := services.PartitionKey{
		StudentID:   req.StudentID,
		ModuleID:    req.ModuleID,
		ServiceType: req.ServiceType,
	}
	meta := models.DocumentMetadata{
		Category:   req.Category,
		Tags:       req.Tags,
		UploadedBy: req.UploadedBy,
	}
	title := req.Title
	if title == "" {
		title = req.FileName
	}
	doc, err := h.router.IngestText(c.Context(), key, req.Content, title, req.FileName, models.DocTypeText, meta)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.IngestResp{Success: false, Error: err.Error()})
	}
	return c.JSON(models.IngestResp{Success: true, DocumentID: doc.ID})
}

// Search runs a partition-scoped relevance search.
func (h *RagHandler) Search(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "5"))
	results, err := h.router.Search(c.Context(), partitionFromQuery(c), c.Query("q"), limit)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.SearchResp{Success: false})
	}
	if results == nil {
		results = []models.SearchResult{}
	}
	return c.JSON(models.SearchResp{Success: true, Results: results})
}

// Stats reports the partition's index statistics, cached briefly.
func (h *RagHandler) Stats(c *fiber.Ctx) error {
	key := partitionFromQuery(c)
	load := func() (models.StatsResp, error) {
		return h.router.Stats(c.Context(), key)
	}

	if h.statsCache == nil {
		stats, err := load()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(stats)
	}

	cacheKey, err := statsCacheKey(key)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	stats, err := h.statsCache.GetOrLoad(cacheKey, statsCacheTTL, load)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(stats)
}

func statsCacheKey(key services.PartitionKey) (string, error) {
	svcKey, err := key.CacheKey()
	if err != nil {
		return "", err
	}
	return "rag:stats:" + svcKey, nil
}

// ForceSync drains the sync queue immediately; operational tooling hook.
func (h *RagHandler) ForceSync(c *fiber.Ctx) error {
	if err := h.router.ForceSync(context.Background()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	stats := h.router.QueueStats()
	return c.JSON(fiber.Map{
		"success": true,
		"queue": models.QueueStatsResp{
			Backlog:     stats.Backlog,
			Flushes:     stats.Flushes,
			FlushErrors: stats.FlushErrors,
			Dropped:     stats.Dropped,
			LastFlush:   stats.LastFlush,
		},
	})
}

// Document returns the durable view of a document: the rag_documents row,
// its chunk count, and a short-lived download link when the raw file is
// still in bucket storage.
func (h *RagHandler) Document(c *fiber.Ctx) error {
	docID := c.Params("doc_id")
	rec, err := h.docRepo.GetByID(c.Context(), docID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "document not found"})
	}

	chunkCount, err := h.chunkRepo.CountByDocumentID(c.Context(), docID)
	if err != nil {
		logging.Logger.Warn("fail counting chunks", "docID", docID, "error", err)
	}

	resp := models.DocumentDetailResp{
		Success:    true,
		DocumentID: rec.DocumentID,
		Title:      rec.Title,
		Type:       rec.Type,
		FileName:   rec.FileName,
		FilePath:   rec.FilePath,
		FileSize:   rec.FileSize,
		MimeType:   rec.MimeType,
		Category:   rec.Category,
		Status:     rec.Status,
		ChunkCount: chunkCount,
	}
	if h.storage != nil && rec.FilePath != "" {
		if exists, err := h.storage.FileExists(rec.FilePath); err == nil && exists {
			if url, err := h.storage.GeneratePresignedGetDownload(rec.FilePath, time.Now().Add(downloadLinkTTL)); err == nil {
				resp.DownloadURL = url
			}
		}
	}
	return c.JSON(resp)
}

// Chunks lists a document's persisted chunk rows in index order.
func (h *RagHandler) Chunks(c *fiber.Ctx) error {
	docID := c.Params("doc_id")
	if _, err := h.docRepo.GetByID(c.Context(), docID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "document not found"})
	}

	records, err := h.chunkRepo.GetByDocumentID(c.Context(), docID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	chunks := make([]models.ChunkInfo, 0, len(records))
	for _, rec := range records {
		chunks = append(chunks, models.ChunkInfo{
			ChunkIndex:  rec.ChunkIndex,
			Text:        rec.ChunkText,
			Fingerprint: rec.Fingerprint,
		})
	}
	return c.JSON(models.ChunkListResp{Success: true, Chunks: chunks})
}

// Delete soft-deletes a document within a partition.
func (h *RagHandler) Delete(c *fiber.Ctx) error {
	docID := c.Params("doc_id")
	if err := h.router.Delete(c.Context(), partitionFromQuery(c), docID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true, "document_id": docID, "status": models.StatusInactive})
}

// Health surfaces the scheduler's composite health signal.
func (h *RagHandler) Health(c *fiber.Ctx) error {
	health := h.scheduler.Health()
	status := fiber.StatusOK
	if !health.Healthy {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(models.HealthResp{
		Healthy:    health.Healthy,
		Backlog:    health.Backlog,
		RunCount:   health.RunCount,
		ErrorCount: health.ErrorCount,
		LastRun:    health.LastRun,
	})
}
