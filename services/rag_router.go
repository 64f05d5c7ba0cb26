package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/painfulChen/offercome-sub000/models"
	"github.com/painfulChen/offercome-sub000/platform/events"
	"github.com/painfulChen/offercome-sub000/repository"
)

// PartitionKey selects one of the five tenancy shapes: (student), (module),
// (student, module), (service-type), (student, service-type).
type PartitionKey struct {
	StudentID   string
	ModuleID    string
	ServiceType string
}

func (k PartitionKey) CacheKey() (string, error) {
	switch {
	case k.StudentID != "" && k.ModuleID != "":
		return "student:" + k.StudentID + ":module:" + k.ModuleID, nil
	case k.StudentID != "" && k.ServiceType != "":
		return "student:" + k.StudentID + ":service:" + k.ServiceType, nil
	case k.StudentID != "":
		return "student:" + k.StudentID, nil
	case k.ModuleID != "":
		return "module:" + k.ModuleID, nil
	case k.ServiceType != "":
		return "service:" + k.ServiceType, nil
	default:
		return "", fmt.Errorf("partition key requires a student, module or service type")
	}
}

// RagRouter lazily creates and caches one pipeline instance per partition.
// Instances live for the process lifetime (no eviction) and all share the
// durable store and the single sync queue; only the in-memory document
// stores are isolated.
type RagRouter struct {
	maxChunkLength int
	extractor      ContentExtractor
	queue          *SyncQueue
	docRepo        repository.DocumentRepository
	publisher      *events.EventPublisher

	mu        sync.Mutex
	instances map[string]*RagService
}

func NewRagRouter(
	maxChunkLength int,
	extractor ContentExtractor,
	queue *SyncQueue,
	docRepo repository.DocumentRepository,
	publisher *events.EventPublisher,
) *RagRouter {
	return &RagRouter{
		maxChunkLength: maxChunkLength,
		extractor:      extractor,
		queue:          queue,
		docRepo:        docRepo,
		publisher:      publisher,
		instances:      make(map[string]*RagService),
	}
}

// ServiceFor returns the partition's pipeline instance, creating it on
// first access.
func (r *RagRouter) ServiceFor(key PartitionKey) (*RagService, error) {
	scope, err := key.CacheKey()
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if svc, ok := r.instances[scope]; ok {
		return svc, nil
	}
	svc := NewRagService(scope, r.maxChunkLength, r.extractor, r.queue, r.docRepo, r.publisher)
	r.instances[scope] = svc
	return svc, nil
}

// InstanceCount reports how many partitions have been materialized.
func (r *RagRouter) InstanceCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.instances)
}

// stampMetadata enforces the router's metadata requirements: partition ids
// are stamped in, and missing display names are synthesized rather than
// rejected.
func stampMetadata(key PartitionKey, meta models.DocumentMetadata) models.DocumentMetadata {
	if key.StudentID != "" {
		meta.StudentID = key.StudentID
		if meta.StudentName == "" {
			meta.StudentName = "Student " + key.StudentID
		}
	}
	if key.ModuleID != "" {
		meta.ModuleID = key.ModuleID
		if meta.ModuleName == "" {
			meta.ModuleName = "Module " + key.ModuleID
		}
	}
	if key.ServiceType != "" {
		meta.ServiceType = key.ServiceType
	}
	return meta
}

// IngestFile routes a raw-file ingestion to the partition's instance.
func (r *RagRouter) IngestFile(ctx context.Context, key PartitionKey, fileName, filePath, mimeType string, data []byte, docType models.DocumentType, meta models.DocumentMetadata) (*models.Document, error) {
	svc, err := r.ServiceFor(key)
	if err != nil {
		return nil, err
	}
	return svc.IngestFile(ctx, fileName, filePath, mimeType, data, docType, stampMetadata(key, meta))
}

// IngestText routes a direct-text ingestion to the partition's instance.
func (r *RagRouter) IngestText(ctx context.Context, key PartitionKey, content, title, fileName string, docType models.DocumentType, meta models.DocumentMetadata) (*models.Document, error) {
	svc, err := r.ServiceFor(key)
	if err != nil {
		return nil, err
	}
	return svc.IngestText(ctx, content, title, fileName, docType, stampMetadata(key, meta))
}

// Search runs a scoped search. Results are re-filtered on the partition's
// metadata even though the instance's store should already be scoped: a
// cold load can pull in documents the partition did not originate, and the
// double filter keeps them out.
func (r *RagRouter) Search(ctx context.Context, key PartitionKey, query string, limit int) ([]models.SearchResult, error) {
	svc, err := r.ServiceFor(key)
	if err != nil {
		return nil, err
	}
	results := svc.Search(ctx, query, limit)

	filtered := results[:0]
	for _, res := range results {
		if key.StudentID != "" && res.Metadata.StudentID != key.StudentID {
			continue
		}
		if key.ModuleID != "" && res.Metadata.ModuleID != key.ModuleID {
			continue
		}
		if key.ServiceType != "" && res.Metadata.ServiceType != key.ServiceType {
			continue
		}
		filtered = append(filtered, res)
	}
	return filtered, nil
}

// Stats reports the partition instance's view.
func (r *RagRouter) Stats(ctx context.Context, key PartitionKey) (models.StatsResp, error) {
	svc, err := r.ServiceFor(key)
	if err != nil {
		return models.StatsResp{}, err
	}
	return svc.Stats(ctx), nil
}

// Delete soft-deletes a document through the partition's instance.
func (r *RagRouter) Delete(ctx context.Context, key PartitionKey, docID string) error {
	svc, err := r.ServiceFor(key)
	if err != nil {
		return err
	}
	return svc.Delete(ctx, docID)
}

// ForceSync drains the shared queue immediately.
func (r *RagRouter) ForceSync(ctx context.Context) error {
	return r.queue.FlushAll(ctx)
}

// QueueStats exposes the shared queue's counters.
func (r *RagRouter) QueueStats() SyncQueueStats {
	return r.queue.Stats()
}
