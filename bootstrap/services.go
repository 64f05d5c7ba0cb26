package bootstrap

import (
	"github.com/painfulChen/offercome-sub000/config"
	"github.com/painfulChen/offercome-sub000/services"
)

type Services struct {
	Extractor ContentExtractor
	Embedder  services.Embedder
	SyncQueue *services.SyncQueue
	Scheduler *services.SyncScheduler
	Router    *services.RagRouter
}

type ContentExtractor = services.ContentExtractor

func NewServices(cfg *config.Config, repos *Repositories, infra *Infrastructure) *Services {
	res := &Services{}

	extractor := services.NewHTTPExtractor(cfg)
	res.Extractor = extractor

	embedder := services.NewHashingEmbedder(cfg.EmbeddingDim)
	res.Embedder = embedder

	// the queue's flush target: gorm repos + persist-time embeddings
	store := services.NewSyncStore(repos.DocumentRepository, repos.ChunkRepository, embedder)
	queue := services.NewSyncQueue(store, infra.EventPublisher, cfg.SyncBatchSize, cfg.FlushInterval, cfg.SyncMaxRetries)
	res.SyncQueue = queue

	res.Scheduler = services.NewSyncScheduler(queue, cfg.SchedulerPeriod)

	res.Router = services.NewRagRouter(
		cfg.MaxChunkLength,
		extractor,
		queue,
		repos.DocumentRepository,
		infra.EventPublisher,
	)
	return res
}

// Start launches the queue flush timer and the periodic scheduler.
func (s *Services) Start() {
	s.SyncQueue.Start()
	s.Scheduler.Start()
}

// Stop drains the queue and halts both timers.
func (s *Services) Stop() {
	s.Scheduler.Stop()
	s.SyncQueue.Stop()
}
