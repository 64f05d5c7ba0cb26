package bootstrap

import (
	"github.com/painfulChen/offercome-sub000/config"
	"github.com/painfulChen/offercome-sub000/handlers"
)

type Handlers struct {
	RagHandler *handlers.RagHandler
	WSHandler  *handlers.WSHandler
}

func NewHandlers(cfg *config.Config, services *Services, repos *Repositories, infra *Infrastructure) *Handlers {
	res := &Handlers{}
	res.RagHandler = handlers.NewRagHandler(
		services.Router,
		services.Scheduler,
		infra.Storage,
		repos.DocumentRepository,
		repos.ChunkRepository,
		cfg.MaxFileSize,
		infra.Cache,
	)
	res.WSHandler = handlers.NewWSHandler(infra.EventPublisher)
	return res
}
