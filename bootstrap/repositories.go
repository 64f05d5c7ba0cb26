package bootstrap

import (
	"github.com/painfulChen/offercome-sub000/platform/database"
	"github.com/painfulChen/offercome-sub000/repository"
)

type Repositories struct {
	DocumentRepository repository.DocumentRepository
	ChunkRepository    repository.ChunkRepository
}

func NewRepositories(db *database.DB) *Repositories {
	sqlDB := db.GetDatabase()
	return &Repositories{
		DocumentRepository: repository.NewDocumentRepository(sqlDB),
		ChunkRepository:    repository.NewChunkRepository(sqlDB),
	}
}
