package routes

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/painfulChen/offercome-sub000/handlers"
)

func RegisterRagRoutes(app *fiber.App, handler *handlers.RagHandler) {
	rag := app.Group("api/rag")
	rag.Post("/upload", handler.Upload)
	rag.Post("/text", handler.IngestText)
	rag.Get("/search", handler.Search)
	rag.Get("/stats", handler.Stats)
	rag.Post("/sync", handler.ForceSync)
	rag.Get("/documents/:doc_id/chunks", handler.Chunks)
	rag.Get("/documents/:doc_id", handler.Document)
	rag.Delete("/documents/:doc_id", handler.Delete)
	rag.Get("/health", handler.Health)
}

func RegisterEventRoutes(app *fiber.App, handler *handlers.WSHandler) {
	app.Use("/ws/rag/events", handler.WebSocketUpgrade)
	app.Get("/ws/rag/events", websocket.New(handler.HandleDocumentEvents))
}
