package handlers

import (
	"context"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/painfulChen/offercome-sub000/pkg/logging"
	"github.com/painfulChen/offercome-sub000/platform/events"
)

type WSHandler struct {
	eventPublisher *events.EventPublisher
}

func NewWSHandler(eventPublisher *events.EventPublisher) *WSHandler {
	return &WSHandler{eventPublisher: eventPublisher}
}

func (h *WSHandler) WebSocketUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Not a websocket request"})
}

// HandleDocumentEvents streams ingestion/sync events to the client until it
// disconnects.
func (h *WSHandler) HandleDocumentEvents(c *websocket.Conn) {
	studentID := c.Query("student_id")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eventChan, err := h.eventPublisher.SubscribeDocumentEvents(ctx)
	if err != nil {
		logging.Logger.Error("Failed to subscribe to events", "error", err)
		_ = c.WriteMessage(websocket.TextMessage, []byte(`{"error":"Failed to subscribe"}`))
		return
	}

	if err := c.WriteJSON(fiber.Map{
		"type":    "connected",
		"message": "WebSocket connected successfully",
	}); err != nil {
		return
	}

	for event := range eventChan {
		// per-student connections only see their own documents
		if studentID != "" && event.StudentID != "" && event.StudentID != studentID {
			continue
		}
		if err := c.WriteJSON(event); err != nil {
			logging.Logger.Info("WebSocket closed", "error", err)
			return
		}
	}
}
