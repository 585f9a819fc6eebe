// handlers_chat.go - Chat handler
package api

import (
	"log/slog"
	"net/http"

	"github.com/filechat/backend/internal/models"
	"github.com/labstack/echo/v4"
)

const chatErrorReply = "Sorry, I encountered an error processing your request."

// ChatHandlerImpl implements the ChatHandler interface
type ChatHandlerImpl struct {
	responder Responder
	logger    *slog.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(responder Responder, logger *slog.Logger) ChatHandler {
	return &ChatHandlerImpl{
		responder: responder,
		logger:    logger.With("handler", "chat"),
	}
}

// HandleChat answers {message} with {response}. It never returns an error
// body; a malformed request gets the apology reply.
func (h *ChatHandlerImpl) HandleChat(c echo.Context) error {
	var req models.ChatRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Error("error processing chat message", "error", err)
		return c.JSON(http.StatusBadRequest, models.ChatResponse{Response: chatErrorReply})
	}

	reply := h.responder.Respond(c.Request().Context(), req.Message)
	return c.JSON(http.StatusOK, models.ChatResponse{Response: reply})
}
