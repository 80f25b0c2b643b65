package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hwoarang89/solomon-church-bot/internal/chat"
	"github.com/hwoarang89/solomon-church-bot/pkg/logger"
	"github.com/hwoarang89/solomon-church-bot/pkg/response"
)

// UpdateDispatcher routes one inbound chat update and returns the replies
// destined for its chat.
type UpdateDispatcher interface {
	Dispatch(ctx context.Context, upd *chat.Update) ([]chat.Message, error)
}

// UpdateHandler receives inbound updates from the chat transport adapter.
// Replies for the update's own chat ride back in the response body; messages
// to other chats are delivered through the messenger sink.
type UpdateHandler struct {
	dispatcher UpdateDispatcher
	logger     *logger.Logger
}

// NewUpdateHandler creates a new UpdateHandler
func NewUpdateHandler(dispatcher UpdateDispatcher, log *logger.Logger) *UpdateHandler {
	return &UpdateHandler{dispatcher: dispatcher, logger: log}
}

// HandleUpdate handles POST /v1/updates
func (h *UpdateHandler) HandleUpdate(c *gin.Context) {
	var upd chat.Update
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid update payload"))
		return
	}
	if upd.UserID == 0 || upd.ChatID == 0 {
		c.JSON(http.StatusBadRequest, response.BadRequest("user_id and chat_id are required"))
		return
	}

	msgs, err := h.dispatcher.Dispatch(c.Request.Context(), &upd)
	if err != nil {
		h.logger.Error("update dispatch failed",
			zap.Int64("update_id", upd.UpdateID),
			zap.Int64("user_id", upd.UserID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, response.InternalError("Failed to process update"))
		return
	}

	if msgs == nil {
		msgs = []chat.Message{}
	}
	c.JSON(http.StatusOK, response.Success(gin.H{"messages": msgs}))
}
