package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/vedran77/messagely/internal/service"
	"github.com/vedran77/messagely/internal/transport/http/middleware"
)

type MessageHandler struct {
	messageService *service.MessageService
}

func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetUsername(r.Context())

	var input service.SendMessageInput
	if !decodeJSON(w, r, &input) {
		return
	}

	msg, err := h.messageService.Create(r.Context(), caller, input)
	if err != nil {
		writeCommonError(w, r, "create message", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"message": msg})
}

func (h *MessageHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetUsername(r.Context())
	id, ok := messageID(w, r)
	if !ok {
		return
	}

	msg, err := h.messageService.GetByID(r.Context(), id, caller)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMessageNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Message not found")
		default:
			writeCommonError(w, r, "get message", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": msg})
}

func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetUsername(r.Context())
	id, ok := messageID(w, r)
	if !ok {
		return
	}

	receipt, err := h.messageService.MarkRead(r.Context(), id, caller)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMessageNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Message not found")
		default:
			writeCommonError(w, r, "mark message read", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": receipt})
}

func messageID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid message ID")
		return 0, false
	}
	return id, true
}
