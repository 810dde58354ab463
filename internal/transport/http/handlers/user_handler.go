package handlers

import (
	"errors"
	"net/http"

	"github.com/vedran77/messagely/internal/service"
	"github.com/vedran77/messagely/internal/transport/http/middleware"
)

type UserHandler struct {
	userService    *service.UserService
	messageService *service.MessageService
}

func NewUserHandler(userService *service.UserService, messageService *service.MessageService) *UserHandler {
	return &UserHandler{userService: userService, messageService: messageService}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		writeCommonError(w, r, "list users", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetUsername(r.Context())

	user, err := h.userService.Get(r.Context(), r.PathValue("username"), caller)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		default:
			writeCommonError(w, r, "get user", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *UserHandler) MessagesTo(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetUsername(r.Context())

	messages, err := h.messageService.ListTo(r.Context(), r.PathValue("username"), caller)
	if err != nil {
		writeCommonError(w, r, "list messages to", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

func (h *UserHandler) MessagesFrom(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetUsername(r.Context())

	messages, err := h.messageService.ListFrom(r.Context(), r.PathValue("username"), caller)
	if err != nil {
		writeCommonError(w, r, "list messages from", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
}
