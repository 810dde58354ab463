package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/vedran77/messagely/internal/auth"
	"github.com/vedran77/messagely/internal/service"
	"github.com/vedran77/messagely/internal/transport/http/middleware"
	"github.com/vedran77/messagely/pkg/validator"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

func writeValidationErrors(w http.ResponseWriter, errs validator.ValidationErrors) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error": map[string]any{
			"code":    "VALIDATION_ERROR",
			"message": "Invalid input",
			"fields":  errs,
		},
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return false
	}
	return true
}

// writeCommonError maps the errors every handler can see. Anything it does
// not recognise is logged and reported as a server failure.
func writeCommonError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeValidationErrors(w, verr.Fields)
	case errors.Is(err, auth.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid token")
	case errors.Is(err, auth.ErrForbidden):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "You do not have access to this resource")
	case errors.Is(err, service.ErrUpstream):
		zerolog.Ctx(r.Context()).Error().Err(err).Str("op", op).Msg("upstream failure")
		writeServerError(w, r, "UPSTREAM_FAILURE", "The request could not be completed")
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Str("op", op).Msg("unexpected error")
		writeServerError(w, r, "INTERNAL", "Something went wrong")
	}
}

// writeServerError adds the request id so a client can quote it when
// reporting the failure.
func writeServerError(w http.ResponseWriter, r *http.Request, code, message string) {
	body := map[string]string{
		"code":    code,
		"message": message,
	}
	if id := middleware.GetRequestID(r.Context()); id != "" {
		body["request_id"] = id
	}
	writeJSON(w, http.StatusInternalServerError, map[string]any{"error": body})
}
