package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/vedran77/messagely/internal/auth"
	"github.com/vedran77/messagely/internal/metrics"
)

type contextKey string

const UsernameKey contextKey = "username"

// TokenField is the query parameter and JSON body field that may carry the
// token when no Authorization header is sent.
const TokenField = "_token"

const maxTokenBody = 1 << 20

// Auth verifies the request token before anything else runs and stores the
// caller's username in the context. Failures stop the chain with 401.
func Auth(issuer *auth.Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := extractToken(r)
			if tokenStr == "" {
				metrics.AuthFailures.WithLabelValues(metrics.ReasonMissingToken).Inc()
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid token")
				return
			}

			claims, err := issuer.Verify(tokenStr)
			if err != nil {
				metrics.AuthFailures.WithLabelValues(metrics.ReasonInvalidToken).Inc()
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid token")
				return
			}

			ctx := WithUsername(r.Context(), claims.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken looks at the Authorization header, then the _token query
// parameter, then a _token field in a JSON body. The body is restored for the
// next handler. An unreadable body counts as carrying no token.
func extractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}

	if t := r.URL.Query().Get(TokenField); t != "" {
		return t
	}

	if r.Body == nil || r.Body == http.NoBody || !isJSON(r) {
		return ""
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxTokenBody))
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil || len(bytes.TrimSpace(raw)) == 0 {
		return ""
	}

	var carrier struct {
		Token string `json:"_token"`
	}
	if err := json.Unmarshal(raw, &carrier); err != nil {
		// Let the handler report malformed bodies; there is simply no token.
		return ""
	}
	return carrier.Token
}

func isJSON(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return ct == "" || strings.HasPrefix(ct, "application/json")
}

func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, UsernameKey, username)
}

// GetUsername returns the verified caller, or "" outside Auth.
func GetUsername(ctx context.Context) string {
	username, _ := ctx.Value(UsernameKey).(string)
	return username
}

// RequireSelf enforces the exact-match rule against the {param} path value
// before the handler looks anything up. It must run inside Auth.
func RequireSelf(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch err := auth.RequireSelf(GetUsername(r.Context()), r.PathValue(param)); err {
			case nil:
				next.ServeHTTP(w, r)
			case auth.ErrForbidden:
				metrics.AuthFailures.WithLabelValues(metrics.ReasonForbidden).Inc()
				writeError(w, http.StatusForbidden, "FORBIDDEN", "You do not have access to this resource")
			default:
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid token")
			}
		})
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
