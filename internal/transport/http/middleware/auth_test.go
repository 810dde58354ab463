package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vedran77/messagely/internal/auth"
	"github.com/vedran77/messagely/internal/metrics"
)

func newIssuer(t *testing.T) *auth.Issuer {
	t.Helper()
	issuer, err := auth.NewIssuer("middleware-secret", 0)
	require.NoError(t, err)
	return issuer
}

func token(t *testing.T, issuer *auth.Issuer, username string) string {
	t.Helper()
	tok, err := issuer.Issue(username)
	require.NoError(t, err)
	return tok
}

// echoCaller writes the verified username and the body it received.
func echoCaller(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	json.NewEncoder(w).Encode(map[string]string{
		"caller": GetUsername(r.Context()),
		"body":   string(body),
	})
}

func decodeEcho(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var out map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestAuth_TokenChannels(t *testing.T) {
	issuer := newIssuer(t)
	tok := token(t, issuer, "alice")
	h := Auth(issuer)(http.HandlerFunc(echoCaller))

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "alice", decodeEcho(t, rec)["caller"])
	})

	t.Run("query parameter", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x?_token="+tok, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "alice", decodeEcho(t, rec)["caller"])
	})

	t.Run("json body field is restored", func(t *testing.T) {
		body := `{"_token":"` + tok + `","to_username":"bob"}`
		req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		out := decodeEcho(t, rec)
		assert.Equal(t, "alice", out["caller"])
		assert.Equal(t, body, out["body"])
	})
}

func TestAuth_Rejects(t *testing.T) {
	issuer := newIssuer(t)
	other, err := auth.NewIssuer("another-secret", 0)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		body   string
		reason string
	}{
		{"no token", "", "", metrics.ReasonMissingToken},
		{"non bearer scheme", "Basic abc", "", metrics.ReasonMissingToken},
		{"garbage", "Bearer not-a-jwt", "", metrics.ReasonInvalidToken},
		{"foreign signature", "Bearer " + token(t, other, "alice"), "", metrics.ReasonInvalidToken},
		{"malformed body", "", "{", metrics.ReasonMissingToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := metrics.AuthFailures.WithLabelValues(tt.reason)
			before := testutil.ToFloat64(counter)

			called := false
			h := Auth(issuer)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))

			req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(tt.body))
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.False(t, called)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"error":{"code":"UNAUTHORIZED","message":"Missing or invalid token"}}`, rec.Body.String())
			assert.Equal(t, before+1, testutil.ToFloat64(counter))
		})
	}
}

func TestRequireSelf(t *testing.T) {
	issuer := newIssuer(t)
	tok := token(t, issuer, "alice")

	mux := http.NewServeMux()
	mux.Handle("GET /users/{username}", Chain(http.HandlerFunc(echoCaller), Auth(issuer), RequireSelf("username")))

	req := httptest.NewRequest(http.MethodGet, "/users/alice", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	before := testutil.ToFloat64(metrics.AuthFailures.WithLabelValues(metrics.ReasonForbidden))
	for _, target := range []string{"bob", "nobody-at-all"} {
		req := httptest.NewRequest(http.MethodGet, "/users/"+target, nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code, target)
		assert.Contains(t, rec.Body.String(), "FORBIDDEN")
	}
	assert.Equal(t, before+2, testutil.ToFloat64(metrics.AuthFailures.WithLabelValues(metrics.ReasonForbidden)))
}

func TestRequireSelf_WithoutAuth(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("GET /users/{username}", RequireSelf("username")(http.HandlerFunc(echoCaller)))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/alice", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_UnreadableBodyIsUnauthenticated(t *testing.T) {
	counter := metrics.AuthFailures.WithLabelValues(metrics.ReasonMissingToken)
	before := testutil.ToFloat64(counter)

	called := false
	h := Auth(newIssuer(t))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))

	req := httptest.NewRequest(http.MethodPost, "/messages", iotest.ErrReader(errors.New("connection reset")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
