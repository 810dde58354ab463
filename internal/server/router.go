// Package server assembles the HTTP surface and runs it until shutdown.
package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vedran77/messagely/internal/auth"
	"github.com/vedran77/messagely/internal/metrics"
	"github.com/vedran77/messagely/internal/service"
	"github.com/vedran77/messagely/internal/transport/http/handlers"
	"github.com/vedran77/messagely/internal/transport/http/middleware"
)

type Services struct {
	Auth     *service.AuthService
	Users    *service.UserService
	Messages *service.MessageService
}

type Options struct {
	RequestTimeout time.Duration
	CORSOrigins    []string
}

func NewRouter(issuer *auth.Issuer, svc Services, opts Options) http.Handler {
	authHandler := handlers.NewAuthHandler(svc.Auth)
	userHandler := handlers.NewUserHandler(svc.Users, svc.Messages)
	messageHandler := handlers.NewMessageHandler(svc.Messages)

	authed := middleware.Auth(issuer)
	self := func(h http.HandlerFunc) http.Handler {
		return middleware.Chain(h, authed, middleware.RequireSelf("username"))
	}

	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /auth/register", authHandler.Register)
	mux.HandleFunc("POST /auth/login", authHandler.Login)

	// Protected - Users
	mux.Handle("GET /users", authed(http.HandlerFunc(userHandler.List)))
	mux.Handle("GET /users/{username}", self(userHandler.Get))
	mux.Handle("GET /users/{username}/to", self(userHandler.MessagesTo))
	mux.Handle("GET /users/{username}/from", self(userHandler.MessagesFrom))

	// Protected - Messages
	mux.Handle("POST /messages", authed(http.HandlerFunc(messageHandler.Create)))
	mux.Handle("GET /messages/{id}", authed(http.HandlerFunc(messageHandler.Get)))
	mux.Handle("POST /messages/{id}/read", authed(http.HandlerFunc(messageHandler.MarkRead)))

	return middleware.Chain(mux,
		middleware.RequestLog,
		middleware.Recover,
		middleware.CORS(opts.CORSOrigins),
		middleware.Timeout(opts.RequestTimeout),
		metrics.Middleware,
	)
}
