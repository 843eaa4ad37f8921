package main

import (
	"net/http"

	"github.com/mquernel/portfolio/backend/internal/handler"
	"github.com/mquernel/portfolio/backend/internal/repository"
	"github.com/mquernel/portfolio/backend/internal/service"
	"github.com/mquernel/portfolio/backend/pkg/auth"
)

type routerDeps struct {
	db          repository.DB
	contact     service.ContactService
	verifier    auth.Verifier
	limiter     *handler.RateLimiter
	frontendURL string
	metrics     http.Handler
}

// newRouter は全ルートとミドルウェアを組み立てる
func newRouter(d routerDeps) http.Handler {
	h := handler.New(d.db, d.frontendURL)
	meHandler := handler.NewMeHandler()
	contactHandler := handler.NewContactHandler(d.contact)

	submit := http.Handler(http.HandlerFunc(contactHandler.Submit))
	if d.limiter != nil {
		submit = d.limiter.Middleware(submit)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", h.Status)
	mux.HandleFunc("GET /api/me", meHandler.Me)
	mux.Handle("POST /api/contact", submit)

	// Operator routes (ROLE_ADMIN, enforced by the handler)
	mux.HandleFunc("GET /api/messages", contactHandler.List)

	if d.metrics != nil {
		mux.Handle("GET /metrics", d.metrics)
	}

	var next http.Handler = mux
	next = auth.Authenticate(d.verifier)(next)
	next = h.CORS(next)
	next = handler.SecurityHeaders(next)
	next = handler.RequestLogger(next)
	next = handler.RequestID(next)
	return next
}
