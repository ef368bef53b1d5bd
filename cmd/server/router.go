package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/andres10976/poop-monitor/internal/handler"
	"github.com/andres10976/poop-monitor/internal/liveness"
	"github.com/andres10976/poop-monitor/internal/middleware"
)

func newRouter(tracker *liveness.Tracker) http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recovery)

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	handler.NewHeartbeatHandler(tracker).RegisterRoutes(r)
	return r
}
