package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"taskboard/internal/ports"
	"taskboard/internal/usecase"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Prefix         string
	AllowedOrigins []string
}

type Server struct {
	router  *chi.Mux
	handler http.Handler
}

func NewServer(store *usecase.TaskStore, feed ports.StreamSource, opts Options) *Server {
	h := &taskHandler{store: store, feed: feed}

	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "Endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	routes := func(r chi.Router) {
		r.Get("/tasks", h.list)
		r.Post("/tasks", h.create)
		r.Get("/tasks/{id}", h.get)
		r.Put("/tasks/{id}", h.update)
		r.Delete("/tasks/{id}", h.delete)
		r.Get("/tasks/{id}/streaming", h.getWithStreaming)
		r.Get("/streaming", h.streaming)
	}
	if opts.Prefix != "" {
		r.Route(opts.Prefix, routes)
	} else {
		r.Group(routes)
	}

	s := &Server{router: r}
	s.handler = chainMiddleware(
		r,
		loggerContextHandler,
		recoverHandler,
		loggerHandler(func(w http.ResponseWriter, r *http.Request) bool { return r.URL.Path == "/health" }),
		realIPHandler,
		requestIDHandler,
		corsHandler(opts.AllowedOrigins),
	)
	return s
}

// Handler is the router wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves on port until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)

	httpServer := http.Server{
		Addr:         addr,
		Handler:      s.handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		log.Info().Msg("Server is shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
		}
	}()

	log.Info().Msgf("server serving on port %d", port)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen and serve: %w", err)
	}

	<-done
	log.Info().Msg("Server stopped")
	return nil
}
