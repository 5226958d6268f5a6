package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/colive/internal/composer"
	"github.com/MikeSquared-Agency/colive/internal/dialogue"
	"github.com/MikeSquared-Agency/colive/internal/metrics"
	"github.com/MikeSquared-Agency/colive/internal/processor"
)

const maxBodyBytes = 1 << 20

// Generator produces dialogue turns for a request.
type Generator interface {
	Generate(ctx context.Context, req *dialogue.Request, variant string) (*processor.Reply, error)
}

// Info is reported by the status endpoint.
type Info struct {
	Provider       string `json:"provider"`
	DefaultVariant string `json:"default_variant"`
	Model          string `json:"model,omitempty"`
}

type Server struct {
	router *chi.Mux
	port   int
	gen    Generator
	info   Info
	logger *slog.Logger
	http   *http.Server
}

func NewServer(port int, gen Generator, info Info, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(metrics.Middleware)

	s := &Server{
		router: router,
		port:   port,
		gen:    gen,
		info:   info,
		logger: logger,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/colive/status", s.status)
	router.Get("/api/v1/colive/variants", s.variants)
	router.Post("/generate", s.generate)
	router.Handle("/metrics", promhttp.Handler())

	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Start() error {
	s.logger.Info("API server starting", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"service":         "colive",
		"status":          "ok",
		"provider":        s.info.Provider,
		"default_variant": s.info.DefaultVariant,
		"model":           s.info.Model,
	})
}

func (s *Server) variants(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"variants": composer.Variants()})
}

type generateResponse struct {
	Dialogue []dialogue.Turn `json:"dialogue"`
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req dialogue.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, processor.KindInvalidRequest, "invalid request body: "+err.Error())
		return
	}

	reply, err := s.gen.Generate(r.Context(), &req, r.URL.Query().Get("variant"))
	if err != nil {
		kind := processor.KindOf(err)
		if statusFor(kind) >= 500 {
			s.logger.Error("generate failed", "request_id", middleware.GetReqID(r.Context()), "kind", kind, "error", err)
		}
		respondError(w, kind, err.Error())
		return
	}

	w.Header().Set("X-Request-ID", reply.RequestID)
	w.Header().Set("X-Colive-Stage", string(reply.Stage))
	respondJSON(w, http.StatusOK, generateResponse{Dialogue: reply.Turns})
}
