package serving

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/DebasishMaji/ecommerce-personalization/pkg/model"
)

// Server serves one loaded model over the container contract.
type Server struct {
	booster *model.Booster
	logger  *slog.Logger
}

// NewServer wraps a loaded booster.
func NewServer(booster *model.Booster, logger *slog.Logger) *Server {
	return &Server{booster: booster, logger: logger}
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/ping", s.handlePing)
	r.Post("/invocations", s.handleInvocations)
	return r
}

func (s *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	if s.booster == nil {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleInvocations(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.fail(w, r, "read body", err)
		return
	}
	input, err := InputFn(string(body), r.Header.Get("Content-Type"))
	if err != nil {
		s.fail(w, r, "input", err)
		return
	}
	predictions := PredictFn(input, s.booster)
	out, contentType, err := OutputFn(predictions, r.Header.Get("Accept"))
	if err != nil {
		s.fail(w, r, "output", err)
		return
	}
	rows, _ := input.Dims()
	s.logger.Debug("invocation", "request_id", middleware.GetReqID(r.Context()), "rows", rows)
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, stage string, err error) {
	s.logger.Error("invocation failed", "request_id", middleware.GetReqID(r.Context()), "stage", stage, "error", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("inference server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
