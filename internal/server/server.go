// Package server exposes every export kind as an HTTP route.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/javajack/xlexport"
	"github.com/javajack/xlexport/internal/config"
	"github.com/javajack/xlexport/reports"
	"go.uber.org/zap"
)

const (
	xlsxContentType       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	chartsRequestedHeader = "X-Charts-Requested"
	chartsAttachedHeader  = "X-Charts-Attached"
)

// ErrorResponse is the body of every failed export.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Server renders export payloads into xlsx downloads.
type Server struct {
	cfg     *config.Config
	log     *zap.Logger
	opts    []xlexport.Option
	patcher *xlexport.Patcher
	now     func() time.Time
	handler http.Handler
}

// New wires the routes for every registered report kind.
func New(cfg *config.Config, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		cfg:     cfg,
		log:     log,
		opts:    cfg.Options(),
		patcher: xlexport.NewPatcher(append(cfg.Options(), xlexport.WithLogger(log))...),
		now:     time.Now,
	}

	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	for _, spec := range reports.Specs() {
		r.HandleFunc(spec.Route, s.handleExport(spec)).Methods(http.MethodPost)
	}
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not_found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method_not_allowed"})
	})

	s.handler = withRequestID(withCORS(cfg.Server.CORSOrigin, requestLogging(log)(r)))
	return s
}

// Handler returns the root handler, middleware included.
func (s *Server) Handler() http.Handler { return s.handler }

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Server.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run over an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: s.cfg.GetReadHeaderTimeout(),
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.log.Info("listening", zap.String("addr", ln.Addr().String()))

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.GetShutdownTimeout())
	defer cancel()
	s.log.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"kinds":  reports.Kinds(),
	})
}

func (s *Server) handleExport(spec reports.Spec) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := s.log.With(
			zap.String("kind", string(spec.Kind)),
			zap.String("request_id", RequestID(r.Context())),
		)

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes))
		if err != nil {
			s.fail(w, log, spec, fmt.Errorf("read body: %w", err))
			return
		}

		opts := append(append([]xlexport.Option{}, s.opts...), xlexport.WithLogger(log))
		doc, err := spec.Build(body, s.now(), opts...)
		if err != nil {
			s.fail(w, log, spec, err)
			return
		}
		defer doc.Close()

		out, report, err := doc.Render(r.Context(), s.patcher)
		if err != nil {
			s.fail(w, log, spec, err)
			return
		}
		for _, sk := range report.Skipped {
			log.Warn("chart not attached",
				zap.Int("sheet", sk.SheetIndex),
				zap.String("title", sk.Title),
				zap.String("reason", sk.Reason))
		}

		h := w.Header()
		h.Set("Content-Type", xlsxContentType)
		h.Set("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
		h.Set("Content-Length", strconv.Itoa(len(out)))
		h.Set(chartsRequestedHeader, strconv.Itoa(report.Requested))
		h.Set(chartsAttachedHeader, strconv.Itoa(report.Attached))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(out); err != nil {
			log.Debug("write response", zap.Error(err))
		}
	}
}

func (s *Server) fail(w http.ResponseWriter, log *zap.Logger, spec reports.Spec, err error) {
	log.Error(spec.FailureMessage, zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   spec.FailureMessage,
		Details: err.Error(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
