package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"chainx/config"
	"chainx/core"
	"chainx/observability"
)

const (
	defaultReadHeaderTimeout = 5 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	shutdownTimeout          = 10 * time.Second
)

// Server exposes a Querier over JSON-RPC 2.0.
type Server struct {
	querier  *core.Querier
	cfg      config.RPC
	logger   *slog.Logger
	metrics  *observability.QueryMetrics
	dispatch map[string]methodFunc
	limiter  *rateLimiter
	auth     *authenticator
}

// NewServer builds a server over querier. A nil secret disables bearer
// authentication.
func NewServer(querier *core.Querier, cfg config.RPC, secret []byte, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxRequestBytes <= 0 {
		cfg.MaxRequestBytes = config.DefaultMaxRequestBytes
	}
	s := &Server{
		querier: querier,
		cfg:     cfg,
		logger:  logger,
		metrics: observability.Query(),
	}
	s.dispatch = s.methods()
	if cfg.RateLimitPerSecond > 0 {
		s.limiter = newRateLimiter(cfg.RateLimitPerSecond, cfg.RateBurst, cfg.TrustProxyHeaders)
	}
	if len(secret) > 0 {
		s.auth = newAuthenticator(cfg.JWT, secret, logger)
	}
	return s
}

// Handler returns the HTTP surface: JSON-RPC on POST /, Prometheus metrics
// and a health probe.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Group(func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.limiter.middleware)
		}
		if s.auth != nil {
			r.Use(s.auth.middleware)
		}
		r.Post("/", s.handle)
	})
	return otelhttp.NewHandler(r, "chainx-rpc")
}

// Serve listens on addr until ctx is cancelled, then drains in-flight
// requests.
func (s *Server) Serve(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.ServeListener(ctx, listener)
}

// ServeListener is Serve on an existing listener.
func (s *Server) ServeListener(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: seconds(s.cfg.ReadHeaderTimeout, defaultReadHeaderTimeout),
		WriteTimeout:      seconds(s.cfg.WriteTimeout, defaultWriteTimeout),
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("json-rpc server listening", slog.String("addr", listener.Addr().String()))
		errCh <- srv.Serve(listener)
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func seconds(v uint32, fallback time.Duration) time.Duration {
	if v == 0 {
		return fallback
	}
	return time.Duration(v) * time.Second
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	reader := http.MaxBytesReader(w, r.Body, s.cfg.MaxRequestBytes)
	defer func() {
		_ = reader.Close()
	}()

	w.Header().Set("Content-Type", "application/json")

	body, err := io.ReadAll(reader)
	if err != nil {
		status := http.StatusBadRequest
		message := "failed to read request body"
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			status = http.StatusRequestEntityTooLarge
			message = fmt.Sprintf("request body exceeds %d bytes", s.cfg.MaxRequestBytes)
		}
		writeError(w, status, nil, codeInvalidRequest, message, err.Error())
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		writeError(w, http.StatusBadRequest, nil, codeInvalidRequest, "request body required", nil)
		return
	}

	req := &RPCRequest{}
	if err := json.Unmarshal(body, req); err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "invalid JSON payload", err.Error())
		return
	}
	if req.JSONRPC != "" && req.JSONRPC != jsonRPCVersion {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "unsupported jsonrpc version", req.JSONRPC)
		return
	}
	if req.Method == "" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "method required", nil)
		return
	}
	method, ok := s.dispatch[req.Method]
	if !ok {
		s.metrics.Observe("unknown", codeMethodNotFound, 0)
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, fmt.Sprintf("method %s not found", req.Method), nil)
		return
	}

	start := time.Now()
	result, err := method(r.Context(), params(req.Params))
	duration := time.Since(start)
	if err != nil {
		status, rpcErr := classify(err)
		s.metrics.Observe(req.Method, rpcErr.Code, duration)
		s.logger.Warn("rpc call failed",
			slog.String("method", req.Method),
			slog.Int("code", rpcErr.Code),
			slog.Duration("duration", duration),
			slog.Any("error", err),
			requestIDAttr(r.Context()))
		writeError(w, status, req.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	s.metrics.Observe(req.Method, 0, duration)
	writeResult(w, req.ID, result)
}

type healthResponse struct {
	Status string `json:"status"`
	Height uint64 `json:"height,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	head, err := s.querier.Header(r.Context(), nil)
	if err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(healthResponse{Status: "unavailable", Error: err.Error()})
		return
	}
	_ = json.NewEncoder(w).Encode(healthResponse{Status: "ok", Height: head.Height})
}

type requestIDKey struct{}

// requestID tags every request with a UUID, reusing a caller supplied
// X-Request-ID when it parses.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestIDAttr(ctx context.Context) slog.Attr {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return slog.String("request_id", id)
}
