package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/go-wakati/internal/config"
	"github.com/example/go-wakati/internal/metrics"
	"github.com/example/go-wakati/internal/tokenizer"
)

// ParseLogLevel converts a case-insensitive level string to slog.Level.
// An empty string returns slog.LevelInfo. Unknown strings return an error.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug|info|warn|error)", s)
	}
}

// Tokenizer segments text on behalf of one request. *tokenizer.Pool
// satisfies it.
type Tokenizer interface {
	Tokenize(ctx context.Context, text string) (*tokenizer.TokenList, error)
	TokenizeToString(ctx context.Context, text string) (string, error)
}

// Response formats for POST /tokenize.
const (
	FormatTokens = "tokens"
	FormatString = "string"
)

// ---------------------------------------------------------------------------
// Functional options
// ---------------------------------------------------------------------------

type options struct {
	maxTextBytes   int
	requestTimeout time.Duration
	logger         *slog.Logger
	metrics        http.Handler
}

func defaultOptions() options {
	return options{
		maxTextBytes:   65536,
		requestTimeout: 30 * time.Second,
		logger:         slog.Default(),
	}
}

// Option configures the HTTP handler.
type Option func(*options)

// WithMaxTextBytes sets the maximum allowed text length in bytes for POST /tokenize.
func WithMaxTextBytes(n int) Option {
	return func(o *options) { o.maxTextBytes = n }
}

// WithRequestTimeout bounds how long a request may wait for a free session.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) { o.requestTimeout = d }
}

// WithLogger sets the slog.Logger used for request logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetricsHandler serves h at /metrics. Without it the route is absent.
func WithMetricsHandler(h http.Handler) Option {
	return func(o *options) { o.metrics = h }
}

// ---------------------------------------------------------------------------
// handler
// ---------------------------------------------------------------------------

type handler struct {
	tok  Tokenizer
	opts options
	log  *slog.Logger
}

// NewHandler returns an http.Handler that serves /health, POST /tokenize
// and, when configured, /metrics.
func NewHandler(tok Tokenizer, optFns ...Option) http.Handler {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	h := &handler{
		tok:  tok,
		opts: opts,
		log:  opts.logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/tokenize", h.handleTokenize)
	if opts.metrics != nil {
		mux.Handle("/metrics", opts.metrics)
	}
	return mux
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildVersion(),
	})
}

type tokenizeRequest struct {
	Text   string `json:"text"`
	Format string `json:"format"`
}

type tokenJSON struct {
	Surface string   `json:"surface"`
	Start   int      `json:"start"`
	End     int      `json:"end"`
	Tags    []string `json:"tags,omitempty"`
}

type tokensResponse struct {
	Tokens []tokenJSON `json:"tokens"`
	NTags  int         `json:"n_tags"`
}

type stringResponse struct {
	Result string `json:"result"`
}

func tokensBody(tl *tokenizer.TokenList) tokensResponse {
	out := tokensResponse{
		Tokens: make([]tokenJSON, 0, tl.Len()),
		NTags:  tl.NTags(),
	}
	for _, tok := range tl.All() {
		out.Tokens = append(out.Tokens, tokenJSON{
			Surface: tok.Surface(),
			Start:   tok.Start(),
			End:     tok.End(),
			Tags:    tok.Tags(),
		})
	}
	return out
}

func (h *handler) handleTokenize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if r.Body == nil || r.Body == http.NoBody {
		writeError(w, http.StatusBadRequest, "request body is required")
		return
	}

	var req tokenizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if len(req.Text) > h.opts.maxTextBytes {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("text exceeds maximum size of %d bytes", h.opts.maxTextBytes))
		return
	}

	format := strings.ToLower(strings.TrimSpace(req.Format))
	if format == "" {
		format = FormatTokens
	}
	if format != FormatTokens && format != FormatString {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("invalid format %q (want %s|%s)", req.Format, FormatTokens, FormatString))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.opts.requestTimeout)
	defer cancel()

	start := time.Now()
	var (
		body   any
		tokens int
		err    error
	)
	if format == FormatString {
		var s string
		s, err = h.tok.TokenizeToString(ctx, req.Text)
		body = stringResponse{Result: s}
	} else {
		var tl *tokenizer.TokenList
		tl, err = h.tok.Tokenize(ctx, req.Text)
		if err == nil {
			body = tokensBody(tl)
			tokens = tl.Len()
		}
	}
	durationMS := time.Since(start).Milliseconds()

	if err != nil {
		h.fail(w, r, req, durationMS, err)
		return
	}

	h.log.InfoContext(r.Context(), "tokenize complete",
		slog.String("format", format),
		slog.Int("text_len", len(req.Text)),
		slog.Int64("duration_ms", durationMS),
		slog.Int("tokens", tokens),
	)

	writeJSON(w, http.StatusOK, body)
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, req tokenizeRequest, durationMS int64, err error) {
	attrs := []any{
		slog.Int("text_len", len(req.Text)),
		slog.Int64("duration_ms", durationMS),
		slog.String("error", err.Error()),
	}

	switch {
	case errors.Is(err, tokenizer.ErrInputRejected):
		h.log.WarnContext(r.Context(), "tokenize rejected", attrs...)
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		h.log.WarnContext(r.Context(), "tokenize timed out", attrs...)
		writeError(w, http.StatusGatewayTimeout, "timed out waiting for a tokenizer session")
	case errors.Is(err, context.Canceled):
		h.log.WarnContext(r.Context(), "tokenize cancelled", attrs...)
		writeError(w, http.StatusServiceUnavailable, "request cancelled while waiting for a tokenizer session")
	default:
		h.log.ErrorContext(r.Context(), "tokenize failed", attrs...)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ---------------------------------------------------------------------------
// Server
// ---------------------------------------------------------------------------

// Server wires the HTTP handler into a net/http.Server with graceful shutdown.
type Server struct {
	cfg             config.Config
	pool            *tokenizer.Pool
	logger          *slog.Logger
	shutdownTimeout time.Duration
}

// New returns a server for cfg. A nil pool is built from the configured
// model when Start runs.
func New(cfg config.Config, pool *tokenizer.Pool) *Server {
	return &Server{
		cfg:             cfg,
		pool:            pool,
		logger:          slog.Default(),
		shutdownTimeout: time.Duration(cfg.Server.ShutdownTimeout) * time.Second,
	}
}

// WithShutdownTimeout overrides the graceful-shutdown drain period.
func (s *Server) WithShutdownTimeout(d time.Duration) *Server {
	s.shutdownTimeout = d
	return s
}

// WithLogger sets the logger for request and tokenizer diagnostics.
func (s *Server) WithLogger(l *slog.Logger) *Server {
	if l != nil {
		s.logger = l
	}
	return s
}

func (s *Server) Start(ctx context.Context) error {
	pool, err := s.runtimePool()
	if err != nil {
		return err
	}

	h := NewHandler(pool,
		WithMaxTextBytes(s.cfg.Server.MaxTextBytes),
		WithRequestTimeout(time.Duration(s.cfg.Server.RequestTimeout)*time.Second),
		WithLogger(s.logger),
		WithMetricsHandler(promhttp.Handler()),
	)

	httpServer := &http.Server{
		Addr:              s.cfg.Server.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.logger.InfoContext(ctx, "server listening",
		slog.String("addr", s.cfg.Server.ListenAddr),
		slog.Int("sessions", pool.Size()),
		slog.Int("tag_slots", pool.Shared().TagSlots()),
		slog.String("wsconst", pool.Shared().WsConst()),
		slog.Bool("normalize", pool.Shared().Normalizes()),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http listen: %w", err)
	}
}

func (s *Server) runtimePool() (*tokenizer.Pool, error) {
	if s.pool != nil {
		return s.pool, nil
	}

	sh, err := tokenizer.LoadShared(s.cfg,
		tokenizer.WithLogger(s.logger),
		tokenizer.WithMetrics(metrics.Default()),
	)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}
	return tokenizer.NewPool(sh, s.cfg.Server.Workers), nil
}

func ProbeHTTP(addr string) error {
	resp, err := http.Get("http://" + addr + "/health") //nolint:noctx
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected health status: %s", resp.Status)
	}
	return nil
}
