package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/go-wakati/internal/server"
	"github.com/example/go-wakati/internal/testutil"
	"github.com/example/go-wakati/internal/tokenizer"
)

func newPool(t *testing.T, size int) *tokenizer.Pool {
	t.Helper()

	sh, err := tokenizer.NewShared(testutil.ModelBytes(t), tokenizer.WithPredictTags(true))
	if err != nil {
		t.Fatalf("NewShared: %v", err)
	}
	return tokenizer.NewPool(sh, size)
}

func newTestHandler(t *testing.T, opts ...server.Option) http.Handler {
	t.Helper()
	return server.NewHandler(newPool(t, 2), opts...)
}

func postTokenize(h http.Handler, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tokenize", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(rec, req)
	return rec
}

// blockingTokenizer waits for its context to end, like a pool with no free
// sessions.
type blockingTokenizer struct{}

func (blockingTokenizer) Tokenize(ctx context.Context, _ string) (*tokenizer.TokenList, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingTokenizer) TokenizeToString(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

// failingTokenizer returns err from every call.
type failingTokenizer struct{ err error }

func (f failingTokenizer) Tokenize(context.Context, string) (*tokenizer.TokenList, error) {
	return nil, f.err
}

func (f failingTokenizer) TokenizeToString(context.Context, string) (string, error) {
	return "", f.err
}

// ---------------------------------------------------------------------------
// GET /health
// ---------------------------------------------------------------------------

func TestHealth_Returns200WithStatusOK(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	if body["status"] != "ok" {
		t.Errorf("want status=ok, got %q", body["status"])
	}

	if _, ok := body["version"]; !ok {
		t.Error("want version field in response")
	}
}

// ---------------------------------------------------------------------------
// POST /tokenize
// ---------------------------------------------------------------------------

func TestTokenize_ReturnsTokens(t *testing.T) {
	h := newTestHandler(t)

	rec := postTokenize(h, `{"text":"社長は猫"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var got struct {
		Tokens []struct {
			Surface string   `json:"surface"`
			Start   int      `json:"start"`
			End     int      `json:"end"`
			Tags    []string `json:"tags"`
		} `json:"tokens"`
		NTags int `json:"n_tags"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	if got.NTags != 2 {
		t.Errorf("n_tags = %d; want 2", got.NTags)
	}

	if len(got.Tokens) != 3 {
		t.Fatalf("len(tokens) = %d; want 3", len(got.Tokens))
	}

	first := got.Tokens[0]
	if first.Surface != "社長" || first.Start != 0 || first.End != 2 {
		t.Errorf("tokens[0] = %q [%d, %d); want %q [0, 2)", first.Surface, first.Start, first.End, "社長")
	}

	if len(first.Tags) != 2 || first.Tags[1] != "シャチョー" {
		t.Errorf("tokens[0].tags = %q; want [名詞 シャチョー]", first.Tags)
	}

	if got.Tokens[2].Surface != "猫" {
		t.Errorf("tokens[2].surface = %q; want %q", got.Tokens[2].Surface, "猫")
	}
}

func TestTokenize_StringFormat(t *testing.T) {
	h := newTestHandler(t)

	rec := postTokenize(h, `{"text":"社長は猫","format":"String"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var got map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	want := "社長/名詞/シャチョー は/助詞/ワ 猫/名詞/ネコ"
	if got["result"] != want {
		t.Errorf("result = %q; want %q", got["result"], want)
	}
}

func TestTokenize_BadRequests(t *testing.T) {
	tests := []struct {
		name   string
		method string
		body   string
		want   int
	}{
		{"wrong method", http.MethodGet, "", http.StatusMethodNotAllowed},
		{"missing body", http.MethodPost, "", http.StatusBadRequest},
		{"invalid json", http.MethodPost, `{"text":`, http.StatusBadRequest},
		{"unknown format", http.MethodPost, `{"text":"猫","format":"xml"}`, http.StatusBadRequest},
	}

	h := newTestHandler(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body *strings.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}

			rec := httptest.NewRecorder()
			var req *http.Request
			if body != nil {
				req = httptest.NewRequest(tt.method, "/tokenize", body)
			} else {
				req = httptest.NewRequest(tt.method, "/tokenize", nil)
			}
			h.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d; want %d", rec.Code, tt.want)
			}

			var errBody map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&errBody); err != nil {
				t.Fatalf("decode error body: %v", err)
			}

			if errBody["error"] == "" {
				t.Error("want non-empty error field")
			}
		})
	}
}

func TestTokenize_EmptyTextYieldsEmptyResult(t *testing.T) {
	h := newTestHandler(t)

	for _, body := range []string{`{"text":""}`, `{}`} {
		rec := postTokenize(h, body)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d; want 200 (body: %s)", body, rec.Code, rec.Body.String())
		}

		var got struct {
			Tokens []json.RawMessage `json:"tokens"`
			NTags  int               `json:"n_tags"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if got.Tokens == nil || len(got.Tokens) != 0 || got.NTags != 0 {
			t.Errorf("%s: tokens = %v, n_tags = %d; want [] and 0", body, got.Tokens, got.NTags)
		}
	}

	rec := postTokenize(h, `{"text":"","format":"string"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("string format: status = %d; want 200", rec.Code)
	}

	var got map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if result, ok := got["result"]; !ok || result != "" {
		t.Errorf("result = %q (present %v); want empty string", result, ok)
	}
}

func TestTokenize_InvalidUTF8IsReplacedByDecoder(t *testing.T) {
	h := newTestHandler(t)

	rec := postTokenize(h, "{\"text\":\"猫\xff\",\"format\":\"string\"}")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200 (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestTokenize_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"rejected", fmt.Errorf("%w: %w", tokenizer.ErrInputRejected, errors.New("bad input")), http.StatusUnprocessableEntity},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"cancelled", context.Canceled, http.StatusServiceUnavailable},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := server.NewHandler(failingTokenizer{err: tt.err})

			for _, format := range []string{"tokens", "string"} {
				rec := postTokenize(h, `{"text":"猫","format":"`+format+`"}`)
				if rec.Code != tt.want {
					t.Errorf("format %s: status = %d; want %d", format, rec.Code, tt.want)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// GET /metrics
// ---------------------------------------------------------------------------

func TestMetrics_RouteOnlyWhenConfigured(t *testing.T) {
	without := newTestHandler(t)

	rec := httptest.NewRecorder()
	without.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("without metrics handler: status = %d; want 404", rec.Code)
	}

	with := newTestHandler(t, server.WithMetricsHandler(promhttp.Handler()))

	rec = httptest.NewRecorder()
	with.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("with metrics handler: status = %d; want 200", rec.Code)
	}
}
