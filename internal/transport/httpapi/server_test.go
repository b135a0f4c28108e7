package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/domain"
	"github.com/kailas-cloud/docdex/internal/retry"
	healthuc "github.com/kailas-cloud/docdex/internal/usecase/health"
	queryuc "github.com/kailas-cloud/docdex/internal/usecase/query"
	statsuc "github.com/kailas-cloud/docdex/internal/usecase/stats"
)

// --- Mocks ---

type mockReader struct {
	neighbors []domain.Neighbor
	err       error
}

func (m *mockReader) Query(_ context.Context, _ []float32, _ int) ([]domain.Neighbor, error) {
	return m.neighbors, m.err
}

type mockEmbedder struct{ err error }

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: []float32{1, 0}}, nil
}

type mockGenerator struct {
	text string
	err  error
}

func (m *mockGenerator) Generate(_ context.Context, _ string) (domain.GenerationResult, error) {
	if m.err != nil {
		return domain.GenerationResult{}, m.err
	}
	return domain.GenerationResult{Text: m.text}, nil
}

type mockPinger struct{ err error }

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

type mockCounter struct {
	n   int
	err error
}

func (m *mockCounter) Count(_ context.Context) (int, error) { return m.n, m.err }

func newTestServer(reader *mockReader, emb *mockEmbedder, gen *mockGenerator, pinger *mockPinger, counter *mockCounter) http.Handler {
	logger := zap.NewNop()
	querySvc := queryuc.New(reader, emb, gen, logger).WithRetry(retry.Policy{MaxAttempts: 1})
	healthSvc := healthuc.New(pinger, nil)
	statsSvc := statsuc.New(counter, 768, "text-embedding-3-small")

	r := chi.NewRouter()
	NewServer(querySvc, healthSvc, statsSvc, logger).Routes(r)
	return r
}

func defaultNeighbors() []domain.Neighbor {
	return []domain.Neighbor{
		{
			ID:      "aaa",
			Score:   0.9,
			Summary: "widgets are parts",
			Metadata: map[string]string{
				domain.MetaSource:      "a.pdf",
				domain.MetaElementType: "text",
				domain.MetaPageNumber:  "1",
			},
		},
	}
}

// --- Tests ---

func TestQueryEndpoint_OK(t *testing.T) {
	h := newTestServer(
		&mockReader{neighbors: defaultNeighbors()},
		&mockEmbedder{},
		&mockGenerator{text: "an answer"},
		&mockPinger{},
		&mockCounter{},
	)

	req := httptest.NewRequest("POST", "/query", strings.NewReader(`{"question": "what is a widget?"}`))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var resp QueryResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Answer != "an answer" {
		t.Errorf("answer = %q", resp.Answer)
	}
	if len(resp.Sources) != 1 || resp.Sources[0].Source != "a.pdf" || resp.Sources[0].PageNumber != "1" {
		t.Errorf("sources = %+v", resp.Sources)
	}
}

func TestQueryEndpoint_BadBody(t *testing.T) {
	h := newTestServer(&mockReader{}, &mockEmbedder{}, &mockGenerator{}, &mockPinger{}, &mockCounter{})

	req := httptest.NewRequest("POST", "/query", strings.NewReader("{broken"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestQueryEndpoint_MissingQuestion(t *testing.T) {
	h := newTestServer(&mockReader{}, &mockEmbedder{}, &mockGenerator{}, &mockPinger{}, &mockCounter{})

	req := httptest.NewRequest("POST", "/query", strings.NewReader(`{"top_k": 3}`))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestQueryEndpoint_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		reader     *mockReader
		embedErr   error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "empty index",
			reader:     &mockReader{},
			wantStatus: http.StatusNotFound,
			wantCode:   "not_found",
		},
		{
			name:       "rate limited",
			reader:     &mockReader{neighbors: defaultNeighbors()},
			embedErr:   domain.ErrRateLimited,
			wantStatus: http.StatusTooManyRequests,
			wantCode:   "rate_limited",
		},
		{
			name:       "provider down",
			reader:     &mockReader{neighbors: defaultNeighbors()},
			embedErr:   domain.ErrProviderError,
			wantStatus: http.StatusBadGateway,
			wantCode:   "provider_error",
		},
		{
			name:       "provider rejected request",
			reader:     &mockReader{neighbors: defaultNeighbors()},
			embedErr:   domain.ErrInvalidRequest,
			wantStatus: http.StatusBadGateway,
			wantCode:   "provider_rejected_request",
		},
		{
			name:       "index unavailable",
			reader:     &mockReader{err: domain.ErrIndexUnavailable},
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "index_unavailable",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestServer(
				tc.reader,
				&mockEmbedder{err: tc.embedErr},
				&mockGenerator{text: "x"},
				&mockPinger{},
				&mockCounter{},
			)

			req := httptest.NewRequest("POST", "/query", strings.NewReader(`{"question": "q"}`))
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rr.Code, tc.wantStatus, rr.Body.String())
			}

			var errResp ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if errResp.Code != tc.wantCode {
				t.Errorf("code = %q, want %q", errResp.Code, tc.wantCode)
			}
			if errResp.Message == "" {
				t.Error("error message must be readable, not empty")
			}
		})
	}
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestServer(&mockReader{}, &mockEmbedder{}, &mockGenerator{}, &mockPinger{}, &mockCounter{})

	req := httptest.NewRequest("GET", "/health", http.NoBody)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d", rr.Code)
	}
}

func TestHealthEndpoint_Degraded(t *testing.T) {
	h := newTestServer(
		&mockReader{}, &mockEmbedder{}, &mockGenerator{},
		&mockPinger{err: context.DeadlineExceeded},
		&mockCounter{},
	)

	req := httptest.NewRequest("GET", "/health", http.NoBody)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rr.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	h := newTestServer(&mockReader{}, &mockEmbedder{}, &mockGenerator{}, &mockPinger{}, &mockCounter{n: 12})

	req := httptest.NewRequest("GET", "/index/stats", http.NoBody)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	var resp struct {
		Entries    int    `json:"entries"`
		Dimensions int    `json:"dimensions"`
		Model      string `json:"model"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Entries != 12 || resp.Dimensions != 768 || resp.Model != "text-embedding-3-small" {
		t.Errorf("stats = %+v", resp)
	}
}
