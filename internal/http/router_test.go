package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	ingest_mocks "c3ingest/internal/ingest/mocks"
	rag_mocks "c3ingest/internal/rag/mocks"
	vectorstore_mocks "c3ingest/internal/vectorstore/mocks"
)

func newTestDeps(ctrl *gomock.Controller) (*Deps, *vectorstore_mocks.MockVectorStore) {
	store := vectorstore_mocks.NewMockVectorStore(ctrl)
	return &Deps{
		Ingester:    ingest_mocks.NewMockIngester(ctrl),
		Engine:      rag_mocks.NewMockEngine(ctrl),
		VectorStore: store,
		Collection:  "chunks",
	}, store
}

func TestNewRouter(t *testing.T) {
	ctrl := gomock.NewController(t)
	deps, _ := newTestDeps(ctrl)

	if NewRouter(deps) == nil {
		t.Fatal("NewRouter() returned nil")
	}
}

func TestRouter_Routes(t *testing.T) {
	ctrl := gomock.NewController(t)
	deps, store := newTestDeps(ctrl)
	store.EXPECT().CollectionExists(gomock.Any(), "chunks").Return(true, nil)

	router := NewRouter(deps)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{
			name:       "GET /api/health",
			method:     http.MethodGet,
			path:       "/api/health",
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST /api/parse",
			method:     http.MethodPost,
			path:       "/api/parse",
			body:       "=== a.md ===\n",
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST /api/search rejects bad body",
			method:     http.MethodPost,
			path:       "/api/search",
			body:       "{",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "POST /api/ingest rejects non-multipart body",
			method:     http.MethodPost,
			path:       "/api/ingest",
			body:       "plain",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "POST /api/ingest/object rejects bad body",
			method:     http.MethodPost,
			path:       "/api/ingest/object",
			body:       "{",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "GET /api/search method not allowed",
			method:     http.MethodGet,
			path:       "/api/search",
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:       "unknown route",
			method:     http.MethodGet,
			path:       "/api/chat",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Router %s %s status = %v, want %v", tt.method, tt.path, w.Code, tt.wantStatus)
			}
		})
	}
}

func TestRouter_MiddlewareApplied(t *testing.T) {
	ctrl := gomock.NewController(t)
	deps, _ := newTestDeps(ctrl)
	router := NewRouter(deps)

	req := httptest.NewRequest(http.MethodPost, "/api/parse", strings.NewReader(""))
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("Router should apply CORS middleware")
	}
}
