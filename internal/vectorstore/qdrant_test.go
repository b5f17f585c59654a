package vectorstore

import (
	"context"
	"testing"

	"github.com/qdrant/go-client/qdrant"
)

func TestGrpcAddress(t *testing.T) {
	tests := []struct {
		name     string
		urlStr   string
		wantErr  bool
		wantHost string
		wantPort int
	}{
		{
			name:     "valid URL",
			urlStr:   "http://localhost:6333",
			wantHost: "localhost",
			wantPort: 6334, // gRPC port is HTTP port + 1
		},
		{
			name:     "URL with custom port",
			urlStr:   "http://qdrant.internal:9000",
			wantHost: "qdrant.internal",
			wantPort: 9001,
		},
		{
			name:    "invalid URL",
			urlStr:  "://invalid",
			wantErr: true,
		},
		{
			name:     "URL without port",
			urlStr:   "http://localhost",
			wantHost: "localhost",
			wantPort: 6334, // Default
		},
		{
			name:     "URL without hostname",
			urlStr:   "http://:6333",
			wantHost: "localhost",
			wantPort: 6334,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, port, err := grpcAddress(tt.urlStr)
			if tt.wantErr {
				if err == nil {
					t.Error("grpcAddress() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("grpcAddress() unexpected error: %v", err)
			}

			if host != tt.wantHost {
				t.Errorf("host = %v, want %v", host, tt.wantHost)
			}
			if port != tt.wantPort {
				t.Errorf("port = %v, want %v", port, tt.wantPort)
			}
		})
	}
}

func TestNewQdrantStore_InvalidURL(t *testing.T) {
	_, err := NewQdrantStore("://invalid")
	if err == nil {
		t.Error("NewQdrantStore() with invalid URL should return error")
	}
}

func TestQdrantStore_Upsert_EmptyPoints(t *testing.T) {
	// Returns before touching the client.
	store := &QdrantStore{}

	err := store.Upsert(context.Background(), "test-collection", []Point{})
	if err != nil {
		t.Errorf("Upsert() with empty points should return early without error, got: %v", err)
	}
}

func TestQdrantStore_Delete_EmptyIDs(t *testing.T) {
	store := &QdrantStore{}

	err := store.Delete(context.Background(), "test-collection", []string{})
	if err != nil {
		t.Errorf("Delete() with empty IDs should return early without error, got: %v", err)
	}
}

func TestQdrantStore_Search_InvalidK(t *testing.T) {
	store := &QdrantStore{}
	ctx := context.Background()

	for _, k := range []int{0, -1} {
		if _, err := store.Search(ctx, "test-collection", []float32{1.0, 2.0}, k, nil); err == nil {
			t.Errorf("Search() with k=%d should return error", k)
		}
	}
}

func TestBuildFilter(t *testing.T) {
	tests := []struct {
		name      string
		filters   map[string]any
		wantNil   bool
		wantCount int
		wantFirst string
	}{
		{
			name:    "no filters",
			filters: nil,
			wantNil: true,
		},
		{
			name:    "empty company is ignored",
			filters: map[string]any{FilterCompany: ""},
			wantNil: true,
		},
		{
			name:    "unsupported type is ignored",
			filters: map[string]any{"score": 0.5},
			wantNil: true,
		},
		{
			name:      "company only",
			filters:   map[string]any{FilterCompany: "acme"},
			wantCount: 1,
			wantFirst: FilterCompany,
		},
		{
			name:      "company and document in key order",
			filters:   map[string]any{FilterDocumentID: "doc-1", FilterCompany: "acme"},
			wantCount: 2,
			wantFirst: FilterCompany,
		},
		{
			name:      "integer value",
			filters:   map[string]any{"chunk_index": 3},
			wantCount: 1,
			wantFirst: "chunk_index",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildFilter(tt.filters)
			if tt.wantNil {
				if got != nil {
					t.Errorf("buildFilter() = %v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("buildFilter() = nil, want filter")
			}
			if len(got.Must) != tt.wantCount {
				t.Fatalf("buildFilter() must conditions = %d, want %d", len(got.Must), tt.wantCount)
			}
			field := got.Must[0].GetField()
			if field == nil || field.Key != tt.wantFirst {
				t.Errorf("buildFilter() first key = %v, want %v", field, tt.wantFirst)
			}
		})
	}
}

func TestConvertPayloadToMap(t *testing.T) {
	result := convertPayloadToMap(nil)
	if result == nil {
		t.Error("convertPayloadToMap() should return empty map, not nil")
	}
	if len(result) != 0 {
		t.Errorf("convertPayloadToMap() with nil should return empty map, got %d items", len(result))
	}

	payload := qdrant.NewValueMap(map[string]any{
		"company":     "acme",
		"chunk_index": 3,
		"page":        nil,
		"tags":        []any{"a", true},
	})
	got := convertPayloadToMap(payload)

	if got["company"] != "acme" {
		t.Errorf("company = %v, want acme", got["company"])
	}
	if got["chunk_index"] != int64(3) {
		t.Errorf("chunk_index = %#v, want int64(3)", got["chunk_index"])
	}
	if v, ok := got["page"]; !ok || v != nil {
		t.Errorf("page = %v (present %v), want nil entry", v, ok)
	}
	tags, ok := got["tags"].([]any)
	if !ok || len(tags) != 2 || tags[0] != "a" || tags[1] != true {
		t.Errorf("tags = %#v, want [a true]", got["tags"])
	}
}

func TestQdrantStore_Upsert_InvalidPayload(t *testing.T) {
	// Payload conversion fails before the client is used.
	store := &QdrantStore{}

	err := store.Upsert(context.Background(), "test-collection", []Point{
		{ID: "00000000-0000-0000-0000-000000000001", Vec: []float32{1}, Meta: map[string]any{"bad": struct{}{}}},
	})
	if err == nil {
		t.Error("Upsert() with an unsupported payload type should return error")
	}
}
