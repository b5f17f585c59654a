package handlers

import (
	"encoding/json"
	"net/http"

	"c3ingest/internal/ingest"
	"c3ingest/internal/rag"
)

// SearchHandler handles retrieval over ingested chunks.
type SearchHandler struct {
	engine rag.Engine
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(engine rag.Engine) *SearchHandler {
	return &SearchHandler{engine: engine}
}

// ServeHTTP decodes a rag.Query and returns the ranked hits.
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var q rag.Query
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		writeError(ctx, w, &ingest.ValidationError{Field: "body", Message: "invalid JSON"})
		return
	}

	resp, err := h.engine.Search(ctx, q)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if resp.Results == nil {
		resp.Results = []rag.Hit{}
	}
	writeJSON(ctx, w, http.StatusOK, resp)
}
