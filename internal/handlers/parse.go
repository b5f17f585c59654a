package handlers

import (
	"io"
	"net/http"

	"c3ingest/internal/chunkstream"
	"c3ingest/internal/contextutil"
	"c3ingest/internal/ingest"
)

// ParseResponse is the parsed form of a chunker transcript.
type ParseResponse struct {
	Records []chunkstream.Record `json:"records"`
	Stats   chunkstream.Stats    `json:"stats"`
}

// ParseHandler exposes the transcript parser over HTTP. The request body is
// the captured chunker output.
type ParseHandler struct {
	maxBodyBytes int64
}

// NewParseHandler creates a new ParseHandler.
func NewParseHandler() *ParseHandler {
	return &ParseHandler{maxBodyBytes: DefaultMaxUploadBytes}
}

func (h *ParseHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		writeError(ctx, w, &ingest.ValidationError{Field: "body", Message: err.Error()})
		return
	}

	records, stats := chunkstream.ParseWithStats(string(body))
	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "transcript parsed",
		"lines", stats.Lines,
		"records", stats.Records,
		"discarded", stats.Discarded,
		"unterminated", stats.Unterminated,
	)

	writeJSON(ctx, w, http.StatusOK, ParseResponse{Records: records, Stats: stats})
}
