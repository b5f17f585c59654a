package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"c3ingest/internal/contextutil"
	"c3ingest/internal/ingest"
)

// DefaultMaxUploadBytes bounds a multipart ingest request.
const DefaultMaxUploadBytes = 64 << 20

// IngestHandler handles document uploads.
type IngestHandler struct {
	ingester         ingest.Ingester
	defaultMaxChunks int
	maxUploadBytes   int64
}

// NewIngestHandler creates a new IngestHandler. defaultMaxChunks applies when
// a request does not send max_chunks.
func NewIngestHandler(ingester ingest.Ingester, defaultMaxChunks int) *IngestHandler {
	return &IngestHandler{
		ingester:         ingester,
		defaultMaxChunks: defaultMaxChunks,
		maxUploadBytes:   DefaultMaxUploadBytes,
	}
}

// ServeHTTP accepts a multipart form with a company field, optional
// file_path, max_chunks and concurrency fields, and one or more file parts.
// The first file part names the document.
func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeError(ctx, w, &ingest.ValidationError{Field: "body", Message: fmt.Sprintf("invalid multipart form: %v", err)})
		return
	}
	defer r.MultipartForm.RemoveAll()

	req := ingest.Request{
		Company:  strings.TrimSpace(r.FormValue("company")),
		FilePath: strings.TrimSpace(r.FormValue("file_path")),
	}

	var err error
	if req.MaxChunks, err = intField(r, "max_chunks", h.defaultMaxChunks); err != nil {
		writeError(ctx, w, err)
		return
	}
	if req.Concurrency, err = intField(r, "concurrency", 0); err != nil {
		writeError(ctx, w, err)
		return
	}
	if req.Files, err = sourceFiles(r.MultipartForm); err != nil {
		writeError(ctx, w, err)
		return
	}

	logger.InfoContext(ctx, "ingest request received", "company", req.Company, "files", len(req.Files))

	outcome, err := h.ingester.IngestDocument(ctx, req)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, outcome)
}

// sourceFiles reads every "file" part in order. A "file" part sent without a
// filename is kept with an empty name so validation can reject it.
func sourceFiles(form *multipart.Form) ([]ingest.SourceFile, error) {
	headers := form.File["file"]
	files := make([]ingest.SourceFile, 0, len(headers))
	if len(headers) == 0 {
		for _, v := range form.Value["file"] {
			files = append(files, ingest.SourceFile{Size: int64(len(v)), Data: []byte(v)})
		}
		return files, nil
	}

	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read upload %s: %w", fh.Filename, err)
		}

		mimeType := fh.Header.Get("Content-Type")
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}
		files = append(files, ingest.SourceFile{
			Name:     fh.Filename,
			MimeType: mimeType,
			Size:     fh.Size,
			Data:     data,
		})
	}
	return files, nil
}

func intField(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.FormValue(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ingest.ValidationError{Field: name, Message: "must be an integer"}
	}
	return v, nil
}

// ObjectIngestRequest asks for an object already in the bucket to be ingested.
type ObjectIngestRequest struct {
	Company     string `json:"company"`
	Key         string `json:"key"`
	MaxChunks   *int   `json:"max_chunks,omitempty"`
	Concurrency int    `json:"concurrency,omitempty"`
}

// ObjectIngestHandler handles ingestion of objects from object storage.
type ObjectIngestHandler struct {
	ingester         ingest.Ingester
	defaultMaxChunks int
}

// NewObjectIngestHandler creates a new ObjectIngestHandler.
func NewObjectIngestHandler(ingester ingest.Ingester, defaultMaxChunks int) *ObjectIngestHandler {
	return &ObjectIngestHandler{ingester: ingester, defaultMaxChunks: defaultMaxChunks}
}

// ServeHTTP decodes an ObjectIngestRequest and ingests the object.
func (h *ObjectIngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body ObjectIngestRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(ctx, w, &ingest.ValidationError{Field: "body", Message: "invalid JSON"})
		return
	}

	opts := ingest.Request{MaxChunks: h.defaultMaxChunks, Concurrency: body.Concurrency}
	if body.MaxChunks != nil {
		opts.MaxChunks = *body.MaxChunks
	}

	outcome, err := h.ingester.IngestObject(ctx, strings.TrimSpace(body.Company), strings.TrimSpace(body.Key), opts)
	if err != nil {
		if errors.Is(err, ingest.ErrObjectStoreDisabled) {
			contextutil.LoggerFromContext(ctx).WarnContext(ctx, "object ingest requested without a bucket")
		}
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, outcome)
}
