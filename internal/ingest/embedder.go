package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"c3ingest/internal/chunkstream"
	"c3ingest/internal/contextutil"
)

// DefaultConcurrency is passed to extract.py when a request does not set one.
const DefaultConcurrency = 10

// SourceFile is one uploaded document.
type SourceFile struct {
	Name     string
	MimeType string
	Size     int64
	Data     []byte
}

// Request asks for one document to be extracted and chunked.
type Request struct {
	Company     string
	FilePath    string // Stored path of the document, defaults to the first file's name
	Files       []SourceFile
	Concurrency int // extract.py worker count, 0 means the Embedder's default
	MaxChunks   int // 0 keeps every chunk
}

// Meta returns the document metadata taken from the first file.
func (r Request) Meta() DocumentMeta {
	first := r.Files[0]
	filePath := r.FilePath
	if filePath == "" {
		filePath = first.Name
	}
	return DocumentMeta{
		Company:  r.Company,
		Filename: first.Name,
		MimeType: first.MimeType,
		Size:     first.Size,
		FilePath: filePath,
	}
}

// Validate checks the request before any work is done.
func (r Request) Validate() error {
	if len(r.Files) == 0 {
		return ErrNoFiles
	}
	if strings.TrimSpace(r.Files[0].Name) == "" {
		return ErrNoFilename
	}
	if strings.TrimSpace(r.Company) == "" {
		return &ValidationError{Field: "company", Message: "company is required"}
	}
	if r.Concurrency < 0 {
		return &ValidationError{Field: "concurrency", Message: "must not be negative"}
	}
	if r.MaxChunks < 0 {
		return &ValidationError{Field: "max_chunks", Message: "must not be negative"}
	}
	return nil
}

// Result is the chunked document.
type Result struct {
	Meta       DocumentMeta
	Records    []chunkstream.Record // After MaxChunks
	Items      []Item
	Stats      chunkstream.Stats
	Transcript string // Raw chunker stdout
}

// EmbedderConfig configures an Embedder.
type EmbedderConfig struct {
	ScriptsDir string   // Holds extract.py and chunker.py
	Python     string   // Interpreter path; discovered from Candidates when empty
	Candidates []string // Interpreters tried when Python is empty
	TempDir    string   // Parent of per-request work dirs, os.TempDir() when empty
	// Concurrency replaces DefaultConcurrency for requests that do not set one.
	Concurrency int
}

// Embedder runs the extract and chunk scripts and parses their output.
type Embedder struct {
	runner Runner
	cfg    EmbedderConfig

	mu     sync.Mutex
	python string
}

// NewEmbedder creates a new Embedder.
func NewEmbedder(runner Runner, cfg EmbedderConfig) *Embedder {
	if len(cfg.Candidates) == 0 {
		cfg.Candidates = DefaultCandidates("")
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	return &Embedder{
		runner: runner,
		cfg:    cfg,
		python: cfg.Python,
	}
}

// Embed extracts the request's files to markdown, chunks them and parses the
// chunker transcript. Work dirs are removed before returning.
func (e *Embedder) Embed(ctx context.Context, req Request) (*Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if err := req.Validate(); err != nil {
		return nil, err
	}

	python, err := e.interpreter(ctx)
	if err != nil {
		return nil, err
	}

	inDir, err := os.MkdirTemp(e.cfg.TempDir, "c3-extract-")
	if err != nil {
		return nil, fmt.Errorf("failed to create input dir: %w", err)
	}
	defer func() {
		_ = os.RemoveAll(inDir)
	}()

	outRoot, err := os.MkdirTemp(e.cfg.TempDir, "c3-output-")
	if err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	defer func() {
		_ = os.RemoveAll(outRoot)
	}()

	outDir := filepath.Join(outRoot, "out")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	if err := writeSources(inDir, req.Files); err != nil {
		return nil, err
	}

	concurrency := req.Concurrency
	if concurrency == 0 {
		concurrency = e.cfg.Concurrency
	}

	extract, err := e.runner.Run(ctx, Command{
		Path: python,
		Args: []string{
			filepath.Join(e.cfg.ScriptsDir, "extract.py"),
			"--in", inDir,
			"--out", outDir,
			"--image-mode", "referenced",
			"--concurrency", strconv.Itoa(concurrency),
			"--describe-images",
		},
		Dir: e.cfg.ScriptsDir,
	})
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	if extract.Code != 0 {
		return nil, &ExecError{Stage: "extract", Code: extract.Code, Stderr: extract.Stderr, Stdout: extract.Stdout}
	}

	chunker, err := e.runner.Run(ctx, Command{
		Path: python,
		Args: []string{filepath.Join(e.cfg.ScriptsDir, "chunker.py")},
		Dir:  outRoot,
	})
	if err != nil {
		return nil, fmt.Errorf("chunker: %w", err)
	}
	if chunker.Code != 0 {
		return nil, &ExecError{Stage: "chunker", Code: chunker.Code, Stderr: chunker.Stderr, Stdout: chunker.Stdout}
	}

	records, stats := chunkstream.ParseWithStats(chunker.Stdout)
	logger.InfoContext(ctx, "parsed chunker output",
		"company", req.Company,
		"filename", req.Files[0].Name,
		"records", stats.Records,
		"discarded", stats.Discarded,
		"unterminated", stats.Unterminated,
		"bad_embeddings", stats.BadEmbeddings,
		"bad_token_counts", stats.BadTokenCounts,
	)

	records = LimitRecords(records, req.MaxChunks)
	meta := req.Meta()

	return &Result{
		Meta:       meta,
		Records:    records,
		Items:      BuildItems(meta, records, 0),
		Stats:      stats,
		Transcript: chunker.Stdout,
	}, nil
}

// interpreter resolves the Python binary once and caches it.
func (e *Embedder) interpreter(ctx context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.python != "" {
		return e.python, nil
	}

	python, err := FindInterpreter(ctx, e.runner, e.cfg.Candidates)
	if err != nil {
		return "", err
	}
	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "using python interpreter", "path", python)
	e.python = python
	return python, nil
}

// writeSources writes each file into dir under its base name.
func writeSources(dir string, files []SourceFile) error {
	for i, f := range files {
		name := filepath.Base(strings.TrimSpace(f.Name))
		if name == "." || name == ".." || name == string(filepath.Separator) || name == "" {
			name = fmt.Sprintf("file-%d", i)
		}
		if err := os.WriteFile(filepath.Join(dir, name), f.Data, 0o644); err != nil {
			return fmt.Errorf("failed to write source %s: %w", name, err)
		}
	}
	return nil
}
