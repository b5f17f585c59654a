package handlers

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"c3ingest/internal/contextutil"
	"c3ingest/internal/vectorstore"
)

const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"

	defaultHealthTimeout = 5 * time.Second
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// dependency is one thing the service needs. A failing critical dependency
// makes the service unhealthy; any other failure only degrades it.
type dependency struct {
	name     string
	critical bool
	check    func(ctx context.Context) error
}

// HealthHandler reports whether the chunk metadata database and the vector
// collection are reachable.
type HealthHandler struct {
	deps    []dependency
	timeout time.Duration
}

// NewHealthHandler checks db (when non-nil) and the named vector collection.
// Without the database nothing can be ingested, so it is critical; a missing
// vector collection still leaves parsing and chunk storage working.
func NewHealthHandler(vectorStore vectorstore.VectorStore, db Pinger, collection string) *HealthHandler {
	var deps []dependency
	if db != nil {
		deps = append(deps, dependency{name: "database", critical: true, check: db.PingContext})
	}
	deps = append(deps, dependency{
		name: "vector_store",
		check: func(ctx context.Context) error {
			exists, err := vectorStore.CollectionExists(ctx, collection)
			if err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("collection %q does not exist", collection)
			}
			return nil
		},
	})
	return &HealthHandler{deps: deps, timeout: defaultHealthTimeout}
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status    string            `json:"status"` // healthy, degraded or unhealthy
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks"` // dependency name to "ok" or "error"
	Issues    []string          `json:"issues,omitempty"`
}

// ServeHTTP runs every check in parallel under one timeout. It answers 200
// only when all checks pass and 503 otherwise.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	var mu sync.Mutex
	resp := HealthResponse{Status: statusHealthy, Checks: make(map[string]string, len(h.deps))}

	var g errgroup.Group
	for _, dep := range h.deps {
		g.Go(func() error {
			err := dep.check(checkCtx)

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				resp.Checks[dep.name] = "ok"
				return nil
			}
			logger.WarnContext(ctx, "health check failed", "dependency", dep.name, "error", err)
			resp.Checks[dep.name] = "error"
			resp.Issues = append(resp.Issues, dep.name+"_unavailable")
			switch {
			case dep.critical:
				resp.Status = statusUnhealthy
			case resp.Status == statusHealthy:
				resp.Status = statusDegraded
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.Strings(resp.Issues)
	resp.Timestamp = time.Now().UTC().Format(time.RFC3339)

	code := http.StatusOK
	if resp.Status != statusHealthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(ctx, w, code, resp)
}
