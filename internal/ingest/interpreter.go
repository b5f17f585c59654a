package ingest

import (
	"context"
	"errors"
)

// ErrNoInterpreter is returned when no Python interpreter answers --version.
var ErrNoInterpreter = errors.New("python interpreter not found; set C3_PYTHON to an absolute path")

// DefaultCandidates lists the interpreters tried in order. override, when set,
// is tried first.
func DefaultCandidates(override string) []string {
	candidates := make([]string, 0, 7)
	if override != "" {
		candidates = append(candidates, override)
	}
	return append(candidates,
		"python3",
		"python",
		"/usr/bin/python3",
		"/usr/local/bin/python3",
		"/app/venv/bin/python",
		"/opt/venv/bin/python",
	)
}

// FindInterpreter returns the first candidate whose --version exits 0.
func FindInterpreter(ctx context.Context, runner Runner, candidates []string) (string, error) {
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		out, err := runner.Run(ctx, Command{Path: candidate, Args: []string{"--version"}})
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			continue
		}
		if out.Code == 0 {
			return candidate, nil
		}
	}
	return "", ErrNoInterpreter
}
