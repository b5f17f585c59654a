package ingest

import (
	"context"
	"slices"
	"strings"
	"sync"
)

// fakeRunner records every command and answers through handle.
type fakeRunner struct {
	mu     sync.Mutex
	calls  []Command
	handle func(cmd Command) (Output, error)
}

func (f *fakeRunner) Run(_ context.Context, cmd Command) (Output, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	f.mu.Unlock()
	return f.handle(cmd)
}

func (f *fakeRunner) scriptCalls(script string) []Command {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []Command
	for _, c := range f.calls {
		if len(c.Args) > 0 && strings.HasSuffix(c.Args[0], script) {
			out = append(out, c)
		}
	}
	return out
}

// argValue returns the value following flag in args.
func argValue(args []string, flag string) string {
	i := slices.Index(args, flag)
	if i < 0 || i+1 >= len(args) {
		return ""
	}
	return args[i+1]
}

func transcript(lines ...string) string {
	return strings.Join(lines, "\n")
}

// twoChunks is a chunker transcript with one embedded and one unembedded chunk.
var twoChunks = transcript(
	"=== report.md ===",
	"[#0]",
	"meta.heading_path: Intro",
	"meta.page: 1",
	"meta.token_count: 12",
	"meta.embedding: [0.5,0.25]",
	"```markdown",
	"# Quarterly Report",
	"Hello world",
	"```",
	"[#1]",
	"meta.heading_path: Body",
	"meta.page: None",
	"meta.token_count: 40",
	"meta.embedding: []",
	"```markdown",
	"Second chunk",
	"```",
	"",
)
