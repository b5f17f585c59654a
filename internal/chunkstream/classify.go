package chunkstream

import (
	"regexp"
	"strconv"
	"strings"
)

// Kind is the classification of a single transcript line.
type Kind int

const (
	// Other is any line that matches no marker.
	Other Kind = iota
	// FileMarker is a "=== <name> ===" line.
	FileMarker
	// ChunkStart is a line beginning with "[#<digits>]".
	ChunkStart
	// MetaLine is a "meta.<key>: <value>" line.
	MetaLine
	// FenceOpen opens a chunk body ("```markdown").
	FenceOpen
	// FenceClose closes a chunk body ("```").
	FenceClose
)

func (k Kind) String() string {
	switch k {
	case FileMarker:
		return "file_marker"
	case ChunkStart:
		return "chunk_start"
	case MetaLine:
		return "meta_line"
	case FenceOpen:
		return "fence_open"
	case FenceClose:
		return "fence_close"
	default:
		return "other"
	}
}

// Meta keys recognised on meta lines.
const (
	MetaFile        = "file"
	MetaHeadingPath = "heading_path"
	MetaPage        = "page"
	MetaTokenCount  = "token_count"
	MetaEmbedding   = "embedding"
)

var (
	fileMarkerRe = regexp.MustCompile(`^===\s+(.*?)\s+===\s*$`)
	chunkStartRe = regexp.MustCompile(`^\[#\s*(\d+)\]`)
	metaLineRe   = regexp.MustCompile(`^meta\.(file|heading_path|page|token_count|embedding):\s*(.*)$`)
	fenceOpenRe  = regexp.MustCompile("^```markdown\\s*$")
)

const fenceClose = "```"

// Line is a classified transcript line.
// Only the fields relevant to Kind are populated.
type Line struct {
	Kind  Kind
	Raw   string
	Name  string // FileMarker: trimmed file name
	Index int    // ChunkStart: literal chunk index
	Key   string // MetaLine: meta key
	Value string // MetaLine: raw value after the colon
}

// Classify matches one line against the transcript grammar.
// Precedence is FileMarker, ChunkStart, MetaLine, FenceOpen, FenceClose.
func Classify(raw string) Line {
	if m := fileMarkerRe.FindStringSubmatch(raw); m != nil {
		return Line{Kind: FileMarker, Raw: raw, Name: strings.TrimSpace(m[1])}
	}
	if m := chunkStartRe.FindStringSubmatch(raw); m != nil {
		// An index too large for int is not a usable marker.
		if n, err := strconv.Atoi(m[1]); err == nil {
			return Line{Kind: ChunkStart, Raw: raw, Index: n}
		}
	}
	if m := metaLineRe.FindStringSubmatch(raw); m != nil {
		return Line{Kind: MetaLine, Raw: raw, Key: m[1], Value: m[2]}
	}
	if fenceOpenRe.MatchString(raw) {
		return Line{Kind: FenceOpen, Raw: raw}
	}
	if raw == fenceClose {
		return Line{Kind: FenceClose, Raw: raw}
	}
	return Line{Kind: Other, Raw: raw}
}
