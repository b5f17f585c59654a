package chunkstream

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// pageNone is the producer's spelling of a missing page.
const pageNone = "None"

// Record is a finalized chunk. It is only built by the assembler once a
// complete chunk block has been scanned, and owns all of its slices.
type Record struct {
	File        string    `json:"file"`
	Index       int       `json:"index"`
	HeadingPath string    `json:"heading_path"`
	Page        *string   `json:"page"`
	Text        string    `json:"text"`
	TokenCount  int       `json:"token_count"`
	Embedding   []float64 `json:"embedding"`
}

// Draft accumulates a chunk while its meta lines are being scanned.
// A Draft is never handed to callers; it either becomes a Record or is dropped.
type Draft struct {
	File        string
	Index       int
	HeadingPath string
	Page        *string
	TokenCount  int
	Embedding   []float64
}

func newDraft(file string, index int) *Draft {
	return &Draft{File: file, Index: index, Embedding: []float64{}}
}

// apply stores one meta value on the draft. It reports false when the value
// could not be coerced and the field fell back to its default.
func (d *Draft) apply(key, value string) bool {
	value = strings.TrimSpace(value)
	switch key {
	case MetaHeadingPath:
		d.HeadingPath = value
	case MetaPage:
		if value == pageNone {
			d.Page = nil
		} else {
			page := value
			d.Page = &page
		}
	case MetaTokenCount:
		n, ok := ParseTokenCount(value)
		d.TokenCount = n
		return ok
	case MetaEmbedding:
		vec, ok := ParseEmbedding(value)
		d.Embedding = vec
		return ok
	case MetaFile:
		// The file marker context wins over meta.file.
	}
	return true
}

// ParseTokenCount parses a token count. Integral float spellings such as
// "12.0" are accepted. Anything else yields 0 and false.
func ParseTokenCount(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	// Same range as Atoi; float64(MaxInt) rounds up to 2^63, which overflows.
	if f >= float64(math.MaxInt) || f < float64(math.MinInt) {
		return 0, false
	}
	return int(f), true
}

// ParseEmbedding parses a JSON array of numbers. On any failure it returns an
// empty, non-nil slice and false; it never returns an error.
func ParseEmbedding(s string) ([]float64, bool) {
	var raw []any
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &raw); err != nil || raw == nil {
		return []float64{}, false
	}
	vec := make([]float64, 0, len(raw))
	for _, v := range raw {
		f, ok := v.(float64)
		if !ok {
			return []float64{}, false
		}
		vec = append(vec, f)
	}
	return vec, true
}

// assemble turns a completed draft and its body lines into a Record.
// The body is joined with "\n" and otherwise left as scanned.
func assemble(d *Draft, body []string) Record {
	rec := Record{
		File:        d.File,
		Index:       d.Index,
		HeadingPath: d.HeadingPath,
		Text:        strings.Join(body, "\n"),
		TokenCount:  d.TokenCount,
		Embedding:   append([]float64{}, d.Embedding...),
	}
	if d.Page != nil {
		page := *d.Page
		rec.Page = &page
	}
	return rec
}
