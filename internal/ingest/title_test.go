package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"c3ingest/internal/chunkstream"
)

func TestDocumentTitle(t *testing.T) {
	tests := []struct {
		name     string
		texts    []string
		filename string
		want     string
	}{
		{
			name:     "first H1",
			texts:    []string{"intro text", "## Section\n\n# Main *Title*\n"},
			filename: "doc.pdf",
			want:     "Main Title",
		},
		{
			name:     "H1 in a later chunk beats earlier H2",
			texts:    []string{"## Overview", "# Real Title"},
			filename: "doc.pdf",
			want:     "Real Title",
		},
		{
			name:     "H2 when no H1",
			texts:    []string{"plain", "## Overview\n### Deeper"},
			filename: "doc.pdf",
			want:     "Overview",
		},
		{
			name:     "filename fallback",
			texts:    []string{"no headings here"},
			filename: "quarterly_report-final.pdf",
			want:     "Quarterly Report Final",
		},
		{
			name:     "no records",
			texts:    nil,
			filename: "meeting notes.docx",
			want:     "Meeting Notes",
		},
		{
			name:     "heading inside code fence is ignored",
			texts:    []string{"```\n# not a heading\n```"},
			filename: "code.md",
			want:     "Code",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := make([]chunkstream.Record, len(tt.texts))
			for i, text := range tt.texts {
				records[i] = chunkstream.Record{Text: text}
			}
			assert.Equal(t, tt.want, DocumentTitle(records, tt.filename))
		})
	}
}

func TestTitleFromFilename(t *testing.T) {
	tests := map[string]string{
		"notes.md":           "Notes",
		"dir/sub/my file.md": "My File",
		"noext":              "Noext",
		"2024-plan.xlsx":     "2024 Plan",
	}
	for in, want := range tests {
		assert.Equal(t, want, titleFromFilename(in), in)
	}
}
