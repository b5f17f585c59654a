package chunkstream

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Line
	}{
		{name: "file marker", raw: "=== report.docx ===", want: Line{Kind: FileMarker, Name: "report.docx"}},
		{name: "file marker padded", raw: "===   a b.md   ===  ", want: Line{Kind: FileMarker, Name: "a b.md"}},
		{name: "file marker needs spaces", raw: "===x===", want: Line{Kind: Other}},
		{name: "chunk start", raw: "[#0]", want: Line{Kind: ChunkStart, Index: 0}},
		{name: "chunk start spaced", raw: "[# 12]", want: Line{Kind: ChunkStart, Index: 12}},
		{name: "chunk start trailing text", raw: "[#3] extra", want: Line{Kind: ChunkStart, Index: 3}},
		{name: "chunk start overflow", raw: "[#99999999999999999999999]", want: Line{Kind: Other}},
		{name: "chunk start not at line start", raw: " [#1]", want: Line{Kind: Other}},
		{name: "chunk start negative", raw: "[#-1]", want: Line{Kind: Other}},
		{name: "meta heading", raw: "meta.heading_path: A > B", want: Line{Kind: MetaLine, Key: "heading_path", Value: "A > B"}},
		{name: "meta no space", raw: "meta.page:3", want: Line{Kind: MetaLine, Key: "page", Value: "3"}},
		{name: "meta embedding", raw: "meta.embedding: [1,2]", want: Line{Kind: MetaLine, Key: "embedding", Value: "[1,2]"}},
		{name: "meta file", raw: "meta.file: x.md", want: Line{Kind: MetaLine, Key: "file", Value: "x.md"}},
		{name: "meta unknown key", raw: "meta.author: me", want: Line{Kind: Other}},
		{name: "fence open", raw: "```markdown", want: Line{Kind: FenceOpen}},
		{name: "fence open trailing space", raw: "```markdown  ", want: Line{Kind: FenceOpen}},
		{name: "fence open other lang", raw: "```go", want: Line{Kind: Other}},
		{name: "fence close", raw: "```", want: Line{Kind: FenceClose}},
		{name: "fence close with space", raw: "``` ", want: Line{Kind: Other}},
		{name: "empty", raw: "", want: Line{Kind: Other}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.want.Raw = tt.raw
			assert.Equal(t, tt.want, Classify(tt.raw))
		})
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: []string{""}},
		{name: "single", in: "a", want: []string{"a"}},
		{name: "trailing terminator", in: "a\nb\n", want: []string{"a", "b", ""}},
		{name: "crlf", in: "a\r\nb\r\n", want: []string{"a", "b", ""}},
		{name: "whitespace kept", in: "  a  \n\tb", want: []string{"  a  ", "\tb"}},
		{name: "blank lines", in: "a\n\n\nb", want: []string{"a", "", "", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitLines(tt.in))
		})
	}
}

func TestParseEmbedding(t *testing.T) {
	tests := []struct {
		in     string
		want   []float64
		wantOK bool
	}{
		{in: "[0.1,0.2]", want: []float64{0.1, 0.2}, wantOK: true},
		{in: " [ 1 , -2.5e-3 ] ", want: []float64{1, -0.0025}, wantOK: true},
		{in: "[]", want: []float64{}, wantOK: true},
		{in: "notjson", want: []float64{}, wantOK: false},
		{in: "null", want: []float64{}, wantOK: false},
		{in: "[true]", want: []float64{}, wantOK: false},
		{in: "[[1]]", want: []float64{}, wantOK: false},
		{in: "", want: []float64{}, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseEmbedding(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
