package ingest

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"c3ingest/internal/chunkstream"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// DocumentTitle picks a title for a chunked document:
//  1. the first level 1 heading in any chunk text
//  2. the first level 2 heading if there is no level 1 heading
//  3. the filename without extension, words capitalized
func DocumentTitle(records []chunkstream.Record, filename string) string {
	var firstH2 string
	for _, r := range records {
		h1, h2 := firstHeadings([]byte(r.Text))
		if h1 != "" {
			return h1
		}
		if firstH2 == "" {
			firstH2 = h2
		}
	}
	if firstH2 != "" {
		return firstH2
	}
	return titleFromFilename(filename)
}

// firstHeadings returns the first level 1 and level 2 headings of a markdown body.
func firstHeadings(content []byte) (h1, h2 string) {
	if len(content) == 0 {
		return "", ""
	}

	doc := markdown.Parser().Parse(text.NewReader(content))
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}

		headingText := nodeText(heading, content)
		switch {
		case heading.Level == 1 && h1 == "":
			h1 = headingText
		case heading.Level == 2 && h2 == "":
			h2 = headingText
		}

		if h1 != "" {
			return ast.WalkStop, nil
		}
		return ast.WalkSkipChildren, nil
	})

	return h1, h2
}

// nodeText extracts text content from a node and its children.
func nodeText(n ast.Node, content []byte) string {
	var b strings.Builder

	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(content))
		case *ast.String:
			b.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(b.String())
}

// titleFromFilename removes the extension and capitalizes each word.
// Underscores and dashes separate words.
func titleFromFilename(filename string) string {
	name := filepath.Base(filename)
	if ext := filepath.Ext(name); ext != "" && ext != name {
		name = strings.TrimSuffix(name, ext)
	}

	words := strings.FieldsFunc(name, func(r rune) bool {
		return unicode.IsSpace(r) || r == '_' || r == '-'
	})
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}

	return strings.Join(words, " ")
}
