// Package chunkstream recovers chunk records from the text transcript written
// by the document chunking tool.
//
// A transcript is a sequence of file markers and chunk blocks:
//
//	=== report.docx ===
//	[# 0]
//	meta.heading_path: Intro
//	meta.page: None
//	meta.token_count: 12
//	meta.embedding: [0.1,0.2]
//	```markdown
//	Hello world
//	```
//
// Malformed blocks are skipped without affecting the rest of the transcript.
package chunkstream

// Parse scans a fully captured transcript and returns its records in scan
// order. Every call starts from a fresh state.
func Parse(buf string) []Record {
	records, _ := ParseWithStats(buf)
	return records
}

// ParseBytes is Parse over a byte buffer.
func ParseBytes(b []byte) []Record {
	return Parse(string(b))
}

// ParseWithStats is Parse that also reports scan counters.
func ParseWithStats(buf string) ([]Record, Stats) {
	m := NewMachine()
	for _, raw := range SplitLines(buf) {
		m.Feed(Classify(raw))
	}
	return m.Finish()
}
