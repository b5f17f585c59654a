package chunkstream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMachine_Seeking(t *testing.T) {
	m := NewMachine()

	s := m.seeking(Classify("=== a.md ==="))
	assert.Equal(t, step{next: Seeking}, s)
	assert.Equal(t, "a.md", m.file)

	s = m.seeking(Classify("noise"))
	assert.Equal(t, step{next: Seeking}, s)
	assert.Nil(t, m.draft)

	s = m.seeking(Classify("[#4]"))
	assert.Equal(t, step{next: InMeta}, s)
	require.NotNil(t, m.draft)
	assert.Equal(t, "a.md", m.draft.File)
	assert.Equal(t, 4, m.draft.Index)
	assert.Equal(t, []float64{}, m.draft.Embedding)
}

func TestMachine_InMeta(t *testing.T) {
	m := NewMachine()
	m.draft = newDraft("a.md", 1)

	s := m.inMeta(Classify("meta.heading_path:  Intro  "))
	assert.Equal(t, step{next: InMeta}, s)
	assert.Equal(t, "Intro", m.draft.HeadingPath)

	s = m.inMeta(Classify("meta.token_count: 9"))
	assert.Equal(t, step{next: InMeta}, s)
	assert.Equal(t, 9, m.draft.TokenCount)

	s = m.inMeta(Classify("meta.file: other.md"))
	assert.Equal(t, step{next: InMeta}, s)
	assert.Equal(t, "a.md", m.draft.File)

	s = m.inMeta(Classify("```markdown"))
	assert.Equal(t, step{next: InBody}, s)
	assert.NotNil(t, m.body)
	assert.Empty(t, m.body)
}

func TestMachine_InMetaFenceMissing(t *testing.T) {
	m := NewMachine()
	m.draft = newDraft("", 0)

	s := m.inMeta(Classify("[#1]"))
	assert.Equal(t, step{next: Resync, redispatch: true}, s)
	assert.Nil(t, m.draft)
	assert.Equal(t, 1, m.stats.Discarded)
}

func TestMachine_InBody(t *testing.T) {
	m := NewMachine()
	m.draft = newDraft("a.md", 2)
	m.draft.Page = strPtr("7")
	m.body = []string{}

	s := m.inBody(Classify("[#3]"))
	assert.Equal(t, step{next: InBody}, s)

	s = m.inBody(Classify(""))
	assert.Equal(t, step{next: InBody}, s)

	s = m.inBody(Classify("```"))
	assert.Equal(t, Seeking, s.next)
	assert.False(t, s.redispatch)
	require.NotNil(t, s.emit)
	assert.Equal(t, Record{
		File:      "a.md",
		Index:     2,
		Page:      strPtr("7"),
		Text:      "[#3]\n",
		Embedding: []float64{},
	}, *s.emit)
	assert.Nil(t, m.draft)
}

func TestMachine_Resync(t *testing.T) {
	m := NewMachine()

	assert.Equal(t, step{next: Resync}, m.resync(Classify("noise")))
	assert.Equal(t, step{next: Resync}, m.resync(Classify("```")))
	assert.Equal(t, step{next: Resync}, m.resync(Classify("meta.page: 1")))
	assert.Equal(t, step{next: Seeking, redispatch: true}, m.resync(Classify("[#1]")))
	assert.Equal(t, step{next: Seeking, redispatch: true}, m.resync(Classify("=== a ===")))
}

func TestMachine_Feed(t *testing.T) {
	m := NewMachine()
	assert.Equal(t, Seeking, m.State())

	m.Feed(Classify("[#0]"))
	assert.Equal(t, InMeta, m.State())

	m.Feed(Classify("junk"))
	assert.Equal(t, Resync, m.State())

	m.Feed(Classify("[#1]"))
	assert.Equal(t, InMeta, m.State())

	m.Feed(Classify("```markdown"))
	assert.Equal(t, InBody, m.State())

	m.Feed(Classify("```"))
	assert.Equal(t, Seeking, m.State())

	records, stats := m.Finish()
	require.Len(t, records, 1)
	assert.Equal(t, 1, records[0].Index)
	assert.Equal(t, 5, stats.Lines)
}

func TestAssemble_CopiesDraft(t *testing.T) {
	d := newDraft("a.md", 0)
	d.Page = strPtr("1")
	d.Embedding = []float64{1, 2}

	rec := assemble(d, []string{"a", "", "b"})
	*d.Page = "changed"
	d.Embedding[0] = 99

	assert.Equal(t, "a\n\nb", rec.Text)
	assert.Equal(t, strPtr("1"), rec.Page)
	assert.Equal(t, []float64{1, 2}, rec.Embedding)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "seeking", Seeking.String())
	assert.Equal(t, "in_meta", InMeta.String())
	assert.Equal(t, "in_body", InBody.String())
	assert.Equal(t, "resync", Resync.String())
}
