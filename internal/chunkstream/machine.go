package chunkstream

// State is the scanner's position in the chunk grammar.
type State int

const (
	// Seeking waits for a file marker or a chunk start.
	Seeking State = iota
	// InMeta collects meta lines until the body fence opens.
	InMeta
	// InBody collects body lines until the fence closes.
	InBody
	// Resync skips noise after a malformed chunk until the next marker.
	Resync
)

func (s State) String() string {
	switch s {
	case Seeking:
		return "seeking"
	case InMeta:
		return "in_meta"
	case InBody:
		return "in_body"
	case Resync:
		return "resync"
	default:
		return "unknown"
	}
}

// Stats counts what a scan saw. It has no effect on the records produced.
type Stats struct {
	Lines          int `json:"lines"`
	FileMarkers    int `json:"file_markers"`
	ChunkStarts    int `json:"chunk_starts"`
	Records        int `json:"records"`
	Discarded      int `json:"discarded"`
	Unterminated   int `json:"unterminated"`
	BadEmbeddings  int `json:"bad_embeddings"`
	BadTokenCounts int `json:"bad_token_counts"`
}

// step is the outcome of one transition.
type step struct {
	next State
	emit *Record
	// redispatch feeds the same line again in the next state.
	redispatch bool
}

// Machine is the scanning state machine. A Machine is single use: feed it
// every line, then call Finish.
type Machine struct {
	state   State
	file    string
	draft   *Draft
	body    []string
	records []Record
	stats   Stats
}

// NewMachine returns a machine in the Seeking state with no file context.
func NewMachine() *Machine {
	return &Machine{state: Seeking, records: []Record{}}
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// Feed consumes one classified line.
func (m *Machine) Feed(l Line) {
	m.stats.Lines++
	for {
		var s step
		switch m.state {
		case Seeking:
			s = m.seeking(l)
		case InMeta:
			s = m.inMeta(l)
		case InBody:
			s = m.inBody(l)
		case Resync:
			s = m.resync(l)
		}
		m.state = s.next
		if s.emit != nil {
			m.records = append(m.records, *s.emit)
			m.stats.Records++
		}
		if !s.redispatch {
			return
		}
	}
}

// Finish ends the scan and returns the records in scan order.
// A draft still open at end of input is dropped.
func (m *Machine) Finish() ([]Record, Stats) {
	switch m.state {
	case InMeta:
		m.stats.Discarded++
	case InBody:
		m.stats.Unterminated++
	}
	m.draft = nil
	m.body = nil
	return m.records, m.stats
}

func (m *Machine) seeking(l Line) step {
	switch l.Kind {
	case FileMarker:
		m.file = l.Name
		m.stats.FileMarkers++
	case ChunkStart:
		m.draft = newDraft(m.file, l.Index)
		m.stats.ChunkStarts++
		return step{next: InMeta}
	}
	return step{next: Seeking}
}

func (m *Machine) inMeta(l Line) step {
	switch l.Kind {
	case MetaLine:
		if !m.draft.apply(l.Key, l.Value) {
			switch l.Key {
			case MetaEmbedding:
				m.stats.BadEmbeddings++
			case MetaTokenCount:
				m.stats.BadTokenCounts++
			}
		}
		return step{next: InMeta}
	case FenceOpen:
		m.body = []string{}
		return step{next: InBody}
	}
	// Fence missing: drop the draft and let Resync look at this line.
	m.draft = nil
	m.stats.Discarded++
	return step{next: Resync, redispatch: true}
}

func (m *Machine) inBody(l Line) step {
	if l.Kind == FenceClose {
		rec := assemble(m.draft, m.body)
		m.draft = nil
		m.body = nil
		return step{next: Seeking, emit: &rec}
	}
	m.body = append(m.body, l.Raw)
	return step{next: InBody}
}

func (m *Machine) resync(l Line) step {
	if l.Kind == FileMarker || l.Kind == ChunkStart {
		return step{next: Seeking, redispatch: true}
	}
	return step{next: Resync}
}
