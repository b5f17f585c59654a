package rag

// Query is a retrieval request scoped to one company.
type Query struct {
	// Text is the free-text query to embed.
	Text string `json:"query"`
	// Company restricts results to chunks ingested for this tenant.
	Company string `json:"company"`
	// DocumentID optionally restricts results to a single document.
	DocumentID string `json:"document_id,omitempty"`
	// K is the number of results wanted. Defaults to 5, capped at 20.
	K int `json:"k,omitempty"`
}

// Hit is one retrieved chunk with its scores.
type Hit struct {
	ChunkID     string  `json:"chunk_id"`
	DocumentID  string  `json:"document_id"`
	Title       string  `json:"title,omitempty"`
	Filename    string  `json:"filename"`
	FilePath    string  `json:"file_path"`
	File        string  `json:"file"`
	HeadingPath string  `json:"heading_path"`
	Page        *string `json:"page"`
	ChunkIndex  int     `json:"chunk_index"`
	Text        string  `json:"text"`
	TokenCount  int     `json:"token_count"`
	// ScoreVector is the similarity reported by the vector store.
	ScoreVector float32 `json:"score_vector"`
	// ScoreLexical is the keyword overlap bonus, see lexicalScore.
	ScoreLexical float32 `json:"score_lexical"`
	ScoreFinal   float32 `json:"score_final"`
	// Rank is 1-based.
	Rank int `json:"rank"`
}

// Response holds the ranked hits for a Query.
type Response struct {
	Results []Hit `json:"results"`
}
