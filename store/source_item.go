package store

// SourceItem represents a retrieved text snippet eligible for injection
// into a message as grounding context.
type SourceItem struct {
	ID        string
	Content   string
	CreatedTs int64
}

// UpsertSourceItem specifies the data for upserting a source item and
// its embedding.
type UpsertSourceItem struct {
	ID        string
	Content   string
	Embedding []float32
}

// FindSourceItem specifies the conditions for finding source items.
type FindSourceItem struct {
	IDs   []string
	Limit *int
}

// SearchSourceItems specifies a nearest-neighbor search over source
// item embeddings.
type SearchSourceItems struct {
	Embedding []float32
	Limit     int
}
