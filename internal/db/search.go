package db

// KNNQuery describes a K-nearest-neighbor vector search.
type KNNQuery struct {
	IndexName    string
	Vector       []float32
	K            int
	Filter       string   // optional pre-filter expression, "*" when empty
	ReturnFields []string // hash fields to return alongside the score
}

// SearchEntry is a single hit from an FT.SEARCH query.
type SearchEntry struct {
	Key      string
	Distance float64 // raw metric distance, cosine in [0,2]
	Fields   map[string]string
}

// SearchResult is the outcome of an FT.SEARCH query.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}
