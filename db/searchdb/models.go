package searchdb

// Document is the indexed part of a posting; the posting itself lives in the key-value store.
type Document struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Requirements string `json:"requirements"`
}

type Hit struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

type Response struct {
	Hits       []Hit   `json:"hits"`
	Total      uint64  `json:"total"`
	MaxScore   float64 `json:"max_score"`
	SearchTime string  `json:"search_time"`
}
