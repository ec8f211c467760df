package search

import "fmt"

// Result is one ranked record returned by the backend.
type Result struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Requirements string   `json:"requirements"`
	Score        *float64 `json:"score"`
}

// FormatScore renders the score with exactly two decimals, or "n/a" when the backend omitted it.
func (r Result) FormatScore() string {
	if r.Score == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *r.Score)
}

type response struct {
	Results *[]Result `json:"results"`
}
