package models

// Suggestion is one trip idea produced by either suggestion flow.
type Suggestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}
