package models

// Document is a fetched page before extraction.
type Document struct {
	URL      string `json:"url"`
	Status   int    `json:"status"`
	HTML     string `json:"html"`
	RenderMS int    `json:"render_ms"`
}
