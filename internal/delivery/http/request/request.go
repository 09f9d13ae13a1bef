package request

// ExtractRequest asks the server to run the pipeline for one memorial page.
type ExtractRequest struct {
	URL     string `json:"url"`
	Refresh bool   `json:"refresh"` // bypass the page cache
}
