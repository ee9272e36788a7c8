package domain

import "encoding/json"

// Session-scoped keys written by the submission pipeline.
const (
	KeyUserSketch    = "userSketch"
	KeySearchResults = "searchResults"
	KeyDebugInfo     = "debugInfo"
)

// SubmissionResult is the success body of the search backend.
// Both parts are opaque to this module and kept as raw JSON.
type SubmissionResult struct {
	Results   json.RawMessage `json:"results"`
	DebugInfo json.RawMessage `json:"debug_info"`
}
