package entity

// QueryRequest is the body of POST /query.
type QueryRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id"`
}

// Query statuses returned to the caller.
const (
	QueryStatusSuccess = "success"
	QueryStatusError   = "error"
)

// QueryResponse is the result of one retrieval-augmented query.
type QueryResponse struct {
	Answer    string `json:"answer"`
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
}

// IngestRequest is the body of POST /ingest. Paths may be local files or
// http(s) URLs.
type IngestRequest struct {
	Paths []string `json:"paths"`
}
