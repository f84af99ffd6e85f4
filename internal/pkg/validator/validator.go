package validator

import (
	"fmt"
	"strings"

	"github.com/futig/rag-backend/internal/entity"
)

const (
	maxQuestionLength = 2000
	maxIngestPaths    = 64
)

// Validator checks incoming API requests before they reach the use cases.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// ValidateQuery checks the query request and fills in the default session id.
func (v *Validator) ValidateQuery(req *entity.QueryRequest) error {
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		return entity.ErrEmptyQuestion
	}
	if len(req.Question) > maxQuestionLength {
		return fmt.Errorf("question exceeds %d characters", maxQuestionLength)
	}
	if req.SessionID == "" {
		req.SessionID = "default"
	}
	return nil
}

// ValidateIngest checks the ingest request.
func (v *Validator) ValidateIngest(req *entity.IngestRequest) error {
	if len(req.Paths) == 0 {
		return fmt.Errorf("paths must not be empty")
	}
	if len(req.Paths) > maxIngestPaths {
		return fmt.Errorf("too many paths: %d (max %d)", len(req.Paths), maxIngestPaths)
	}
	for _, p := range req.Paths {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("paths must not contain empty entries")
		}
	}
	return nil
}
