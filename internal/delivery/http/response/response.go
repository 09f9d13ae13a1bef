package response

import (
	"time"

	"github.com/user/memorial-extractor/internal/entity"
)

// IssueResponse is one pipeline issue as reported to API clients.
type IssueResponse struct {
	Tag     string `json:"tag"`
	Step    string `json:"step"`
	Message string `json:"message"`
}

// ExtractResponse is the result of POST /api/extract.
type ExtractResponse struct {
	URL    string          `json:"url"`
	Source string          `json:"source,omitempty"`
	Record *entity.Record  `json:"record,omitempty"`
	Issues []IssueResponse `json:"issues"`
}

// ColumnResponse describes one output column.
type ColumnResponse struct {
	Key      string `json:"key"`
	Exported bool   `json:"exported"`
}

// ArchivedRecordResponse is a previously extracted record.
type ArchivedRecordResponse struct {
	URL         string         `json:"url"`
	ExtractedAt time.Time      `json:"extracted_at"`
	Record      *entity.Record `json:"record"`
}

// Issues converts pipeline issues into their API form.
func Issues(issues []entity.Issue) []IssueResponse {
	out := make([]IssueResponse, 0, len(issues))
	for _, i := range issues {
		out = append(out, IssueResponse{Tag: string(i.Tag), Step: i.Step, Message: i.Err.Error()})
	}
	return out
}
