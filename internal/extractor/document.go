// Package extractor turns one memorial page into a flat memorial record.
//
// The pipeline is ExtractPayload → Normalize → ExtractSections → Assemble.
// Every step is pure; failures are returned as errors (unrecoverable) or as
// entity.Issue values (recoverable) and never written anywhere.
package extractor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/user/memorial-extractor/internal/entity"
)

// Parse builds the markup tree shared by the payload and section extractors.
func Parse(body string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}
	return doc, nil
}

// Extract runs the whole pipeline over one page body and returns the full,
// unprojected record. The error is non-nil only when the structured payload
// is missing or malformed; section and field failures come back as issues.
func Extract(body string) (*entity.Record, []entity.Issue, error) {
	doc, err := Parse(body)
	if err != nil {
		return nil, nil, err
	}
	payload, err := ExtractPayload(doc)
	if err != nil {
		return nil, nil, err
	}

	normalized, issues := Normalize(payload)
	sections, sectionIssues := ExtractSections(doc)
	issues = append(issues, sectionIssues...)

	return Assemble(normalized, sections), issues, nil
}
