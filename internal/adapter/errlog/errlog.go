// Package errlog appends pipeline issues to a plain-text error log.
package errlog

import (
	"fmt"
	"os"

	"github.com/user/memorial-extractor/internal/entity"
)

// Writer appends "[TAG] message" lines to a file. Each call opens the file
// in append mode and closes it before returning, so earlier lines are never
// rewritten.
type Writer struct {
	path string
}

// NewWriter returns a writer for path. The file is created on first use.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Path returns the log location.
func (w *Writer) Path() string {
	return w.path
}

// Append writes one line per issue.
func (w *Writer) Append(issues ...entity.Issue) (err error) {
	if len(issues) == 0 {
		return nil
	}
	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open error log: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close error log: %w", cerr)
		}
	}()

	for _, issue := range issues {
		if _, err := fmt.Fprintln(f, issue.Line()); err != nil {
			return fmt.Errorf("write error log: %w", err)
		}
	}
	return nil
}
