package xlsx

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/user/memorial-extractor/internal/entity"
	"github.com/user/memorial-extractor/internal/repository"
)

const defaultSheet = "Sheet1"

// SinkImpl writes a record as a one-sheet workbook: headers in row 1,
// values in row 2. The file is replaced on every write.
type SinkImpl struct {
	path   string
	sheet  string
	logger *zap.Logger
}

// NewSink creates a workbook sink writing sheet into path.
func NewSink(path, sheet string, logger *zap.Logger) *SinkImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SinkImpl{path: path, sheet: sheet, logger: logger}
}

// Path returns the workbook location.
func (s *SinkImpl) Path() string {
	return s.path
}

// Write implements repository.RecordSink.
func (s *SinkImpl) Write(_ context.Context, url string, rec *entity.Record) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: close workbook: %v", repository.ErrSinkWriteFailed, cerr)
		}
	}()

	if err := f.SetSheetName(defaultSheet, s.sheet); err != nil {
		return fmt.Errorf("%w: name sheet %q: %v", repository.ErrSinkWriteFailed, s.sheet, err)
	}

	headers, values := rows(rec)
	if err := f.SetSheetRow(s.sheet, "A1", &headers); err != nil {
		return fmt.Errorf("%w: write headers: %v", repository.ErrSinkWriteFailed, err)
	}
	if err := f.SetSheetRow(s.sheet, "A2", &values); err != nil {
		return fmt.Errorf("%w: write values: %v", repository.ErrSinkWriteFailed, err)
	}
	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrSinkWriteFailed, err)
	}

	s.logger.Info("Workbook written", zap.String("url", url), zap.String("path", s.path), zap.Int("columns", rec.Len()))
	return nil
}

func rows(rec *entity.Record) (headers, values []any) {
	for _, f := range rec.Fields() {
		headers = append(headers, f.Key)
		values = append(values, f.Value)
	}
	return headers, values
}
