package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/memorial-extractor/internal/entity"
	"github.com/user/memorial-extractor/internal/extractor"
	"github.com/user/memorial-extractor/internal/repository"
	"github.com/user/memorial-extractor/pkg/metrics"
)

const testURL = "https://www.findagrave.com/memorial/12345/archibald-mathies"

func TestRun_WritesProjectedRecord(t *testing.T) {
	sink := &fakeSink{}
	m := metrics.New(prometheus.NewRegistry())
	uc := NewMemorialUseCase(&fakeLoader{body: memorialPage}, sink, nil, m, nil)

	report, err := uc.Run(context.Background(), testURL)
	require.NoError(t, err)
	require.Len(t, sink.written, 1)

	out := sink.written[0]
	assert.Equal(t, entity.OutputSchema.Exported(), out.Keys())
	assert.Equal(t, "Archibald Mathies", out.Get(entity.KeyFullName))
	assert.Equal(t, int64(1890), out.Get("birth_year"))
	assert.Equal(t, "Born in Ohio.", out.Get(entity.KeyBiography))
	assert.Equal(t, "Jane Roe", out.Get(entity.KeyBioBy))
	assert.Equal(t, "Row 4", out.Get(entity.KeyPlot))
	assert.Equal(t, "", out.Get("cemetery_name"))
	assert.False(t, out.Has(entity.KeyInscription))

	assert.True(t, report.Record.Has(entity.KeyInscription))
	assert.Equal(t, "http", report.Source)
	assert.Empty(t, report.Issues)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("success")))
}

func TestRun_FetchFailureIsCritical(t *testing.T) {
	sink := &fakeSink{}
	loader := &fakeLoader{err: fmt.Errorf("%w: status 404", repository.ErrFetchFailed)}
	uc := NewMemorialUseCase(loader, sink, nil, nil, nil)

	report, err := uc.Run(context.Background(), testURL)
	require.Error(t, err)

	var runErr *RunError
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, entity.TagCritical, runErr.Tag)
	assert.Equal(t, StepFetch, runErr.Step)
	assert.ErrorIs(t, err, repository.ErrFetchFailed)
	assert.Empty(t, sink.written)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, "[CRITICAL] failed to fetch page: failed to fetch page: status 404", report.Issues[0].Line())
}

func TestRun_MissingPayloadAbortsBeforeSink(t *testing.T) {
	sink := &fakeSink{}
	uc := NewMemorialUseCase(&fakeLoader{body: "<html><body>nothing</body></html>"}, sink, nil, nil, nil)

	_, err := uc.Run(context.Background(), testURL)
	require.Error(t, err)

	var runErr *RunError
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, entity.TagCritical, runErr.Tag)
	assert.Equal(t, StepParse, runErr.Step)
	assert.ErrorIs(t, err, extractor.ErrStructuredDataMissing)
	assert.True(t, IsPayloadError(err))
	assert.Empty(t, sink.written)
}

func TestRun_MalformedPayloadIsDistinct(t *testing.T) {
	body := `<script>var findagrave = {"fullName": "A",,};</script>`
	uc := NewMemorialUseCase(&fakeLoader{body: body}, &fakeSink{}, nil, nil, nil)

	_, err := uc.Run(context.Background(), testURL)
	require.Error(t, err)
	assert.ErrorIs(t, err, extractor.ErrStructuredDataMalformed)
	assert.NotErrorIs(t, err, extractor.ErrStructuredDataMissing)
}

func TestRun_SinkFailureIsSave(t *testing.T) {
	sink := &fakeSink{err: fmt.Errorf("%w: disk full", repository.ErrSinkWriteFailed)}
	uc := NewMemorialUseCase(&fakeLoader{body: memorialPage}, sink, nil, nil, nil)

	report, err := uc.Run(context.Background(), testURL)
	require.Error(t, err)

	var runErr *RunError
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, entity.TagSave, runErr.Tag)
	assert.Equal(t, StepSave, runErr.Step)
	assert.True(t, report.Failed(entity.TagSave))
	assert.NotNil(t, report.Output)
}

func TestRun_DataIssuesDoNotAbort(t *testing.T) {
	body := `<script>var findagrave = {"fullName": 42, "firstName": "A"};</script>`
	sink := &fakeSink{}
	uc := NewMemorialUseCase(&fakeLoader{body: body}, sink, nil, nil, nil)

	report, err := uc.Run(context.Background(), testURL)
	require.NoError(t, err)
	require.Len(t, sink.written, 1)
	assert.True(t, report.Failed(entity.TagData))
	assert.False(t, report.Failed(entity.TagCritical))
	assert.Equal(t, "A", sink.written[0].Get("first_name"))
}

func TestRun_ArchiveFailureIsReportedNotFatal(t *testing.T) {
	sink := &fakeSink{}
	archive := &fakeSink{err: errBoom}
	uc := NewMemorialUseCase(&fakeLoader{body: memorialPage}, sink, []repository.RecordSink{archive}, nil, nil)

	report, err := uc.Run(context.Background(), testURL)
	require.NoError(t, err)
	require.Len(t, sink.written, 1)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, entity.TagSave, report.Issues[0].Tag)
	assert.Equal(t, StepArchive, report.Issues[0].Step)
}

func TestRun_NilSinkSkipsWrite(t *testing.T) {
	uc := NewMemorialUseCase(&fakeLoader{body: memorialPage}, nil, nil, nil, nil)

	report, err := uc.Run(context.Background(), testURL)
	require.NoError(t, err)
	assert.Equal(t, "Archibald Mathies", report.Output.Get(entity.KeyFullName))
}
