package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/statement-checks/internal/domain/statement/checks"
	"github.com/FACorreiaa/statement-checks/internal/domain/statement/parser"
	"github.com/FACorreiaa/statement-checks/pkg/metrics"
)

// fakeExtractor returns fixed pages for every document.
type fakeExtractor struct {
	pages []parser.Page
	err   error
	calls int
}

func (f *fakeExtractor) ExtractPages(ctx context.Context, document []byte) ([]parser.Page, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.pages, nil
}

func textPages(texts ...string) []parser.Page {
	pages := make([]parser.Page, len(texts))
	for i, text := range texts {
		pages[i] = parser.Page{Number: i + 1, Text: text, HasText: text != ""}
	}
	return pages
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExtract_Success(t *testing.T) {
	fake := &fakeExtractor{pages: textPages("101 03/14 1,234.56", "", "102 03/15 0.44")}
	m := metrics.New(prometheus.NewRegistry())
	svc := NewExtractionService(fake, discardLogger()).WithMetrics(m)

	result, err := svc.Extract(context.Background(), []byte("%PDF-"), checks.Expectations{})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Count)
	assert.True(t, decimal.RequireFromString("-1235.00").Equal(result.Total), "total %s", result.Total)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Extractions.WithLabelValues(metrics.OutcomeOK)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.BlankPages))
}

func TestExtract_ValidationFailures(t *testing.T) {
	three := 3
	wrongTotal := decimal.RequireFromString("-49.99")

	tests := []struct {
		name    string
		exp     checks.Expectations
		wantErr error
		outcome string
	}{
		{"count", checks.Expectations{Count: &three}, checks.ErrCountMismatch, metrics.OutcomeCountMismatch},
		{"total", checks.Expectations{Total: &wrongTotal}, checks.ErrTotalMismatch, metrics.OutcomeTotalMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeExtractor{pages: textPages("101 03/14 25.00 102 03/15 25.00")}
			m := metrics.New(prometheus.NewRegistry())
			svc := NewExtractionService(fake, discardLogger()).WithMetrics(m)

			result, err := svc.Extract(context.Background(), nil, tt.exp)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, tt.wantErr)

			_, ok := checks.AsValidationError(err)
			assert.True(t, ok)
			assert.Equal(t, float64(1), testutil.ToFloat64(m.Extractions.WithLabelValues(tt.outcome)))
		})
	}
}

func TestExtract_DecodeErrorPropagates(t *testing.T) {
	fake := &fakeExtractor{err: parser.ErrInvalidPDF}
	svc := NewExtractionService(fake, discardLogger())

	result, err := svc.Extract(context.Background(), []byte("junk"), checks.Expectations{})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, parser.ErrInvalidPDF)

	_, ok := checks.AsValidationError(err)
	assert.False(t, ok)
}

func TestExtract_EmptyDocument(t *testing.T) {
	zero := 0
	fake := &fakeExtractor{pages: textPages("", "")}
	svc := NewExtractionService(fake, discardLogger())

	result, err := svc.Extract(context.Background(), nil, checks.Expectations{Count: &zero})
	require.NoError(t, err)
	assert.Empty(t, result.Checks)
	assert.Equal(t, 0, result.Count)
	assert.True(t, result.Total.IsZero())
}

func TestExtract_Idempotent(t *testing.T) {
	fake := &fakeExtractor{pages: textPages("101 03/14 10.00 junk 102 03/15 20.00")}
	svc := NewExtractionService(fake, discardLogger())

	first, err := svc.Extract(context.Background(), nil, checks.Expectations{})
	require.NoError(t, err)
	second, err := svc.Extract(context.Background(), nil, checks.Expectations{})
	require.NoError(t, err)

	assert.Equal(t, first.Checks, second.Checks)
	assert.True(t, first.Total.Equal(second.Total))
	assert.Equal(t, 2, fake.calls)
}

func TestExtract_RealPDF(t *testing.T) {
	doc := parser.BuildTextPDF(
		[]string{"Fifth Third Bank", "Checks Paid"},
		[]string{"1041 03/04 250.00 1042 03/05 75.25"},
	)
	svc := NewExtractionService(parser.NewPDFParser(), discardLogger())

	result, err := svc.Extract(context.Background(), doc, checks.Expectations{})
	require.NoError(t, err)
	require.Equal(t, 2, result.Count)
	assert.Equal(t, "1041", result.Checks[0].CheckNumber)
	assert.Equal(t, "2024/03/05", result.Checks[1].Date)
	assert.True(t, decimal.RequireFromString("-325.25").Equal(result.Total))
}

func TestExtract_RealPDFOneCheckPerLine(t *testing.T) {
	doc := parser.BuildTextPDF(
		[]string{"Checks Paid", "1041 03/04 250.00", "1042 03/05 75.25", "1043 03/09 1,005.10"},
		[]string{"1044 03/21 12,000.00", "Total 4"},
	)
	count := 4
	total := decimal.RequireFromString("-13330.35")
	svc := NewExtractionService(parser.NewPDFParser(), discardLogger())

	result, err := svc.Extract(context.Background(), doc, checks.Expectations{Count: &count, Total: &total})
	require.NoError(t, err)

	numbers := make([]string, 0, len(result.Checks))
	for _, c := range result.Checks {
		numbers = append(numbers, c.CheckNumber)
	}
	assert.Equal(t, []string{"1041", "1042", "1043", "1044"}, numbers)
}

func TestExtract_RealPDFInvalid(t *testing.T) {
	svc := NewExtractionService(parser.NewPDFParser(), discardLogger())

	_, err := svc.Extract(context.Background(), []byte("definitely not a pdf"), checks.Expectations{})
	assert.True(t, errors.Is(err, parser.ErrInvalidPDF))
}
