// Package service provides the check extraction orchestration logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/statement-checks/internal/domain/statement/checks"
	"github.com/FACorreiaa/statement-checks/internal/domain/statement/parser"
	"github.com/FACorreiaa/statement-checks/pkg/metrics"
	"github.com/FACorreiaa/statement-checks/pkg/money"
)

const tracerName = "github.com/FACorreiaa/statement-checks/internal/domain/statement/service"

// ExtractionService decodes statements and extracts their checks.
// It keeps no per-request state; one instance serves all requests.
type ExtractionService struct {
	extractor parser.PageExtractor
	metrics   *metrics.Metrics // Optional: nil if metrics are disabled
	tracer    trace.Tracer
	logger    *slog.Logger
}

// NewExtractionService creates a new extraction service
func NewExtractionService(extractor parser.PageExtractor, logger *slog.Logger) *ExtractionService {
	return &ExtractionService{
		extractor: extractor,
		tracer:    otel.Tracer(tracerName),
		logger:    logger,
	}
}

// WithMetrics sets the optional metrics collectors
func (s *ExtractionService) WithMetrics(m *metrics.Metrics) *ExtractionService {
	s.metrics = m
	return s
}

// Extract decodes document, scans its text for checks and validates the
// result against exp. Decode failures are returned wrapped; validation
// failures are returned as *checks.ValidationError and carry no result.
func (s *ExtractionService) Extract(ctx context.Context, document []byte, exp checks.Expectations) (*checks.Result, error) {
	ctx, span := s.tracer.Start(ctx, "statement.Extract",
		trace.WithAttributes(attribute.Int("document.bytes", len(document))))
	defer span.End()

	start := time.Now()

	pages, err := s.extractor.ExtractPages(ctx, document)
	if err != nil {
		s.metrics.ObserveExtraction(metrics.OutcomeDecodeError, 0, 0, time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		s.logger.Error("failed to extract statement text",
			slog.Int("bytes", len(document)),
			slog.Any("error", err))
		return nil, fmt.Errorf("failed to extract statement text: %w", err)
	}

	blank := 0
	for _, p := range pages {
		if !p.HasText {
			blank++
		}
	}

	ext, err := checks.Extract(parser.Texts(pages), exp)
	result := ext.Result

	span.SetAttributes(
		attribute.Int("statement.pages", len(pages)),
		attribute.Int("statement.tokens", ext.Tokens),
		attribute.Int("checks.count", result.Count),
		attribute.String("checks.total", result.Total.StringFixed(money.CentPlaces)),
	)

	if err != nil {
		outcome := metrics.OutcomeCountMismatch
		if errors.Is(err, checks.ErrTotalMismatch) {
			outcome = metrics.OutcomeTotalMismatch
		}
		s.metrics.ObserveExtraction(outcome, result.Count, blank, time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		s.logger.Warn("statement failed validation",
			slog.Int("pages", len(pages)),
			slog.Int("count", result.Count),
			slog.String("total", result.Total.StringFixed(money.CentPlaces)),
			slog.String("reason", err.Error()))
		return nil, err
	}

	s.metrics.ObserveExtraction(metrics.OutcomeOK, result.Count, blank, time.Since(start))
	s.logger.Info("statement checks extracted",
		slog.Int("pages", len(pages)),
		slog.Int("blank_pages", blank),
		slog.Int("tokens", ext.Tokens),
		slog.Int("count", result.Count),
		slog.String("total", result.Total.StringFixed(money.CentPlaces)),
		slog.Duration("elapsed", time.Since(start)))

	return &result, nil
}
