// Package handler exposes check extraction over HTTP.
package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-checks/internal/domain/statement/checks"
	"github.com/FACorreiaa/statement-checks/internal/domain/statement/export"
	"github.com/FACorreiaa/statement-checks/internal/domain/statement/parser"
	"github.com/FACorreiaa/statement-checks/pkg/storage"
)

const (
	// multipart parts beyond this stay on disk in the form's temp files
	maxMemoryBytes = 8 << 20

	formFieldPDF           = "pdf"
	formFieldExpectedCount = "expected_count"
	formFieldExpectedTotal = "expected_total"
)

// Extractor is the part of the extraction service the handler needs.
type Extractor interface {
	Extract(ctx context.Context, document []byte, exp checks.Expectations) (*checks.Result, error)
}

// StatementHandler handles statement upload requests
type StatementHandler struct {
	extractor      Extractor
	spool          storage.Storage
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewStatementHandler creates a new statement handler
func NewStatementHandler(extractor Extractor, spool storage.Storage, maxUploadBytes int64, logger *slog.Logger) *StatementHandler {
	return &StatementHandler{
		extractor:      extractor,
		spool:          spool,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Register mounts the handler's routes on mux.
func (h *StatementHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /parse-fifththird", h.ParseFifthThird)
	mux.HandleFunc("GET /healthz", h.Health)
}

// Health reports liveness.
func (h *StatementHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ParseFifthThird extracts the checks from an uploaded statement.
//
// Form fields: pdf (file, required), expected_count and expected_total
// (optional). The "format" query parameter selects json (default), csv or
// xlsx. Failed expectations answer 422 with {"detail": "..."}.
func (h *StatementHandler) ParseFifthThird(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(maxMemoryBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeDetail(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("file too large (max %dMB)", h.maxUploadBytes/(1024*1024)))
			return
		}
		writeDetail(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	exp, err := parseExpectations(r.FormValue(formFieldExpectedCount), r.FormValue(formFieldExpectedTotal))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	file, header, err := r.FormFile(formFieldPDF)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "pdf file is required")
		return
	}
	defer file.Close()

	info, err := h.spool.Upload(ctx, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			writeDetail(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		h.logger.Error("failed to spool upload", slog.Any("error", err))
		writeDetail(w, http.StatusInternalServerError, "internal error")
		return
	}
	defer func() {
		// the request context may already be canceled here
		if err := h.spool.Delete(context.WithoutCancel(ctx), info.ID); err != nil {
			h.logger.Warn("failed to remove spooled upload",
				slog.String("file_id", info.ID.String()),
				slog.Any("error", err))
		}
	}()

	document, err := h.spool.ReadAll(ctx, info.ID)
	if err != nil {
		h.logger.Error("failed to read spooled upload", slog.Any("error", err))
		writeDetail(w, http.StatusInternalServerError, "internal error")
		return
	}

	result, err := h.extractor.Extract(ctx, document, exp)
	if err != nil {
		h.writeExtractError(w, err, header.Filename)
		return
	}

	var body bytes.Buffer
	if err := export.Write(&body, format, result); err != nil {
		h.logger.Error("failed to render result", slog.String("format", string(format)), slog.Any("error", err))
		writeDetail(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	if format != export.FormatJSON {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.Filename()))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body.Bytes())
}

func (h *StatementHandler) writeExtractError(w http.ResponseWriter, err error, filename string) {
	if ve, ok := checks.AsValidationError(err); ok {
		writeDetail(w, http.StatusUnprocessableEntity, ve.Error())
		return
	}

	switch {
	case errors.Is(err, parser.ErrEncrypted):
		writeDetail(w, http.StatusBadRequest, parser.ErrEncrypted.Error())
	case errors.Is(err, parser.ErrInvalidPDF):
		writeDetail(w, http.StatusBadRequest, "could not read PDF")
	default:
		h.logger.Error("failed to extract checks",
			slog.String("filename", filename),
			slog.Any("error", err))
		writeDetail(w, http.StatusInternalServerError, "internal error")
	}
}

// parseExpectations reads the optional form values. Blank values are absent.
func parseExpectations(countStr, totalStr string) (checks.Expectations, error) {
	var exp checks.Expectations

	if s := strings.TrimSpace(countStr); s != "" {
		count, err := strconv.Atoi(s)
		if err != nil {
			return exp, fmt.Errorf("expected_count must be an integer, got %q", countStr)
		}
		exp.Count = &count
	}

	if s := strings.TrimSpace(totalStr); s != "" {
		total, err := decimal.NewFromString(s)
		if err != nil {
			return exp, fmt.Errorf("expected_total must be a number, got %q", totalStr)
		}
		exp.Total = &total
	}

	return exp, nil
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
