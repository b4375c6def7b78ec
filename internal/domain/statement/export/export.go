// Package export renders extraction results for transport: JSON for the API,
// CSV via gocsv and XLSX via excelize for downloads.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/statement-checks/internal/domain/statement/checks"
	"github.com/FACorreiaa/statement-checks/pkg/money"
)

// Format selects an output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported names.
var ErrUnknownFormat = errors.New("unknown export format")

const sheetName = "Checks"

// ParseFormat maps a user-supplied name to a Format. Empty means JSON.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

// Filename returns a download name for the format.
func (f Format) Filename() string {
	return "checks." + string(f)
}

// CheckDTO is the wire form of a check record. Amounts are written as JSON
// numbers with exactly two fractional digits.
type CheckDTO struct {
	CheckNumber string      `json:"check_number"`
	Date        string      `json:"date"`
	Amount      json.Number `json:"amount"`
}

// ResultDTO is the wire form of an extraction result.
type ResultDTO struct {
	Checks []CheckDTO  `json:"checks"`
	Count  int         `json:"count"`
	Total  json.Number `json:"total"`
}

// FromResult converts a result to its wire form.
func FromResult(r *checks.Result) ResultDTO {
	dto := ResultDTO{
		Checks: make([]CheckDTO, 0, len(r.Checks)),
		Count:  r.Count,
		Total:  json.Number(r.Total.StringFixed(money.CentPlaces)),
	}
	for _, c := range r.Checks {
		dto.Checks = append(dto.Checks, CheckDTO{
			CheckNumber: c.CheckNumber,
			Date:        c.Date,
			Amount:      json.Number(c.Amount.StringFixed(money.CentPlaces)),
		})
	}
	return dto
}

// Write encodes r to w in the given format.
func Write(w io.Writer, format Format, r *checks.Result) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, r)
	case FormatXLSX:
		return WriteXLSX(w, r)
	default:
		return WriteJSON(w, r)
	}
}

// WriteJSON encodes r as a single JSON object.
func WriteJSON(w io.Writer, r *checks.Result) error {
	if err := json.NewEncoder(w).Encode(FromResult(r)); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// csvRow is one CSV line; gocsv writes the header from the tags.
type csvRow struct {
	CheckNumber string `csv:"check_number"`
	Date        string `csv:"date"`
	Amount      string `csv:"amount"`
	Display     string `csv:"display"`
}

// WriteCSV writes one row per check with a header line.
func WriteCSV(w io.Writer, r *checks.Result) error {
	rows := make([]*csvRow, 0, len(r.Checks))
	for _, c := range r.Checks {
		rows = append(rows, &csvRow{
			CheckNumber: c.CheckNumber,
			Date:        c.Date,
			Amount:      c.Amount.StringFixed(money.CentPlaces),
			Display:     money.NewFromDecimal(c.Amount, money.USD).Display(),
		})
	}

	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

// WriteXLSX writes a workbook with a "Checks" sheet: a header row, one row
// per check and a closing total row summed from the displayed amounts.
func WriteXLSX(w io.Writer, r *checks.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	if err := f.SetSheetRow(sheetName, "A1", &[]any{"Check Number", "Date", "Amount", "Display"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	total := money.Zero(money.USD)
	row := 2
	for _, c := range r.Checks {
		amount := money.NewFromDecimal(c.Amount, money.USD)
		if total, err = total.Add(amount); err != nil {
			return fmt.Errorf("failed to total row %d: %w", row, err)
		}

		cell, _ := excelize.CoordinatesToCellName(1, row)
		values := []any{
			c.CheckNumber,
			c.Date,
			c.Amount.InexactFloat64(),
			amount.Display(),
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row, err)
		}
		row++
	}

	totalCell, _ := excelize.CoordinatesToCellName(1, row)
	totals := []any{"Total", r.Count, total.ToDecimal().InexactFloat64(), total.Display()}
	if err := f.SetSheetRow(sheetName, totalCell, &totals); err != nil {
		return fmt.Errorf("failed to write totals: %w", err)
	}

	lastAmount, _ := excelize.CoordinatesToCellName(3, row)
	if err := f.SetCellStyle(sheetName, "C2", lastAmount, amountStyle); err != nil {
		return fmt.Errorf("failed to style amounts: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write XLSX: %w", err)
	}
	return nil
}
