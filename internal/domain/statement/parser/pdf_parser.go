// Package parser extracts page text from PDF bank statements.
// Text is read with github.com/ledongthuc/pdf one row at a time, so each
// printed line ends up on its own text line; pdfcpu can optionally validate
// the document structure first.
package parser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var (
	// ErrInvalidPDF indicates the document could not be decoded as a PDF.
	ErrInvalidPDF = errors.New("invalid PDF document")
	// ErrEncrypted indicates a password protected document.
	ErrEncrypted = errors.New("encrypted PDF documents are not supported")
)

// Page is the text of one page. HasText is false when the page yielded no
// extractable text; Text is then empty.
type Page struct {
	Number  int
	Text    string
	HasText bool
}

// PageExtractor turns a document into ordered page texts.
type PageExtractor interface {
	ExtractPages(ctx context.Context, document []byte) ([]Page, error)
}

// PDFParser extracts page text from PDF bytes. It holds no per-document
// state and may be shared between goroutines.
type PDFParser struct {
	preflight bool
	conf      *model.Configuration
}

// Option configures a PDFParser.
type Option func(*PDFParser)

// WithPreflight enables pdfcpu structural validation before text extraction.
func WithPreflight(enabled bool) Option {
	return func(p *PDFParser) {
		p.preflight = enabled
	}
}

// NewPDFParser creates a new PDF parser instance.
func NewPDFParser(opts ...Option) *PDFParser {
	p := &PDFParser{}
	for _, opt := range opts {
		opt(p)
	}

	if p.preflight {
		// Keep pdfcpu from creating a config directory under $HOME.
		api.DisableConfigDir()
		p.conf = model.NewDefaultConfiguration()
		p.conf.ValidationMode = model.ValidationRelaxed
	}
	return p
}

// LooksLikePDF checks the "%PDF-" magic bytes.
func LooksLikePDF(document []byte) bool {
	return bytes.HasPrefix(document, []byte("%PDF-"))
}

// ExtractPages returns the text of every page in page order. Pages without
// text are returned with an empty Text. Any decode failure aborts the whole
// document.
func (p *PDFParser) ExtractPages(ctx context.Context, document []byte) (pages []Page, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !LooksLikePDF(document) {
		return nil, fmt.Errorf("%w: missing %%PDF- header", ErrInvalidPDF)
	}

	// Both PDF libraries can panic on malformed object graphs.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("%w: %v", ErrInvalidPDF, r)
		}
	}()

	if p.preflight {
		if err := p.validate(document); err != nil {
			return nil, err
		}
	}

	reader, err := pdf.NewReader(bytes.NewReader(document), int64(len(document)))
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPassword) {
			return nil, ErrEncrypted
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}

	numPages := reader.NumPage()
	pages = make([]Page, 0, numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, Page{Number: i})
			continue
		}

		text, err := rowText(page)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrInvalidPDF, i, err)
		}

		pages = append(pages, Page{
			Number:  i,
			Text:    text,
			HasText: strings.TrimSpace(text) != "",
		})
	}

	return pages, nil
}

// rowText lays out a page as one text line per row, top to bottom. Fragments
// sharing a row are joined with a space.
func rowText(page pdf.Page) (string, error) {
	rows, err := page.GetTextByRow()
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		fragments := make([]string, 0, len(row.Content))
		for _, t := range row.Content {
			fragments = append(fragments, t.S)
		}
		lines = append(lines, strings.Join(fragments, " "))
	}
	return strings.Join(lines, "\n"), nil
}

func (p *PDFParser) validate(document []byte) error {
	if err := api.Validate(bytes.NewReader(document), p.conf); err != nil {
		return fmt.Errorf("%w: validation failed: %v", ErrInvalidPDF, err)
	}
	return nil
}

// Texts returns the page texts in order, empty for pages without text.
func Texts(pages []Page) []string {
	texts := make([]string, len(pages))
	for i, page := range pages {
		texts[i] = page.Text
	}
	return texts
}
