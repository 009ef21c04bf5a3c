package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

const unicodeFamily = "unicode"

// PDFExporter renders datasets into a basic tabular PDF.
//
// Without a UTF-8 font the core Arial font is used. It only covers cp1252, so
// Bengali names and categories are printed as dots. Configure a TTF with Bengali
// glyphs through WithUTF8Font to keep them. gofpdf does not shape conjuncts, so
// joined letters still render as their separate parts.
type PDFExporter struct {
	institution string
	fontPath    string
	now         func() time.Time
}

// PDFOption customises a PDFExporter.
type PDFOption func(*PDFExporter)

// WithUTF8Font embeds the TTF at path and uses it for every style. An empty
// path keeps the core font.
func WithUTF8Font(path string) PDFOption {
	return func(e *PDFExporter) {
		e.fontPath = path
	}
}

// NewPDFExporter constructs a PDF exporter stamped with the institution name.
func NewPDFExporter(institution string, opts ...PDFOption) *PDFExporter {
	e := &PDFExporter{institution: institution, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Render creates a landscape PDF document when the table is wide, portrait otherwise.
func (e *PDFExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	orientation := "P"
	width := 190.0
	if len(data.Headers) > 6 {
		orientation = "L"
		width = 277.0
	}
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	family := "Arial"
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if e.fontPath != "" {
		for _, style := range []string{"", "B", "I"} {
			pdf.AddUTF8Font(unicodeFamily, style, e.fontPath)
		}
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("load pdf font: %w", err)
		}
		family = unicodeFamily
		tr = func(s string) string { return s }
	}
	pdf.SetMargins(10, 15, 10)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(family, "I", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d - generated %s", pdf.PageNo(), e.now().Format("2006-01-02 15:04")), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	if e.institution != "" {
		pdf.SetFont(family, "B", 12)
		pdf.CellFormat(0, 8, tr(e.institution), "", 1, "C", false, 0, "")
	}
	if data.Title != "" {
		pdf.SetFont(family, "B", 14)
		pdf.CellFormat(0, 10, tr(strings.ToUpper(data.Title)), "", 1, "C", false, 0, "")
		pdf.Ln(4)
	}

	pdf.SetFont(family, "B", 9)
	colWidth := width / float64(len(data.Headers))
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, tr(header), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(family, "", 8)
	for _, row := range data.Rows {
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 7, tr(row[header]), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// ContentType reports the MIME type of rendered output.
func (e *PDFExporter) ContentType() string {
	return "application/pdf"
}
