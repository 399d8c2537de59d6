package sink

import (
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/jadenpxrk/fileconcat/internal/render"
)

const (
	pdfPageWidth  = 210 // A4 width in mm
	pdfMargin     = 10
	pdfLineHeight = 4.5
	pdfFontSize   = 8
	pdfTabWidth   = 4
)

// The core fonts are cp1252; box drawing has no glyph there.
var asciiTree = strings.NewReplacer(
	"├──", "|--",
	"└──", "`--",
	"│", "|",
	"\t", strings.Repeat(" ", pdfTabWidth),
)

// PDF renders docs into a monospaced A4 document, each starting on a new
// page.
func PDF(path string, docs []render.Document) error {
	pdf := buildPDF(docs)
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to save PDF to %s: %w", path, err)
	}
	return nil
}

func buildPDF(docs []render.Document) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetTitle("fileconcat", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, doc := range docs {
		pdf.AddPage()
		if doc.Multi() {
			pdf.SetFont("Helvetica", "B", pdfFontSize+2)
			pdf.MultiCell(pdfPageWidth-2*pdfMargin, pdfLineHeight+1, fmt.Sprintf("Part %d of %d", doc.Part, doc.Parts), "", "L", false)
			pdf.Ln(pdfLineHeight / 2)
		}
		pdf.SetFont("Courier", "", pdfFontSize)
		pdf.SetTextColor(0, 0, 0)
		pdf.MultiCell(pdfPageWidth-2*pdfMargin, pdfLineHeight, tr(asciiTree.Replace(render.Render(doc))), "", "L", false)
	}
	return pdf
}
