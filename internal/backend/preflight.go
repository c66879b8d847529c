package backend

import (
	"path/filepath"
	"strings"

	"github.com/tsawler/tabula"
)

// HasPDFExtension reports whether name ends in ".pdf", ignoring case.
func HasPDFExtension(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

// Preflight checks that path is a PDF with at least one page and returns its page count.
// Every failure matches ErrNotPDF.
func Preflight(path string) (int, error) {
	if !HasPDFExtension(path) {
		return 0, &PDFError{Path: path, Message: "file must have a .pdf extension"}
	}

	ext := tabula.Open(path)
	defer func() { _ = ext.Close() }()

	count, err := ext.PageCount()
	if err != nil {
		return 0, &PDFError{Path: path, Message: "cannot open as PDF", Cause: err}
	}
	if count == 0 {
		return 0, &PDFError{Path: path, Message: "document has no pages"}
	}
	return count, nil
}

// ExtractText returns the plain text of a PDF for local previews.
// Extraction warnings are dropped; only hard failures are reported.
func ExtractText(path string) (string, error) {
	if _, err := Preflight(path); err != nil {
		return "", err
	}

	text, _, err := tabula.Open(path).JoinParagraphs().Text()
	if err != nil {
		return "", &PDFError{Path: path, Message: "text extraction failed", Cause: err}
	}
	return text, nil
}
