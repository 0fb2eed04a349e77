package ingest

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
)

// extractPDF returns the plain text of every page, joined by newlines. Pages
// that fail to parse are logged and skipped; a file that cannot be opened as
// a PDF at all is an error.
func (e *FileExtractor) extractPDF(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat pdf: %w", err)
	}

	reader, err := newReader(f, stat.Size())
	if err != nil {
		e.logger.Error("failed opening of pdf file", "path", path, "error", err)
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	numPages := reader.NumPage()
	e.logger.Debug("extractPDF", "number of pages", numPages)

	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			e.logger.Debug("extractPDF", "page value is null", i)
			continue
		}

		content, err := protectExtract(page)
		if err != nil {
			// Log warning but continue with other pages
			e.logger.Warn("Error parsing page content", "page", i, "error", err)
			continue
		}
		pages = append(pages, content)
	}
	return strings.Join(pages, "\n"), nil
}

// newReader guards against the parser panicking on malformed cross reference
// tables, which it does instead of returning an error.
func newReader(f *os.File, size int64) (r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r, err = nil, fmt.Errorf("malformed pdf: %v", rec)
		}
	}()
	return pdf.NewReader(f, size)
}

func protectExtract(page pdf.Page) (content string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			content, err = "", fmt.Errorf("page extraction panicked: %v", rec)
		}
	}()
	return page.GetPlainText(nil)
}

// File reads a .odt, .docx, .rtf or plaintext file and returns the content as a string
func (e *FileExtractor) extractDocxTxtRtf(path string) (string, error) {
	text, err := cat.File(path)
	if err != nil {
		e.logger.Error("Error extracting content from doc", "path", path, "error", err)
		return "", fmt.Errorf("failed to extract document: %w", err)
	}
	return text, nil
}
