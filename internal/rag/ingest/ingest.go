// Package ingest turns the files of one request into a single text.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/akolanti/PdfQA/internal/domain/commonModels"
	"github.com/akolanti/PdfQA/internal/domain/ragErrors"
	"github.com/akolanti/PdfQA/pkg/logger_i"
)

// Extractor returns the plain text of one document.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

type FileExtractor struct {
	logger *logger_i.Logger
}

func NewFileExtractor() *FileExtractor {
	return &FileExtractor{logger: logger_i.NewLogger("Document Extraction")}
}

func (e *FileExtractor) Extract(ctx context.Context, path string) (string, error) {
	switch GetDocType(path) {
	case commonModels.PDF:
		return e.extractPDF(ctx, path)
	case commonModels.DOCX, commonModels.TXT:
		return e.extractDocxTxtRtf(path)
	default:
		return "", fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
}

func GetDocType(docPath string) commonModels.DocType {
	ext := strings.ToLower(filepath.Ext(docPath))
	switch ext {
	case ".pdf":
		return commonModels.PDF
	case ".docx", ".odt", ".rtf":
		return commonModels.DOCX
	case ".txt":
		return commonModels.TXT
	default:
		return commonModels.ERR
	}
}

func SupportedExtension(name string) bool {
	return GetDocType(name) != commonModels.ERR
}

// ExtractAll concatenates the text of every file in order, each followed by a
// newline. Files without text are skipped with a warning; if no file yields
// any text the result is ErrExtractionEmpty. A file that cannot be read at
// all fails the whole request.
func ExtractAll(ctx context.Context, ex Extractor, files []commonModels.SourceFile, logger *logger_i.Logger) (string, error) {
	var sb strings.Builder
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return "", ragErrors.External(ragErrors.ErrExtractionFailed, err)
		}
		text, err := ex.Extract(ctx, file.Path)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				return "", ragErrors.External(ragErrors.ErrExtractionFailed, err)
			}
			return "", ragErrors.Wrap(ragErrors.ErrExtractionFailed, fmt.Errorf("%s: %w", file.Name, err))
		}
		if strings.TrimSpace(text) == "" {
			logger.Warn("No extractable text in document", "file", file.Name)
			continue
		}
		logger.Debug("Document extracted", "file", file.Name, "length", len(text))
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	if sb.Len() == 0 {
		return "", ragErrors.ErrExtractionEmpty
	}
	return sb.String(), nil
}

// RemoveFiles deletes the request's temporary files. Files the caller owns
// are left alone.
func RemoveFiles(files []commonModels.SourceFile, logger *logger_i.Logger) {
	for _, file := range files {
		if !file.Temporary {
			continue
		}
		if err := os.Remove(file.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Error("Error removing file", "path", file.Path, "error", err)
		}
	}
}
