package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/akolanti/PdfQA/internal/adapter"
	"github.com/akolanti/PdfQA/internal/config"
	"github.com/akolanti/PdfQA/internal/domain/commonModels"
	"github.com/akolanti/PdfQA/internal/domain/jobModel"
	"github.com/akolanti/PdfQA/internal/rag/ingest"
)

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but can't send a clean status code now
		logRH.Error("Error encoding response", "error", err)
	}
}

func validateId(id string, traceId string) (result jobModel.Job, isFound bool) {
	if id == "" {
		logRH.Warn("Empty Job ID")
		return jobModel.Job{}, false
	}
	return GetJobStatus(id, traceId)
}

func traceIdFrom(ctx context.Context) string {
	id, _ := ctx.Value(config.TRACE_ID_KEY).(string)
	return id
}

func validateContext(ctx context.Context) bool {
	if err := ctx.Err(); err != nil {
		logRH.Warn("context error", "traceId", traceIdFrom(ctx), "error", err)
		return false
	}
	return true
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, id string, error string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(id, error, httpCode))
}

func getTargetDirectory(dir string) (string, string) {
	targetDir := dir
	if !filepath.IsAbs(targetDir) {
		root, err := os.Getwd()
		if err != nil {
			return "", "Storage Error"
		}
		targetDir = filepath.Join(root, dir)
	}
	if err := os.MkdirAll(targetDir, 0750); err != nil {
		return "", "Storage Error"
	}
	return targetDir, ""
}

// saveUploads copies every upload into its own temporary file. On error the
// files written so far are removed.
func saveUploads(targetDir string, uploads []*multipart.FileHeader) ([]commonModels.SourceFile, error) {
	files := make([]commonModels.SourceFile, 0, len(uploads))
	for _, fh := range uploads {
		file, err := saveUpload(targetDir, fh)
		if err != nil {
			ingest.RemoveFiles(files, logRH)
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

func saveUpload(targetDir string, fh *multipart.FileHeader) (commonModels.SourceFile, error) {
	src, err := fh.Open()
	if err != nil {
		return commonModels.SourceFile{}, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	dst, err := os.CreateTemp(targetDir, "upload-*"+ext)
	if err != nil {
		return commonModels.SourceFile{}, fmt.Errorf("create temp file: %w", err)
	}

	_, copyErr := io.Copy(dst, src)
	closeErr := dst.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(dst.Name())
		return commonModels.SourceFile{}, fmt.Errorf("write upload %s: %w", fh.Filename, err)
	}
	return commonModels.SourceFile{Name: filepath.Base(fh.Filename), Path: dst.Name(), Temporary: true}, nil
}
