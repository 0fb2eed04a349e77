package main

import (
	"context"
	"path/filepath"
	"time"

	"github.com/akolanti/PdfQA/internal/adapter/utils"
	"github.com/akolanti/PdfQA/internal/config"
	"github.com/akolanti/PdfQA/internal/domain/commonModels"
	"github.com/akolanti/PdfQA/internal/domain/jobModel"
	"github.com/akolanti/PdfQA/internal/rag"
	"github.com/akolanti/PdfQA/pkg/logger_i"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type askInput struct {
	Question string   `json:"question" jsonschema:"the question to answer"`
	Paths    []string `json:"paths" jsonschema:"absolute paths of the documents to read"`
}

type askOutput struct {
	Answer string `json:"answer"`
}

type askTool struct {
	service rag.Service
	timeout time.Duration
	logger  *logger_i.Logger
}

// handle runs one pipeline request. Pipeline failures come back as tool
// errors carrying the user message; the caller's files are never removed.
func (t *askTool) handle(ctx context.Context, _ *mcp.CallToolRequest, in askInput) (*mcp.CallToolResult, askOutput, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	files := make([]commonModels.SourceFile, 0, len(in.Paths))
	for _, p := range in.Paths {
		files = append(files, commonModels.SourceFile{Name: filepath.Base(p), Path: p})
	}

	id := utils.GetNewUUID()
	ctx = context.WithValue(ctx, config.TRACE_ID_KEY, id)
	result := t.service.ProcessRequest(ctx, jobModel.NewJob(id, id, in.Question, files))

	if result.CurrentStep != jobModel.Done {
		t.logger.Warn("Tool call failed", "traceId", id, "kind", result.Error.Kind, "step", result.FailedStep)
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: result.Error.Message}},
		}, askOutput{}, nil
	}
	return nil, askOutput{Answer: result.JobPayload.Answer}, nil
}
