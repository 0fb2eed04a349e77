package main

import (
	"context"
	"testing"

	"github.com/akolanti/PdfQA/internal/domain/jobModel"
	"github.com/akolanti/PdfQA/pkg/logger_i"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type stubService struct {
	onProcess func(ctx context.Context, j jobModel.Job) jobModel.Job
	got       jobModel.Job
}

func (s *stubService) ProcessRequest(ctx context.Context, j jobModel.Job) jobModel.Job {
	s.got = j
	return s.onProcess(ctx, j)
}

func TestAskTool(t *testing.T) {
	tests := []struct {
		name       string
		process    func(ctx context.Context, j jobModel.Job) jobModel.Job
		wantAnswer string
		wantError  string
	}{
		{
			name: "answer",
			process: func(ctx context.Context, j jobModel.Job) jobModel.Job {
				j.CurrentStep = jobModel.Done
				j.JobPayload.Answer = "$5 million"
				return j
			},
			wantAnswer: "$5 million",
		},
		{
			name: "pipeline failure",
			process: func(ctx context.Context, j jobModel.Job) jobModel.Job {
				j.CurrentStep = jobModel.Failed
				j.FailedStep = jobModel.ExtractingText
				j.Error = jobModel.JobError{Code: 422, Kind: "EXTRACTION_EMPTY", Message: "No extractable text found in the uploaded PDF(s)."}
				return j
			},
			wantError: "No extractable text found in the uploaded PDF(s).",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{onProcess: tt.process}
			tool := &askTool{service: svc, logger: logger_i.NewLogger("test")}

			res, out, err := tool.handle(context.Background(), nil, askInput{
				Question: "What was the revenue?",
				Paths:    []string{"/data/report.pdf", "/data/notes.txt"},
			})
			if err != nil {
				t.Fatal(err)
			}
			if len(svc.got.JobPayload.Files) != 2 || svc.got.JobPayload.Files[0].Name != "report.pdf" {
				t.Errorf("files = %+v", svc.got.JobPayload.Files)
			}
			for _, f := range svc.got.JobPayload.Files {
				if f.Temporary {
					t.Errorf("caller file %s marked temporary", f.Path)
				}
			}

			if tt.wantError == "" {
				if res != nil || out.Answer != tt.wantAnswer {
					t.Errorf("got %+v, %q", res, out.Answer)
				}
				return
			}
			if res == nil || !res.IsError || len(res.Content) != 1 {
				t.Fatalf("expected a tool error, got %+v", res)
			}
			if text, ok := res.Content[0].(*mcp.TextContent); !ok || text.Text != tt.wantError {
				t.Errorf("content = %+v", res.Content[0])
			}
		})
	}
}
