package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/akolanti/PdfQA/internal/api"
	"github.com/akolanti/PdfQA/internal/config"
	"github.com/akolanti/PdfQA/internal/data/store"
	"github.com/akolanti/PdfQA/internal/domain/jobModel"
	"github.com/akolanti/PdfQA/internal/job"
	"github.com/akolanti/PdfQA/internal/rag"
	"github.com/go-chi/chi/v5"
)

type upload struct {
	name    string
	content string
}

func askRequest(t *testing.T, question string, uploads ...upload) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("question", question); err != nil {
		t.Fatal(err)
	}
	for _, u := range uploads {
		fw, err := mw.CreateFormFile(config.UploadFormFile, u.name)
		if err != nil {
			t.Fatal(err)
		}
		_, _ = fw.Write([]byte(u.content))
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/ask", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func setup(t *testing.T, queueSize int) (*job.Service, string) {
	t.Helper()
	dir := t.TempDir()
	svc := job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan jobModel.Job, queueSize),
		DispatcherChannel: make(chan bool, 10),
		JobStore:          store.InitInMemoryJobStore(),
	})
	InitJobHandler(svc, config.ServerSettings{UploadDir: dir, MaxUpload: 1 << 20})
	return svc, dir
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) api.JobResponse {
	t.Helper()
	var res api.JobResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatalf("response is not JSON: %v (%s)", err, rr.Body.String())
	}
	return res
}

func dirEntries(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	return len(entries)
}

func TestAskHandler_Accepted(t *testing.T) {
	svc, dir := setup(t, 4)

	rr := httptest.NewRecorder()
	AskHandler(rr, askRequest(t, "  What was the total revenue in 2023? ",
		upload{"report.pdf", "%PDF-1.4 one"}, upload{"notes.txt", "two"}))

	if rr.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	var res api.InitJobResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.Id == "" || res.StatusURL != "status/"+res.Id || res.Status != string(jobModel.JobStatusQueued) {
		t.Errorf("unexpected init response %+v", res)
	}

	queued := <-svc.JobChannel
	if queued.Id != res.Id || queued.JobPayload.Question != "What was the total revenue in 2023?" {
		t.Errorf("queued job mismatch: %+v", queued)
	}
	if len(queued.JobPayload.Files) != 2 {
		t.Fatalf("queued %d files, want 2", len(queued.JobPayload.Files))
	}
	for _, f := range queued.JobPayload.Files {
		if !f.Temporary {
			t.Errorf("upload %s not marked temporary", f.Name)
		}
		if _, err := os.Stat(f.Path); err != nil {
			t.Errorf("upload %s not on disk: %v", f.Name, err)
		}
	}
	if queued.JobPayload.Files[0].Name != "report.pdf" {
		t.Errorf("upload order not kept: %+v", queued.JobPayload.Files)
	}
	if got, found := svc.JobStore.GetJob(t.Context(), res.Id); !found || got.CurrentStep != jobModel.Idle {
		t.Errorf("job not recorded as idle: %+v found=%v", got, found)
	}
	if dirEntries(t, dir) != 2 {
		t.Errorf("expected 2 temp files in upload dir")
	}
}

func TestAskHandler_Validation(t *testing.T) {
	tests := []struct {
		name    string
		req     func(t *testing.T) *http.Request
		wantMsg string
	}{
		{
			name:    "no documents",
			req:     func(t *testing.T) *http.Request { return askRequest(t, "What?") },
			wantMsg: "Please upload at least one PDF file",
		},
		{
			name:    "blank question",
			req:     func(t *testing.T) *http.Request { return askRequest(t, "   ", upload{"a.pdf", "x"}) },
			wantMsg: "Please enter a valid question.",
		},
		{
			name:    "unsupported type",
			req:     func(t *testing.T) *http.Request { return askRequest(t, "What?", upload{"photo.png", "x"}) },
			wantMsg: "Unsupported file type: photo.png",
		},
		{
			name: "not multipart",
			req: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/ask", bytes.NewReader([]byte(`{"question":"q"}`)))
			},
			wantMsg: "File too large or bad request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, dir := setup(t, 4)
			rr := httptest.NewRecorder()
			AskHandler(rr, tt.req(t))

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rr.Code)
			}
			res := decodeError(t, rr)
			if res.Error == nil || res.Error.Message != tt.wantMsg {
				t.Errorf("error = %+v, want %q", res.Error, tt.wantMsg)
			}
			if len(svc.JobChannel) != 0 {
				t.Error("an invalid request was queued")
			}
			if dirEntries(t, dir) != 0 {
				t.Error("an invalid request left files behind")
			}
		})
	}
}

func TestAskHandler_MissingCredentialWritesNothing(t *testing.T) {
	svc, dir := setup(t, 4)
	InitJobHandler(svc, config.ServerSettings{UploadDir: dir, MaxUpload: 1 << 20},
		rag.Options{CredentialRequired: true}.CheckCredentials)

	rr := httptest.NewRecorder()
	AskHandler(rr, askRequest(t, "What?", upload{"a.pdf", "x"}))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	if res := decodeError(t, rr); res.Error == nil || res.Error.Message != "API Key is missing." {
		t.Errorf("error = %+v", res.Error)
	}
	if dirEntries(t, dir) != 0 {
		t.Error("uploads were written although the key is missing")
	}
	if len(svc.JobChannel) != 0 {
		t.Error("a request without a key was queued")
	}
}

func TestAskHandler_QueueFull(t *testing.T) {
	_, dir := setup(t, 0)

	rr := httptest.NewRecorder()
	AskHandler(rr, askRequest(t, "What?", upload{"a.pdf", "x"}))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}
	if dirEntries(t, dir) != 0 {
		t.Error("rejected request left its uploads behind")
	}
}

func TestGetStatusHandler(t *testing.T) {
	svc, _ := setup(t, 4)
	done := jobModel.NewJob("job-42", "trace", "What?", nil)
	done.Status = jobModel.JobStatusComplete
	done.CurrentStep = jobModel.Done
	done.JobPayload.Answer = "It was $5 million."
	if err := svc.JobStore.SaveJob(t.Context(), done); err != nil {
		t.Fatal(err)
	}

	r := chi.NewRouter()
	r.Get("/status/{id}", GetStatusHandler)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/status/job-42", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var res api.JobResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.Status != "COMPLETE" || res.CurrentStep != "Done" || res.Result == nil || res.Result.Answer != "It was $5 million." {
		t.Errorf("unexpected status response %+v", res)
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/status/missing", nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("missing job status = %d, want 404", rr.Code)
	}
}

func TestHealthHandler(t *testing.T) {
	rr := httptest.NewRecorder()
	HealthHandler(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK || !bytes.Contains(rr.Body.Bytes(), []byte(`"ok"`)) {
		t.Errorf("health = %d %s", rr.Code, rr.Body.String())
	}
}
