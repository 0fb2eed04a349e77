package api

import "time"

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id          string            `json:"id" example:"2b1f0c7e-5d0e-4c43-a3f7-1f9e6f0f6b1a"`
	Status      string            `json:"status" example:"COMPLETE"`
	CurrentStep string            `json:"current_step,omitempty" example:"Done"`
	FailedStep  string            `json:"failed_step,omitempty" example:"ExtractingText"`
	Result      *AnswerResult     `json:"result,omitempty"`
	Error       *JobOutgoingError `json:"error,omitempty"`
	StartTime   time.Time         `json:"start_time"`
	EndTime     time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"422"`
	Kind    string `json:"kind,omitempty" example:"EXTRACTION_EMPTY"`
	Message string `json:"message" example:"No extractable text found in the uploaded PDF(s)."`
	Retry   bool   `json:"can_retry" example:"false"`
}

type AnswerResult struct {
	Question   string         `json:"question"`
	Answer     string         `json:"answer"`
	AnswerHTML string         `json:"answer_html,omitempty"`
	Context    []ContextChunk `json:"context,omitempty"`
}

// ContextChunk is one retrieved passage. Offsets are character offsets into
// the concatenated text of the request's documents.
type ContextChunk struct {
	Index int     `json:"index"`
	Start int     `json:"start"`
	End   int     `json:"end"`
	Text  string  `json:"text"`
	Score float32 `json:"score"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	Status    string `json:"status" example:"QUEUED"`
	StatusURL string `json:"status_url"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// requests---------------------

// AskRequest documents the multipart form of POST /ask.
type AskRequest struct {
	Question  string `json:"question" validate:"required"`
	Documents []byte `json:"documents" validate:"required"`
}
