package handlers

import (
	"net/http"
	"strings"

	"github.com/akolanti/PdfQA/internal/adapter"
	"github.com/akolanti/PdfQA/internal/adapter/utils"
	"github.com/akolanti/PdfQA/internal/api"
	"github.com/akolanti/PdfQA/internal/config"
	"github.com/akolanti/PdfQA/internal/domain/jobModel"
	"github.com/akolanti/PdfQA/internal/domain/ragErrors"
	"github.com/akolanti/PdfQA/internal/rag/ingest"
)

// HealthHandler godoc
// @Summary      Liveness probe
// @Tags         Health
// @Produce      json
// @Success      200  {object}  api.HealthResponse
// @Router       /health [get]
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}

// AskHandler godoc
// @Summary      Ask a question about uploaded documents
// @Description  Receives one or more documents and a question via multipart/form-data, stores the uploads as temporary files and queues a job that answers the question from their text.
// @Tags         Questions
// @Accept       multipart/form-data
// @Produce      json
// @Param        question   formData  string  true  "The question to answer"
// @Param        documents  formData  file    true  "PDF, DOCX, ODT, RTF or TXT files; repeat the field for several"
// @Success      202  {object}  api.InitJobResponse "Accepted - poll status_url"
// @Failure      400  {object}  api.JobResponse     "Missing documents, blank question or unsupported file"
// @Failure      500  {object}  api.JobResponse     "Storage error or missing API key"
// @Failure      503  {object}  api.JobResponse     "Queue full"
// @Router       /ask [post]
func AskHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request", "remote", r.RemoteAddr)
		return
	}
	if handlerInstance == nil {
		WriteErrorResponse(w, http.StatusServiceUnavailable, "", "Service is not ready")
		return
	}
	if err := checkPreconditions(); err != nil {
		logRH.Error("Request rejected before upload", "error", err)
		WriteErrorResponse(w, ragErrors.HTTPStatus(ragErrors.KindOf(err)), "", ragErrors.UserMessage(err))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, handlerInstance.maxUpload)
	if err := r.ParseMultipartForm(handlerInstance.maxUpload); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			logRH.Warn("Could not remove multipart spool files", "error", err)
		}
	}()

	uploads := r.MultipartForm.File[config.UploadFormFile]
	if len(uploads) == 0 {
		WriteErrorResponse(w, http.StatusBadRequest, "", "Please upload at least one PDF file")
		return
	}
	question := strings.TrimSpace(r.FormValue("question"))
	if question == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "", "Please enter a valid question.")
		return
	}
	for _, fh := range uploads {
		if !ingest.SupportedExtension(fh.Filename) {
			WriteErrorResponse(w, http.StatusBadRequest, "", "Unsupported file type: "+fh.Filename)
			return
		}
	}

	targetDir, errString := getTargetDirectory(handlerInstance.uploadDir)
	if errString != "" {
		logRH.Error("Couldn't get target directory", "err", errString)
		WriteErrorResponse(w, http.StatusInternalServerError, "", errString)
		return
	}

	files, err := saveUploads(targetDir, uploads)
	if err != nil {
		logRH.Error("Could not store uploads", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Storage error")
		return
	}

	newJob := jobModel.NewJob(utils.GetNewUUID(), traceIdFrom(r.Context()), question, files)
	accepted, err := CreateNewJob(r.Context(), newJob)
	if err != nil || !accepted {
		ingest.RemoveFiles(files, logRH)
		if err != nil {
			WriteErrorResponse(w, http.StatusInternalServerError, newJob.Id, "Could not queue the request")
			return
		}
		WriteErrorResponse(w, http.StatusServiceUnavailable, newJob.Id, "Server is busy, please try again later")
		return
	}
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob))
}

// GetStatusHandler godoc
// @Summary      Get job status
// @Description  Retrieves the current pipeline state of a job, its answer with the retrieved context once done, or its error.
// @Tags         Job Status
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Job ID "
// @Success      200  {object}  api.JobResponse   "Successful retrieval of job status"
// @Failure      404  {object}  api.JobResponse   "Job not found (returns Error object within JobResponse)"
// @Router       /status/{id} [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	//use chi get the url id
	idString := utils.GetChiURLParam(r, "id")
	result, isFound := validateId(idString, traceIdFrom(r.Context()))

	logRH.Debug("Get Status Request", "URL path", r.URL.Path)
	if !isFound {
		WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
		return
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
}
