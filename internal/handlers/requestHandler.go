package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/intigra/ragapi/internal/adapter"
	"github.com/intigra/ragapi/internal/adapter/utils"
	"github.com/intigra/ragapi/internal/api"
	"github.com/intigra/ragapi/internal/config"
	"github.com/intigra/ragapi/pkg/logger_i"
)

var logRH *logger_i.Logger

// technically i dont need this
// but i want to eventually remove jobHandler from handlers and set it in another package
// so in anticipation for that this struct exists
type newJobData struct {
	id      string
	path    string
	traceId string
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	return
}

// PostIngestHandler godoc
// @Summary      Queue a document ingestion job
// @Description  Accepts a file or directory path on the server, registers a background ingestion job, and returns a job ID to track status.
// @Tags         Ingestion
// @Accept       json
// @Produce      json
// @Param        request  body      api.IngestRequest    true  "Path to a document or a directory of documents"
// @Success      202      {object}  api.InitJobResponse  "Job successfully created"
// @Failure      400      {object}  api.JobResponse      "Invalid request data or missing path"
// @Router       /ingest [post]
func PostIngestHandler(w http.ResponseWriter, request *http.Request) {

	if validateContext(request.Context()) {

		var requestData api.IngestRequest
		defer func(Body io.ReadCloser) {
			err := Body.Close()
			if err != nil {
				logRH.Error("Couldn't close the Ingest handler reader :", err)
			}
		}(request.Body)
		if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil || strings.TrimSpace(requestData.Path) == "" {
			logRH.Warn("Bad Ingest Request: ", "error:", err, "request data:", requestData)
			WriteErrorResponse(w, http.StatusBadRequest, "", "path is required")
			return
		}

		//fail fast on paths that don't exist rather than queueing a doomed job
		if _, err := os.Stat(requestData.Path); err != nil {
			logRH.Warn("Ingest path not found: ", "path:", requestData.Path)
			WriteErrorResponse(w, http.StatusBadRequest, "", "path does not exist: "+requestData.Path)
			return
		}

		newData := newJobData{
			id:      utils.GetNewUUID(),
			path:    requestData.Path,
			traceId: request.Context().Value(config.TRACE_ID_KEY).(string),
		}
		if err := CreateNewJob(newData); err != nil {
			WriteErrorResponse(w, http.StatusInternalServerError, newData.id, "Could not register job")
			return
		}
		writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newData.id))
		return
	}
	logRH.Warn("Invalid Context by request ", request.RemoteAddr)
}

// GetStatusHandler godoc
// @Summary      Get job status
// @Description  Retrieves the current status of a specific job using its ID.
// @Tags         Job Status
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Job ID "
// @Success      200  {object}  api.JobResponse   "The current status of the job"
// @Failure      404  {object}  api.JobResponse   "Job not found (returns Error object within JobResponse)"
// @Router       /status/{id} [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		//use chi get the url id
		idString := utils.GetChiURLParam(r, "id")
		result, isFound := validateId(idString, r.Context().Value(config.TRACE_ID_KEY).(string))

		logRH.Debug("Get Status Request:", "URL path", r.URL.Path)
		if !isFound {
			WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
			return
		}

		writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
	}
}

// GetJobsHandler godoc
// @Summary      List jobs
// @Description  Lists all known jobs, newest first.
// @Tags         Job Status
// @Produce      json
// @Success      200  {object}  api.JobListResponse  "All known jobs"
// @Failure      500  {object}  api.JobResponse      "Registry error"
// @Router       /jobs [get]
func GetJobsHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		jobs, err := ListAllJobs(r.Context().Value(config.TRACE_ID_KEY).(string))
		if err != nil {
			logRH.Error("Could not list jobs", "error", err)
			WriteErrorResponse(w, http.StatusInternalServerError, "", "Could not list jobs")
			return
		}
		writeJsonResponse(w, http.StatusOK, adapter.ToJobListResponse(jobs))
	}
}

// PostQueryHandler godoc
// @Summary      Answer a question over the ingested documents
// @Description  Embeds the query, retrieves and reranks matching chunks, and returns a grounded answer with sources.
// @Tags         Query
// @Accept       json
// @Produce      json
// @Param        request  body      api.QueryRequest   true  "Question, optional top_k and document_id filter"
// @Success      200      {object}  api.QueryResponse  "Answer with sources and metadata"
// @Failure      400      {object}  api.JobResponse    "Invalid request data"
// @Failure      503      {object}  api.JobResponse    "A model dependency is unavailable"
// @Router       /query [post]
func PostQueryHandler(w http.ResponseWriter, request *http.Request) {
	if validateContext(request.Context()) {

		var requestData api.QueryRequest
		defer func(Body io.ReadCloser) {
			err := Body.Close()
			if err != nil {
				logRH.Error("Couldn't close the Query handler reader :", err)
			}
		}(request.Body)
		if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil {
			logRH.Warn("Bad Query Request: ", "error:", err)
			WriteErrorResponse(w, http.StatusBadRequest, "", "Bad Request")
			return
		}
		if requestData.TopK == 0 {
			requestData.TopK = config.DefaultTopK
		}

		result, err := RunQuery(request.Context(), requestData.Query, requestData.TopK, requestData.DocumentId)
		if err != nil {
			logRH.Warn("Query failed: ", "error:", err)
			WriteErrorResponse(w, httpCodeForError(err), "", err.Error())
			return
		}
		writeJsonResponse(w, http.StatusOK, adapter.ToQueryResponse(result))
		return
	}
	logRH.Warn("Invalid Context by request ", request.RemoteAddr)
}
