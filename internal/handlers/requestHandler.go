package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/akolanti/docqa/internal/adapter"
	"github.com/akolanti/docqa/internal/api"
	"github.com/akolanti/docqa/internal/config"
	"github.com/akolanti/docqa/internal/rag"
)

type RequestHandler struct {
	service       rag.Service
	maxUploadSize int64
}

func NewRequestHandler(service rag.Service) *RequestHandler {
	return &RequestHandler{service: service, maxUploadSize: config.MaxUploadSize}
}

// GetHealth godoc
// @Summary      Pipeline status
// @Description  Reports whether the pipeline is idle, how many documents and chunks are indexed and the history length.
// @Tags         Maintenance
// @Produce      json
// @Success      200  {object}  api.HealthResponse
// @Failure      503  {object}  api.HealthResponse  "The vector index cannot be read"
// @Router       /health [get]
func (h *RequestHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	res := adapter.ToHealthResponse(h.service.Status(r.Context()))
	code := http.StatusOK
	if res.IndexError != "" {
		code = http.StatusServiceUnavailable
	}
	writeJsonResponse(w, code, res)
}

// ChatHandler godoc
// @Summary      Ask a question
// @Description  Answers from the ingested documents and the conversation so far. Sources list the document and page of every chunk given to the model.
// @Tags         Messaging
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      api.ChatRequest    true  "Question"
// @Success      200      {object}  api.ChatResponse
// @Failure      400      {object}  api.ErrorResponse  "Empty question or malformed body"
// @Failure      502      {object}  api.ErrorResponse  "The language model call failed, resend later"
// @Failure      503      {object}  api.ErrorResponse  "The vector index was unavailable"
// @Router       /chat [post]
func (h *RequestHandler) ChatHandler(w http.ResponseWriter, request *http.Request) {
	if !validateContext(request.Context()) {
		return
	}

	var requestData api.ChatRequest
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logRH.Error("Couldn't close the Chat handler reader", "error", err)
		}
	}(request.Body)
	if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil {
		logRH.WithTrace(request.Context()).Warn("Bad Chat Request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, traceId(request.Context()), "Bad Request")
		return
	}

	answer, err := h.service.Ask(request.Context(), requestData.Message)
	if err != nil {
		writeRagError(w, request, traceId(request.Context()), err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToChatResponse(strings.TrimSpace(requestData.Message), answer))
}

// GetHistoryHandler godoc
// @Summary      Conversation history
// @Description  Every turn of the current session, oldest first.
// @Tags         Messaging
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  api.HistoryResponse
// @Router       /history [get]
func (h *RequestHandler) GetHistoryHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, adapter.ToHistoryResponse(h.service.History()))
}

// DeleteHistoryHandler godoc
// @Summary      Clear conversation history
// @Tags         Messaging
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  api.MessageResponse
// @Router       /history [delete]
func (h *RequestHandler) DeleteHistoryHandler(w http.ResponseWriter, r *http.Request) {
	h.service.ClearHistory()
	logRH.WithTrace(r.Context()).Info("Conversation history cleared")
	writeJsonResponse(w, http.StatusOK, adapter.Message("conversation history cleared"))
}

// PostIngestHandler handles the uploading of documents for RAG ingestion.
// @Summary      Upload a document for ingestion
// @Description  Receives a file via multipart/form-data, stores it and indexes it before returning.
// @Tags         Ingestion
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        document_name  formData  string  false  "Stored file name, defaults to the uploaded file name"
// @Param        document       formData  file    true   "The PDF, DOCX, ODT, RTF or TXT file to upload"
// @Success      201  {object}  api.IngestResponse
// @Failure      400  {object}  api.ErrorResponse "Missing file, file too large, unsupported or unreadable document"
// @Failure      409  {object}  api.ErrorResponse "A document with this name is already ingested"
// @Failure      503  {object}  api.ErrorResponse "The vector index was unavailable"
// @Router       /ingest [post]
func (h *RequestHandler) PostIngestHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	//get the document the user uploads
	fileReader, fileMetadata, err := r.FormFile("document")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "Could not retrieve file")
		return
	}
	defer fileReader.Close()

	docName := strings.TrimSpace(r.FormValue("document_name"))
	if docName == "" {
		docName = fileMetadata.Filename
	}
	docName = filepath.Base(docName)

	res, err := h.service.IngestUpload(r.Context(), docName, fileReader)
	if err != nil {
		writeRagError(w, r, docName, err)
		return
	}
	writeJsonResponse(w, http.StatusCreated, adapter.ToIngestResponse(res))
}

// GetDocumentsHandler godoc
// @Summary      List ingested documents
// @Tags         Ingestion
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  api.DocumentListResponse
// @Router       /documents [get]
func (h *RequestHandler) GetDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, adapter.ToDocumentListResponse(h.service.Documents()))
}

// PostRepairHandler godoc
// @Summary      Repair the vector index
// @Description  Deletes and reinitialises the vector index. Every document has to be uploaded again afterwards.
// @Tags         Maintenance
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  api.MessageResponse
// @Failure      503  {object}  api.ErrorResponse
// @Router       /maintenance/repair [post]
func (h *RequestHandler) PostRepairHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RepairStore(r.Context()); err != nil {
		writeRagError(w, r, "", err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.Message("vector index rebuilt, upload your documents again"))
}

// DeleteDataHandler godoc
// @Summary      Delete all data
// @Description  Removes stored documents, the vector index and the conversation history.
// @Tags         Maintenance
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  api.MessageResponse
// @Failure      503  {object}  api.ErrorResponse
// @Router       /data [delete]
func (h *RequestHandler) DeleteDataHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearAllData(r.Context()); err != nil {
		writeRagError(w, r, "", err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.Message("all documents, embeddings and history deleted"))
}

// NotFoundHandler answers unknown routes in the API error format.
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteErrorResponse(w, http.StatusNotFound, "", "Not found")
}

func MethodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	WriteErrorResponse(w, http.StatusMethodNotAllowed, "", "Method not allowed")
}
