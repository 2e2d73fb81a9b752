package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"ragworks.io/askbridge/internal/core"
)

type APIHandler struct {
	ingestService *core.IngestService
	answerService *core.AnswerService
}

func NewAPIHandler(ingest *core.IngestService, answer *core.AnswerService) *APIHandler {
	return &APIHandler{
		ingestService: ingest,
		answerService: answer,
	}
}

type IngestRequest struct {
	Text    string `json:"text"`
	ChunkID string `json:"chunkId,omitempty"`
}

type IngestResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Text    string `json:"text"` // preview, truncated to 100 characters
}

type AskRequest struct {
	Question   string `json:"question"`
	DocumentID string `json:"documentID"`
}

type AskResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type ErrorResponse struct {
	Error    string `json:"error"`
	Details  string `json:"details,omitempty"`
	Question string `json:"question,omitempty"`
}

func (h *APIHandler) IngestHandler(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}

	result, err := h.ingestService.Ingest(r.Context(), req.Text, req.ChunkID)
	if err != nil {
		h.writeServiceError(w, r, err, "")
		return
	}

	writeJSON(w, http.StatusCreated, IngestResponse{Success: true, ID: result.ID, Text: result.Preview})
}

func (h *APIHandler) AskHandler(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}

	result, err := h.answerService.Answer(r.Context(), req.Question, req.DocumentID)
	if err != nil {
		h.writeServiceError(w, r, err, req.Question)
		return
	}

	writeJSON(w, http.StatusOK, AskResponse{Question: result.Question, Answer: result.Answer})
}

func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeServiceError maps the service error taxonomy to HTTP statuses.
// A no-context outcome is a valid retrieval result and is not logged as
// an error.
func (h *APIHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, question string) {
	var validationErr *core.ValidationError
	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: validationErr.Message})
	case errors.Is(err, core.ErrNoRelevantContext):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "No relevant context found", Question: question})
	default:
		log.Printf("Error handling %s: %v", r.URL.Path, err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal server error", Details: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
