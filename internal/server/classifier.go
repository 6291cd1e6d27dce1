package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/newspet/internal/bayes"
	"github.com/desertthunder/newspet/internal/formatter"
	"github.com/desertthunder/newspet/internal/models"
	"github.com/desertthunder/newspet/internal/shared"
	"github.com/desertthunder/newspet/internal/tasks"
	"github.com/goccy/go-json"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 8 << 20

// Engine is the part of [tasks.ClassifierEngine] the handler uses.
type Engine interface {
	Read(ctx context.Context, id int64) (*models.Snapshot, error)
	TrainBatch(ctx context.Context, id int64, docs []tasks.Document, progress chan<- tasks.ProgressUpdate) (*tasks.TrainResult, error)
}

// Lister lists stored records.
type Lister interface {
	List(ctx context.Context) ([]models.RecordInfo, error)
}

// ClassifyRequest is the body of a classify call.
type ClassifyRequest struct {
	Text string `json:"text"`
}

// TrainRequest is the body of a train call.
type TrainRequest struct {
	Documents []tasks.Document `json:"documents"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// ClassifierHandler serves classification, training and listing.
type ClassifierHandler struct {
	engine Engine
	lister Lister
	logger *log.Logger
	mux    *http.ServeMux
}

// NewClassifierHandler creates a handler. A nil logger discards output.
func NewClassifierHandler(engine Engine, lister Lister, logger *log.Logger) *ClassifierHandler {
	if logger == nil {
		logger = shared.NewDiscardLogger()
	}

	h := &ClassifierHandler{engine: engine, lister: lister, logger: logger, mux: http.NewServeMux()}
	h.mux.HandleFunc("GET /classifiers", h.list)
	h.mux.HandleFunc("POST /classifiers/{id}/classify", h.classify)
	h.mux.HandleFunc("POST /classifiers/{id}/train", h.train)

	return h
}

func (h *ClassifierHandler) Routes() []string {
	return []string{
		"GET /classifiers",
		"POST /classifiers/{id}/classify",
		"POST /classifiers/{id}/train",
	}
}

func (h *ClassifierHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *ClassifierHandler) list(w http.ResponseWriter, r *http.Request) {
	records, err := h.lister.List(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	if records == nil {
		records = []models.RecordInfo{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *ClassifierHandler) classify(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req ClassifyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	snap, err := h.engine.Read(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	if !snap.Available() {
		writeError(w, http.StatusNotFound, "classifier "+strconv.FormatInt(id, 10)+" has not been trained")
		return
	}

	model, ok := snap.Model.(*bayes.Classifier)
	if !ok {
		h.fail(w, errors.New("unsupported classifier type"))
		return
	}

	writeJSON(w, http.StatusOK, &formatter.ClassificationReport{ID: id, Result: model.Classify(req.Text)})
}

func (h *ClassifierHandler) train(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req TrainRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Documents) == 0 {
		writeError(w, http.StatusBadRequest, "documents are required")
		return
	}
	for i, doc := range req.Documents {
		if doc.Label == "" {
			writeError(w, http.StatusBadRequest, "document "+strconv.Itoa(i+1)+" has no label")
			return
		}
	}

	result, err := h.engine.TrainBatch(r.Context(), id, req.Documents, nil)
	if err != nil {
		h.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// fail maps err to a status code, logging server-side failures.
func (h *ClassifierHandler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, shared.ErrInvalidInput), errors.Is(err, shared.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.Canceled):
		writeError(w, http.StatusServiceUnavailable, "request cancelled")
	default:
		h.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid classifier id")
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
