package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	services "github.com/casedocsearch/ingest-be/service"
	"github.com/casedocsearch/ingest-be/types"
)

type IngestHandler struct {
	ingestService *services.IngestService
	wsService     *services.WebSocketService
}

func NewIngestHandler(ingestService *services.IngestService, wsService *services.WebSocketService) *IngestHandler {
	return &IngestHandler{
		ingestService: ingestService,
		wsService:     wsService,
	}
}

// IngestDocumentHandler accepts a multipart upload with a "file" part and a
// "metadata" JSON part, runs the ingestion pipeline and streams progress
// back as server-sent events. The final event carries the processed
// document summary or the failure.
func (h *IngestHandler) IngestDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.sendError(w, "Invalid file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	metadata := r.FormValue("metadata")
	var req types.IngestRequest
	if err := json.Unmarshal([]byte(metadata), &req); err != nil {
		h.sendError(w, "Invalid metadata", http.StatusBadRequest)
		return
	}
	if req.SourceFileName == "" {
		req.SourceFileName = header.Filename
	}

	const maxSize = 50 << 20
	if header.Size > maxSize {
		h.sendError(w, "File too large", http.StatusBadRequest)
		return
	}

	path, err := h.ingestService.SaveUpload(header)
	if err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.sendError(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	statusChan := make(chan types.IngestStatus)
	errChan := make(chan error)
	go func() {
		_, err := h.ingestService.IngestFile(r.Context(), path, req, statusChan)
		errChan <- err
	}()

	clientGone := r.Context().Done()
	for {
		select {
		case <-clientGone:
			return // Client disconnected
		case status := <-statusChan:
			if h.wsService != nil {
				h.wsService.Broadcast(status)
			}
			h.sendEvent(w, flusher, status)
		case err := <-errChan:
			if err != nil {
				log.Error().Err(err).Str("file", req.SourceFileName).Msg("ingestion failed")
				h.sendEvent(w, flusher, types.IngestStatus{
					Stage:   types.IngestStageFailed,
					Message: err.Error(),
				})
			}
			return
		}
	}
}

func (h *IngestHandler) sendEvent(w http.ResponseWriter, flusher http.Flusher, status types.IngestStatus) {
	jsonStatus, err := json.Marshal(status)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", jsonStatus)
	flusher.Flush()
}

func (h *IngestHandler) sendError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	res := types.DataResponse{
		Status:  false,
		Message: message,
	}
	json.NewEncoder(w).Encode(res)
}
