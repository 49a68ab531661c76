package handler

import (
	"encoding/json"
	"net/http"

	"github.com/casedocsearch/ingest-be/database"
	services "github.com/casedocsearch/ingest-be/service"
	"github.com/casedocsearch/ingest-be/types"
)

type SearchHandler struct {
	store         *database.ChunkStore
	ingestService *services.IngestService
}

func NewSearchHandler(store *database.ChunkStore, ingestService *services.IngestService) *SearchHandler {
	return &SearchHandler{
		store:         store,
		ingestService: ingestService,
	}
}

func (h *SearchHandler) HandleSearch() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if r.Method != http.MethodPost {
			h.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req types.SearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.sendError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.Query == "" {
			h.sendError(w, "Query must not be empty", http.StatusBadRequest)
			return
		}

		// Set default limit if not provided
		if req.Limit == 0 {
			req.Limit = 5
		}

		vector, err := h.ingestService.EmbedQuery(r.Context(), req.Query)
		if err != nil {
			h.sendError(w, "Failed to embed query: "+err.Error(), http.StatusInternalServerError)
			return
		}

		hits, err := h.store.SearchSimilar(r.Context(), vector, req.CaseRef, req.Limit)
		if err != nil {
			h.sendError(w, "Search failed: "+err.Error(), http.StatusInternalServerError)
			return
		}

		h.sendSuccess(w, hits)
	})
}

func (h *SearchHandler) sendError(w http.ResponseWriter, message string, status int) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(types.DataResponse{
		Status:  false,
		Message: message,
	})
}

func (h *SearchHandler) sendSuccess(w http.ResponseWriter, hits []types.SearchHit) {
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(types.DataResponse{
		Status: true,
		Data:   types.SearchResponse{Hits: hits},
	})
}
