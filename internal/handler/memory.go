package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/hamfast/internal/model"
	"github.com/dukerupert/hamfast/internal/store"
)

const defaultSuggestLimit = 10

type MemoryHandler struct {
	stores *store.Stores
	logger *slog.Logger
}

func NewMemoryHandler(stores *store.Stores, logger *slog.Logger) *MemoryHandler {
	return &MemoryHandler{stores: stores, logger: logger}
}

// Suggest handles GET /api/memory/suggest?q=<prefix>&limit=<n>
func (h *MemoryHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("q")

	limit := defaultSuggestLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = n
	}

	entries, err := h.stores.Memory.Suggest(prefix, limit)
	if err != nil {
		h.logger.Error("memory suggest", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to suggest"})
		return
	}
	if entries == nil {
		entries = []model.MemoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// Get handles GET /api/memory/{name}
func (h *MemoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	entry, err := h.stores.Memory.Get(r.PathValue("name"))
	if err != nil {
		h.logger.Error("memory get", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get entry"})
		return
	}
	if entry == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no memory for name"})
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
