package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/hamfast/internal/reconcile"
	"github.com/dukerupert/hamfast/internal/status"
	"github.com/dukerupert/hamfast/internal/store"
	"github.com/dukerupert/hamfast/internal/websocket"
)

type StandardHandler struct {
	engine *reconcile.Engine
	stores *store.Stores
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewStandardHandler(engine *reconcile.Engine, stores *store.Stores, hub *websocket.Hub, logger *slog.Logger) *StandardHandler {
	return &StandardHandler{engine: engine, stores: stores, hub: hub, logger: logger}
}

// List handles GET /api/standards. Each catalog entry carries a presence tag
// saying whether the item is at home, on the list, both, or missing.
func (h *StandardHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.stores.Standards.List()
	if err != nil {
		h.logger.Error("list standards", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list standards"})
		return
	}
	shopping, err := h.stores.Shopping.List()
	if err != nil {
		h.logger.Error("list shopping items", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list standards"})
		return
	}
	pantry, err := h.stores.Pantry.List()
	if err != nil {
		h.logger.Error("list pantry items", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list standards"})
		return
	}

	statuses := status.Standards(entries, shopping, pantry)
	if statuses == nil {
		statuses = []status.StandardStatus{}
	}
	writeJSON(w, http.StatusOK, statuses)
}

// AddToList handles POST /api/standards/{name}/add
func (h *StandardHandler) AddToList(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.PathValue("name"))
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	item, err := h.engine.AddStandardToList(name)
	if err != nil {
		h.logger.Error("add standard to list", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to add item"})
		return
	}
	if item == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "standard not found"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityShopping, "added", item.ID, item.Category))
	writeJSON(w, http.StatusCreated, item)
}

// Delete handles DELETE /api/standards/{name}. Removing a catalog entry also
// clears the standard flag on any matching list rows.
func (h *StandardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.PathValue("name"))
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	if err := h.stores.Standards.Delete(name); err != nil {
		h.logger.Error("delete standard", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete standard"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityStandard, "deleted", 0, ""))
	w.WriteHeader(http.StatusNoContent)
}
