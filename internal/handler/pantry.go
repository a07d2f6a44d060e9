package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/hamfast/internal/reconcile"
	"github.com/dukerupert/hamfast/internal/status"
	"github.com/dukerupert/hamfast/internal/store"
	"github.com/dukerupert/hamfast/internal/websocket"
)

type PantryHandler struct {
	engine *reconcile.Engine
	stores *store.Stores
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewPantryHandler(engine *reconcile.Engine, stores *store.Stores, hub *websocket.Hub, logger *slog.Logger) *PantryHandler {
	return &PantryHandler{engine: engine, stores: stores, hub: hub, logger: logger}
}

// List handles GET /api/pantry
func (h *PantryHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.stores.Pantry.List()
	if err != nil {
		h.logger.Error("list pantry items", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list items"})
		return
	}
	groups := status.GroupPantry(items)
	if groups == nil {
		groups = []status.PantryGroup{}
	}
	writeJSON(w, http.StatusOK, groups)
}

// Consume handles POST /api/pantry/{id}/consume
func (h *PantryHandler) Consume(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req struct {
		QuantityUsed string `json:"quantity_used"`
		AddBack      bool   `json:"add_back"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	result, err := h.engine.Consume(id, req.QuantityUsed, req.AddBack)
	if err != nil {
		h.logger.Error("consume pantry item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to consume item"})
		return
	}
	if result == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityPantry, "consumed", id, result.Consumed.Category))
	writeJSON(w, http.StatusOK, result)
}

// Move handles PUT /api/pantry/{id}/category
func (h *PantryHandler) Move(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req struct {
		Category string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	item, err := h.engine.MovePantryCategory(id, req.Category)
	if err != nil {
		h.logger.Error("move pantry item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to move item"})
		return
	}
	if item == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityPantry, "moved", item.ID, item.Category))
	writeJSON(w, http.StatusOK, item)
}

// Delete handles DELETE /api/pantry/{id}
func (h *PantryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.stores.Pantry.Delete(id); err != nil {
		h.logger.Error("delete pantry item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete item"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityPantry, "deleted", id, ""))
	w.WriteHeader(http.StatusNoContent)
}

// ToggleStandard handles POST /api/pantry/{id}/standard
func (h *PantryHandler) ToggleStandard(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	item, err := h.engine.TogglePantryStandard(id)
	if err != nil {
		h.logger.Error("toggle pantry standard", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to toggle standard"})
		return
	}
	if item == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityStandard, "toggled", id, item.Category))
	writeJSON(w, http.StatusOK, item)
}
