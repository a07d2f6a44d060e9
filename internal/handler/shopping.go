package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dukerupert/hamfast/internal/reconcile"
	"github.com/dukerupert/hamfast/internal/status"
	"github.com/dukerupert/hamfast/internal/store"
	"github.com/dukerupert/hamfast/internal/websocket"
)

type ShoppingHandler struct {
	engine *reconcile.Engine
	stores *store.Stores
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewShoppingHandler(engine *reconcile.Engine, stores *store.Stores, hub *websocket.Hub, logger *slog.Logger) *ShoppingHandler {
	return &ShoppingHandler{engine: engine, stores: stores, hub: hub, logger: logger}
}

type addItemRequest struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Category string `json:"category"`
	Standard bool   `json:"standard"`
}

// List handles GET /api/shopping
func (h *ShoppingHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.stores.Shopping.List()
	if err != nil {
		h.logger.Error("list shopping items", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list items"})
		return
	}
	groups := status.GroupShopping(items)
	if groups == nil {
		groups = []status.ShoppingGroup{}
	}
	writeJSON(w, http.StatusOK, groups)
}

// Create handles POST /api/shopping
func (h *ShoppingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	item, err := h.engine.AddToList(reconcile.AddParams{
		Name:     req.Name,
		Quantity: req.Quantity,
		Category: req.Category,
		Standard: req.Standard,
	})
	if err != nil {
		if errors.Is(err, reconcile.ErrEmptyName) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
			return
		}
		h.logger.Error("add shopping item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to add item"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityShopping, "added", item.ID, item.Category))
	writeJSON(w, http.StatusCreated, item)
}

// Delete handles DELETE /api/shopping/{id}
func (h *ShoppingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.stores.Shopping.Delete(id); err != nil {
		h.logger.Error("delete shopping item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete item"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityShopping, "deleted", id, ""))
	w.WriteHeader(http.StatusNoContent)
}

// MarkBought handles POST /api/shopping/{id}/bought
func (h *ShoppingHandler) MarkBought(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	pantryItem, err := h.engine.MarkBought(id)
	if err != nil {
		h.logger.Error("mark bought", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to mark bought"})
		return
	}
	if pantryItem == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityShopping, "bought", id, pantryItem.Category))
	writeJSON(w, http.StatusOK, pantryItem)
}

// ToggleStandard handles POST /api/shopping/{id}/standard
func (h *ShoppingHandler) ToggleStandard(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	item, err := h.engine.ToggleShoppingStandard(id)
	if err != nil {
		h.logger.Error("toggle shopping standard", "error", err)
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
