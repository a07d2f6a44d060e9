package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/dukerupert/hamfast/internal/blob"
	"github.com/dukerupert/hamfast/internal/model"
	"github.com/dukerupert/hamfast/internal/store"
	"github.com/dukerupert/hamfast/internal/websocket"
)

// maxPhotoBytes caps journal photo uploads at 10 MiB.
const maxPhotoBytes = 10 << 20

type JournalHandler struct {
	stores *store.Stores
	blobs  blob.Store
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewJournalHandler(stores *store.Stores, blobs blob.Store, hub *websocket.Hub, logger *slog.Logger) *JournalHandler {
	return &JournalHandler{stores: stores, blobs: blobs, hub: hub, logger: logger}
}

// List handles GET /api/journal?limit=<n>
func (h *JournalHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = n
	}

	entries, err := h.stores.Journal.ListRecent(limit)
	if err != nil {
		h.logger.Error("list journal entries", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list entries"})
		return
	}
	if entries == nil {
		entries = []model.JournalEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// Create handles POST /api/journal as multipart form data with fields text,
// tags and an optional photo file.
func (h *JournalHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid form data"})
		return
	}

	text := strings.TrimSpace(r.FormValue("text"))
	if text == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "text is required"})
		return
	}
	tags := strings.TrimSpace(r.FormValue("tags"))

	var photoBlobID *string
	file, header, err := r.FormFile("photo")
	if err == nil {
		defer file.Close()
		if h.blobs == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "photo storage not configured"})
			return
		}
		id, err := h.blobs.Upload(r.Context(), header.Filename, file, header.Size)
		if err != nil {
			h.logger.Error("upload journal photo", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to store photo"})
			return
		}
		photoBlobID = &id
	} else if !errors.Is(err, http.ErrMissingFile) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid photo"})
		return
	}

	entry, err := h.stores.Journal.Create(text, tags, photoBlobID)
	if err != nil {
		h.logger.Error("create journal entry", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create entry"})
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityJournal, "added", entry.ID, ""))
	writeJSON(w, http.StatusCreated, entry)
}

// Photo handles GET /api/journal/{id}/photo
func (h *JournalHandler) Photo(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	entry, err := h.stores.Journal.GetByID(id)
	if err != nil {
		h.logger.Error("get journal entry", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get entry"})
		return
	}
	if entry == nil || entry.PhotoBlobID == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no photo"})
		return
	}
	if h.blobs == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "photo storage not configured"})
		return
	}

	rc, err := h.blobs.Download(r.Context(), *entry.PhotoBlobID)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no photo"})
			return
		}
		h.logger.Error("download journal photo", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get photo"})
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	io.Copy(w, rc)
}

// Delete handles DELETE /api/journal/{id}. The photo blob goes too.
func (h *JournalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	entry, err := h.stores.Journal.GetByID(id)
	if err != nil {
		h.logger.Error("get journal entry", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get entry"})
		return
	}
	if entry == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "entry not found"})
		return
	}

	if err := h.stores.Journal.Delete(id); err != nil {
		h.logger.Error("delete journal entry", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete entry"})
		return
	}

	if entry.PhotoBlobID != nil && h.blobs != nil {
		if err := h.blobs.Delete(r.Context(), *entry.PhotoBlobID); err != nil {
			h.logger.Warn("failed to delete photo blob", "error", err)
		}
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityJournal, "deleted", id, ""))
	w.WriteHeader(http.StatusNoContent)
}
