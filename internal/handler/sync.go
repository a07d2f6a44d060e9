package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dukerupert/hamfast/internal/model"
	"github.com/dukerupert/hamfast/internal/store"
	syncmgr "github.com/dukerupert/hamfast/internal/sync"
)

// settableSyncKeys lists the settings clients may change. The passphrase salt
// is managed by the sync manager itself.
var settableSyncKeys = map[string]bool{
	"sync_enabled":        true,
	"sync_schedule_hour":  true,
	"sync_retention_days": true,
}

type SyncHandler struct {
	manager *syncmgr.Manager
	stores  *store.Stores
	logger  *slog.Logger
}

func NewSyncHandler(manager *syncmgr.Manager, stores *store.Stores, logger *slog.Logger) *SyncHandler {
	return &SyncHandler{manager: manager, stores: stores, logger: logger}
}

// Status handles GET /api/sync/status
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.Status())
}

// ListSnapshots handles GET /api/sync/snapshots
func (h *SyncHandler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	snapshots, err := h.stores.Snapshots.List(50)
	if err != nil {
		h.logger.Error("list snapshots", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list snapshots"})
		return
	}
	if snapshots == nil {
		snapshots = []model.Snapshot{}
	}
	writeJSON(w, http.StatusOK, snapshots)
}

// RunNow handles POST /api/sync/run
func (h *SyncHandler) RunNow(w http.ResponseWriter, r *http.Request) {
	id, err := h.manager.RunNow(r.Context())
	if err != nil {
		h.logger.Error("run snapshot", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]int64{"snapshot_id": id})
}

// Download handles GET /api/sync/snapshots/{id}/download and streams the
// decrypted database file.
func (h *SyncHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	data, err := h.manager.Download(r.Context(), id)
	if err != nil {
		h.logger.Error("download snapshot", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to download snapshot"})
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="snapshot-%d.db"`, id))
	w.Write(data)
}

// UpdateSettings handles PUT /api/settings/sync
func (h *SyncHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	for key, value := range req {
		if !settableSyncKeys[key] {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("unknown setting %q", key)})
			return
		}
		if err := h.stores.Settings.Set(key, value); err != nil {
			h.logger.Error("update setting", "key", key, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update settings"})
			return
		}
	}

	settings, err := h.stores.Settings.GetSyncSettings()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to read settings"})
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// GetSettings handles GET /api/settings/sync
func (h *SyncHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.stores.Settings.GetSyncSettings()
	if err != nil {
		h.logger.Error("get sync settings", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to read settings"})
		return
	}
	writeJSON(w, http.StatusOK, settings)
}
