// Package server wires the stores, engine, and handlers into one HTTP
// surface.
package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/hamfast/internal/blob"
	"github.com/dukerupert/hamfast/internal/config"
	"github.com/dukerupert/hamfast/internal/handler"
	"github.com/dukerupert/hamfast/internal/middleware"
	"github.com/dukerupert/hamfast/internal/push"
	"github.com/dukerupert/hamfast/internal/reconcile"
	"github.com/dukerupert/hamfast/internal/store"
	syncmgr "github.com/dukerupert/hamfast/internal/sync"
	ws "github.com/dukerupert/hamfast/internal/websocket"
)

type Server struct {
	db     *sql.DB
	stores *store.Stores
	hub    *ws.Hub
	logger *slog.Logger

	shoppingH *handler.ShoppingHandler
	pantryH   *handler.PantryHandler
	standardH *handler.StandardHandler
	memoryH   *handler.MemoryHandler
	journalH  *handler.JournalHandler
	syncH     *handler.SyncHandler
	pushH     *handler.PushHandler

	syncManager  *syncmgr.Manager
	pushService  *push.Service
	pushReminder *push.Reminder
}

func New(db *sql.DB, cfg *config.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))
	stores := store.New(db)
	engine := reconcile.New(stores, logger.With("component", "reconcile"))

	s3cfg := blob.S3Config{
		Endpoint:  cfg.Sync.S3Endpoint,
		Bucket:    cfg.Sync.S3Bucket,
		Region:    cfg.Sync.S3Region,
		AccessKey: cfg.Sync.S3Access,
		SecretKey: cfg.Sync.S3Secret,
	}

	var blobs blob.Store
	if s3cfg.Configured() {
		blobs = blob.NewS3Store(s3cfg)
	}

	syncMgr := syncmgr.NewManager(syncmgr.Config{
		S3:         s3cfg,
		DBPath:     cfg.DB.Path,
		Passphrase: cfg.Sync.Passphrase,
	}, db, stores.Snapshots, stores.Settings, logger.With("component", "sync"), func(st syncmgr.Status) {
		hub.Broadcast(ws.Message{
			Type:   "sync_status",
			Entity: "sync",
			Action: string(st.State),
		})
	})

	pushSvc := push.NewService(cfg.Push.VAPIDPublicKey, cfg.Push.VAPIDPrivateKey)
	pushReminder := push.NewReminder(pushSvc, stores, logger.With("component", "push"))

	return &Server{
		db:           db,
		stores:       stores,
		hub:          hub,
		logger:       logger,
		shoppingH:    handler.NewShoppingHandler(engine, stores, hub, logger.With("component", "shopping")),
		pantryH:      handler.NewPantryHandler(engine, stores, hub, logger.With("component", "pantry")),
		standardH:    handler.NewStandardHandler(engine, stores, hub, logger.With("component", "standard")),
		memoryH:      handler.NewMemoryHandler(stores, logger.With("component", "memory")),
		journalH:     handler.NewJournalHandler(stores, blobs, hub, logger.With("component", "journal")),
		syncH:        handler.NewSyncHandler(syncMgr, stores, logger.With("component", "sync_handler")),
		pushH:        handler.NewPushHandler(stores, pushSvc, pushReminder, logger.With("component", "push_handler")),
		syncManager:  syncMgr,
		pushService:  pushSvc,
		pushReminder: pushReminder,
	}
}

// SyncManager returns the snapshot sync manager for lifecycle control.
func (s *Server) SyncManager() *syncmgr.Manager {
	return s.syncManager
}

// PushReminder returns the restock reminder for lifecycle control.
func (s *Server) PushReminder() *push.Reminder {
	return s.pushReminder
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// Shopping list
	mux.HandleFunc("GET /api/shopping", s.shoppingH.List)
	mux.HandleFunc("POST /api/shopping", s.shoppingH.Create)
	mux.HandleFunc("DELETE /api/shopping/{id}", s.shoppingH.Delete)
	mux.HandleFunc("POST /api/shopping/{id}/bought", s.shoppingH.MarkBought)
	mux.HandleFunc("POST /api/shopping/{id}/standard", s.shoppingH.ToggleStandard)

	// Pantry
	mux.HandleFunc("GET /api/pantry", s.pantryH.List)
	mux.HandleFunc("POST /api/pantry/{id}/consume", s.pantryH.Consume)
	mux.HandleFunc("PUT /api/pantry/{id}/category", s.pantryH.Move)
	mux.HandleFunc("POST /api/pantry/{id}/standard", s.pantryH.ToggleStandard)
	mux.HandleFunc("DELETE /api/pantry/{id}", s.pantryH.Delete)

	// Standard catalog
	mux.HandleFunc("GET /api/standards", s.standardH.List)
	mux.HandleFunc("POST /api/standards/{name}/add", s.standardH.AddToList)
	mux.HandleFunc("DELETE /api/standards/{name}", s.standardH.Delete)

	// Memory index
	mux.HandleFunc("GET /api/memory/suggest", s.memoryH.Suggest)
	mux.HandleFunc("GET /api/memory/{name}", s.memoryH.Get)

	// Journal
	mux.HandleFunc("GET /api/journal", s.journalH.List)
	mux.HandleFunc("POST /api/journal", s.journalH.Create)
	mux.HandleFunc("GET /api/journal/{id}/photo", s.journalH.Photo)
	mux.HandleFunc("DELETE /api/journal/{id}", s.journalH.Delete)

	// Snapshot sync
	mux.HandleFunc("GET /api/sync/status", s.syncH.Status)
	mux.HandleFunc("GET /api/sync/snapshots", s.syncH.ListSnapshots)
	mux.HandleFunc("POST /api/sync/run", s.syncH.RunNow)
	mux.HandleFunc("GET /api/sync/snapshots/{id}/download", s.syncH.Download)
	mux.HandleFunc("GET /api/settings/sync", s.syncH.GetSettings)
	mux.HandleFunc("PUT /api/settings/sync", s.syncH.UpdateSettings)

	// Push notifications
	mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
	mux.HandleFunc("DELETE /api/push/subscribe", s.pushH.Unsubscribe)
	mux.HandleFunc("GET /api/push/vapid-key", s.pushH.GetVAPIDKey)
	mux.HandleFunc("POST /api/push/digest", s.pushH.SendDigest)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.Handler(s.hub, s.logger.With("component", "websocket")))

	mux.HandleFunc("GET /health", s.healthHandler)

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
