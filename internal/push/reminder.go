package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dukerupert/hamfast/internal/status"
	"github.com/dukerupert/hamfast/internal/store"
)

// reminderHour is the local hour the daily restock digest goes out.
const reminderHour = 17

// Reminder sends a daily digest listing standard items that are neither at
// home nor on the shopping list.
type Reminder struct {
	mu      sync.RWMutex
	service *Service
	stores  *store.Stores
	logger  *slog.Logger

	lastSentDay string
	cancel      context.CancelFunc
	done        chan struct{}
}

func NewReminder(service *Service, stores *store.Stores, logger *slog.Logger) *Reminder {
	return &Reminder{
		service: service,
		stores:  stores,
		logger:  logger,
	}
}

// Start begins the reminder loop. No-op when VAPID keys are missing.
func (r *Reminder) Start(ctx context.Context) {
	if !r.service.Configured() {
		return
	}

	r.mu.Lock()
	ctx, r.cancel = context.WithCancel(ctx)
	r.done = make(chan struct{})
	r.mu.Unlock()

	go func() {
		defer close(r.done)
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.tick()
			}
		}
	}()
}

// Stop gracefully stops the reminder loop.
func (r *Reminder) Stop() {
	r.mu.RLock()
	cancel := r.cancel
	done := r.done
	r.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (r *Reminder) tick() {
	now := time.Now()
	if now.Hour() != reminderHour {
		return
	}

	day := now.Format("2006-01-02")
	r.mu.RLock()
	alreadySent := r.lastSentDay == day
	r.mu.RUnlock()
	if alreadySent {
		return
	}

	if err := r.SendDigest(); err != nil {
		r.logger.Error("restock digest failed", "error", err)
		return
	}

	r.mu.Lock()
	r.lastSentDay = day
	r.mu.Unlock()
}

// SendDigest sends the missing-standards digest to every subscription now.
// Subscriptions the push service reports expired are dropped.
func (r *Reminder) SendDigest() error {
	missing, err := r.missingStandards()
	if err != nil {
		return err
	}
	if len(missing) == 0 {
		return nil
	}

	subs, err := r.stores.Push.List()
	if err != nil {
		return fmt.Errorf("list subscriptions: %w", err)
	}

	payload := Payload{
		Title: "Restock reminder",
		Body:  digestBody(missing),
		URL:   "/standards",
		Tag:   "restock-digest",
	}

	for i := range subs {
		sub := &subs[i]
		if err := r.service.Send(sub, payload); err != nil {
			if errors.Is(err, ErrExpired) {
				if err := r.stores.Push.DeleteByEndpoint(sub.Endpoint); err != nil {
					r.logger.Warn("failed to drop expired subscription", "error", err)
				}
				continue
			}
			r.logger.Warn("push send failed", "error", err)
		}
	}

	r.logger.Info("sent restock digest", "missing", len(missing), "subscriptions", len(subs))
	return nil
}

func (r *Reminder) missingStandards() ([]string, error) {
	entries, err := r.stores.Standards.List()
	if err != nil {
		return nil, fmt.Errorf("list standards: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}
	shopping, err := r.stores.Shopping.List()
	if err != nil {
		return nil, fmt.Errorf("list shopping: %w", err)
	}
	pantry, err := r.stores.Pantry.List()
	if err != nil {
		return nil, fmt.Errorf("list pantry: %w", err)
	}

	var names []string
	for _, entry := range status.Missing(status.Standards(entries, shopping, pantry)) {
		names = append(names, entry.Name)
	}
	return names, nil
}

func digestBody(names []string) string {
	const maxNamed = 5
	if len(names) <= maxNamed {
		return "Out of stock: " + strings.Join(names, ", ")
	}
	return fmt.Sprintf("Out of stock: %s and %d more",
		strings.Join(names[:maxNamed], ", "), len(names)-maxNamed)
}
