// Package notify stores "order ready" notifications and relays ledger
// status events into them.
package notify

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"burguerclub-pos/internal/domain"
	"burguerclub-pos/internal/ledger"
	"burguerclub-pos/internal/storage"
	"burguerclub-pos/pkg/pubsub"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const recordKey = "notifications"

type Store struct {
	records *storage.RecordStore
	log     *zap.Logger
	now     func() time.Time

	mu            sync.Mutex
	notifications []domain.Notification // newest first
}

func NewStore(records *storage.RecordStore, bus *pubsub.Bus, log *zap.Logger) *Store {
	s := &Store{records: records, log: log, now: time.Now}
	s.reload()

	if bus != nil {
		bus.Subscribe("storage."+recordKey, func(pubsub.Event) { s.reload() })
		bus.Subscribe("poll.tick", func(pubsub.Event) { s.reload() })
	}
	return s
}

// Notifications returns a copy, newest first.
func (s *Store) Notifications() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Notification(nil), s.notifications...)
}

// UnreadCount returns the number of unread notifications.
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, n := range s.notifications {
		if !n.Read {
			count++
		}
	}
	return count
}

// Add prepends a notification, filling in its ID, timestamp and unread
// state.
func (s *Store) Add(n domain.Notification) (domain.Notification, error) {
	n.ID = uuid.NewString()
	n.CreatedAt = s.now()
	n.Read = false

	s.mu.Lock()
	s.notifications = append([]domain.Notification{n}, s.notifications...)
	snapshot := append([]domain.Notification(nil), s.notifications...)
	s.mu.Unlock()

	return n, s.records.Put(recordKey, snapshot)
}

// MarkRead marks one notification read; unknown IDs are a no-op.
func (s *Store) MarkRead(id string) error {
	s.mu.Lock()
	changed := false
	for i := range s.notifications {
		if s.notifications[i].ID == id && !s.notifications[i].Read {
			s.notifications[i].Read = true
			changed = true
			break
		}
	}
	snapshot := append([]domain.Notification(nil), s.notifications...)
	s.mu.Unlock()

	if !changed {
		return nil
	}
	return s.records.Put(recordKey, snapshot)
}

// MarkAllRead marks every notification read.
func (s *Store) MarkAllRead() error {
	s.mu.Lock()
	for i := range s.notifications {
		s.notifications[i].Read = true
	}
	snapshot := append([]domain.Notification(nil), s.notifications...)
	s.mu.Unlock()

	return s.records.Put(recordKey, snapshot)
}

// Clear drops all notifications.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.notifications = nil
	s.mu.Unlock()

	return s.records.Put(recordKey, []domain.Notification{})
}

func (s *Store) reload() {
	var stored []domain.Notification
	err := s.records.Get(recordKey, &stored)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Warn("notifications reload failed", zap.Error(err))
		}
		s.notifications = nil
		return
	}
	s.notifications = stored
}

// Relay fans ledger status events out into the notification store.
// Only the transition to ready produces a notification; everything else
// is ignored.
type Relay struct {
	store *Store
	log   *zap.Logger
}

func NewRelay(store *Store, bus *pubsub.Bus, log *zap.Logger) *Relay {
	r := &Relay{store: store, log: log}
	bus.Subscribe("order.status.updated", r.handle)
	return r
}

func (r *Relay) handle(event pubsub.Event) {
	status, ok := event.Payload.(ledger.StatusEvent)
	if !ok || status.To != domain.StatusReady {
		return
	}

	order := status.Order
	_, err := r.store.Add(domain.Notification{
		OrderID:     order.ID,
		OrderNumber: order.Number,
		WaiterName:  order.WaiterName,
		Message:     fmt.Sprintf("Pedido #%d está listo para recoger", order.Number),
	})
	if err != nil {
		r.log.Error("order-ready notification failed", zap.Int64("number", order.Number), zap.Error(err))
		return
	}
	r.log.Info("order ready", zap.Int64("number", order.Number), zap.String("waiter", order.WaiterName))
}
