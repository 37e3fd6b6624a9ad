// Package menu manages the sellable item catalog. The ledger reads it to
// resolve order lines; everything else is plain record management for
// the admin menu screen.
package menu

import (
	"errors"
	"sync"

	"burguerclub-pos/internal/domain"
	"burguerclub-pos/internal/storage"
	"burguerclub-pos/pkg/pubsub"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const recordKey = "menu-items"

var (
	ErrNegativePrice   = errors.New("menu: price must not be negative")
	ErrInvalidCategory = errors.New("menu: unknown category")
	ErrNameRequired    = errors.New("menu: name is required")
)

type Store struct {
	records *storage.RecordStore
	log     *zap.Logger

	mu    sync.Mutex
	items []domain.MenuItem
}

func NewStore(records *storage.RecordStore, bus *pubsub.Bus, log *zap.Logger) *Store {
	s := &Store{records: records, log: log}
	s.reload()

	if bus != nil {
		bus.Subscribe("storage."+recordKey, func(pubsub.Event) { s.reload() })
		bus.Subscribe("poll.tick", func(pubsub.Event) { s.reload() })
	}
	return s
}

// Items returns a copy of the catalog.
func (s *Store) Items() []domain.MenuItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.MenuItem(nil), s.items...)
}

// ItemByID resolves one catalog entry; ok is false for unknown IDs.
func (s *Store) ItemByID(id string) (domain.MenuItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return domain.MenuItem{}, false
}

// Add validates and appends a new catalog entry, returning its generated
// ID.
func (s *Store) Add(item domain.MenuItem) (string, error) {
	if err := validate(item); err != nil {
		return "", err
	}
	item.ID = uuid.NewString()

	s.mu.Lock()
	s.items = append(s.items, item)
	snapshot := append([]domain.MenuItem(nil), s.items...)
	s.mu.Unlock()

	return item.ID, s.records.Put(recordKey, snapshot)
}

// UpdateItem replaces the fields of an existing entry; unknown IDs are a
// no-op.
func (s *Store) UpdateItem(id string, item domain.MenuItem) error {
	if err := validate(item); err != nil {
		return err
	}

	s.mu.Lock()
	changed := false
	for i := range s.items {
		if s.items[i].ID == id {
			item.ID = id
			s.items[i] = item
			changed = true
			break
		}
	}
	snapshot := append([]domain.MenuItem(nil), s.items...)
	s.mu.Unlock()

	if !changed {
		return nil
	}
	return s.records.Put(recordKey, snapshot)
}

// Delete removes an entry; unknown IDs are a no-op. Orders keep their
// own snapshot of every line's menu item, so history is unaffected.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	kept := make([]domain.MenuItem, 0, len(s.items))
	for _, item := range s.items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	changed := len(kept) != len(s.items)
	s.items = kept
	snapshot := append([]domain.MenuItem(nil), s.items...)
	s.mu.Unlock()

	if !changed {
		return nil
	}
	return s.records.Put(recordKey, snapshot)
}

// ToggleAvailability flips whether an item can be ordered.
func (s *Store) ToggleAvailability(id string) error {
	s.mu.Lock()
	changed := false
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Available = !s.items[i].Available
			changed = true
			break
		}
	}
	snapshot := append([]domain.MenuItem(nil), s.items...)
	s.mu.Unlock()

	if !changed {
		return nil
	}
	return s.records.Put(recordKey, snapshot)
}

func (s *Store) reload() {
	var stored []domain.MenuItem
	err := s.records.Get(recordKey, &stored)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Warn("menu reload failed", zap.Error(err))
		}
		s.items = DefaultCatalog()
		return
	}
	s.items = stored
}

func validate(item domain.MenuItem) error {
	if item.Name == "" {
		return ErrNameRequired
	}
	if item.Price.IsNegative() {
		return ErrNegativePrice
	}
	if !item.Category.Valid() {
		return ErrInvalidCategory
	}
	return nil
}

// DefaultCatalog is the built-in menu used until the admin saves one.
func DefaultCatalog() []domain.MenuItem {
	price := func(v string) decimal.Decimal {
		d, _ := decimal.NewFromString(v)
		return d
	}
	return []domain.MenuItem{
		{ID: "menu-1", Name: "Clásica", Description: "Carne de res, lechuga, tomate y queso", Price: price("95.00"), Category: domain.CategoryMain, Image: "/images/clasica.jpg", Available: true},
		{ID: "menu-2", Name: "Doble Queso", Description: "Doble carne con queso cheddar fundido", Price: price("125.00"), Category: domain.CategoryMain, Image: "/images/doble-queso.jpg", Available: true},
		{ID: "menu-3", Name: "Papas Fritas", Description: "Papas a la francesa con sal de mar", Price: price("45.00"), Category: domain.CategorySide, Image: "/images/papas.jpg", Available: true},
		{ID: "menu-4", Name: "Aros de Cebolla", Description: "Aros empanizados con salsa de la casa", Price: price("55.00"), Category: domain.CategorySide, Image: "/images/aros.jpg", Available: true},
		{ID: "menu-5", Name: "Refresco", Description: "Refresco de lata 355ml", Price: price("25.00"), Category: domain.CategoryDrink, Image: "/images/refresco.jpg", Available: true},
		{ID: "menu-6", Name: "Malteada", Description: "Malteada de vainilla, fresa o chocolate", Price: price("60.00"), Category: domain.CategoryDrink, Image: "/images/malteada.jpg", Available: true},
		{ID: "menu-7", Name: "Brownie", Description: "Brownie de chocolate con nuez", Price: price("50.00"), Category: domain.CategoryDessert, Image: "/images/brownie.jpg", Available: true},
	}
}
