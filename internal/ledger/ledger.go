// Package ledger is the authoritative order collection: it numbers
// orders, fixes their totals at creation time, and applies the
// forward-only status chain and the independent paid flag.
package ledger

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"burguerclub-pos/internal/domain"
	"burguerclub-pos/internal/storage"
	"burguerclub-pos/pkg/pubsub"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	ordersKey  = "orders"
	counterKey = "order_counter"
)

// DeliveryFee is the flat fee added to every delivery order's total.
var DeliveryFee = decimal.NewFromInt(30)

var (
	ErrEmptyOrder           = errors.New("ledger: order needs at least one item")
	ErrInvalidQuantity      = errors.New("ledger: item quantity must be at least 1")
	ErrUnknownMenuItem      = errors.New("ledger: item does not reference a catalog entry")
	ErrInvalidOrderType     = errors.New("ledger: unknown order type")
	ErrTableRequired        = errors.New("ledger: dine-in orders need a table number")
	ErrDeliveryInfoRequired = errors.New("ledger: delivery orders need phone and address")
	ErrNegativeTip          = errors.New("ledger: tip must not be negative")
)

// Catalog resolves menu item references while an order is created.
type Catalog interface {
	ItemByID(id string) (domain.MenuItem, bool)
}

// ItemInput is one requested order line, by catalog reference.
type ItemInput struct {
	MenuItemID string
	Quantity   int
	Notes      string
}

// OrderRequest carries everything AddOrder needs. TipPercentage and
// CustomTip are mutually exclusive: a percentage produces the tip amount
// from the subtotal, a custom tip is taken as-is and stores no
// percentage.
type OrderRequest struct {
	Items  []ItemInput
	Label  string // waiter name or customer display string
	Type   domain.OrderType
	Source domain.OrderSource

	TableNumber     string
	CustomerName    string
	PhoneNumber     string
	DeliveryAddress string

	TipPercentage int
	CustomTip     decimal.Decimal

	PaymentProof  string
	PaymentMethod domain.PaymentMethod
}

// StatusEvent is the payload of "order.status.updated".
type StatusEvent struct {
	Order domain.Order
	From  domain.OrderStatus
	To    domain.OrderStatus
}

type Store struct {
	records *storage.RecordStore
	bus     *pubsub.Bus
	catalog Catalog
	log     *zap.Logger
	now     func() time.Time

	mu      sync.Mutex
	orders  []domain.Order // most recent first
	counter int64          // next sequence number to assign
}

func NewStore(records *storage.RecordStore, bus *pubsub.Bus, catalog Catalog, log *zap.Logger) *Store {
	s := &Store{
		records: records,
		bus:     bus,
		catalog: catalog,
		log:     log,
		now:     time.Now,
	}
	s.reload()

	if bus != nil {
		bus.Subscribe("storage."+ordersKey, func(pubsub.Event) { s.reload() })
		bus.Subscribe("poll.tick", func(pubsub.Event) { s.reload() })
	}
	return s
}

// Orders returns a snapshot of the ledger, most recent first.
func (s *Store) Orders() []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Order(nil), s.orders...)
}

// OrderByID resolves one order; ok is false for unknown IDs.
func (s *Store) OrderByID(id string) (domain.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, order := range s.orders {
		if order.ID == id {
			return order, true
		}
	}
	return domain.Order{}, false
}

// AddOrder validates the request, computes the fixed total
// (subtotal + delivery fee + tip, never tax), assigns the next sequence
// number and appends the order in pending state. The stored total is
// immutable afterwards regardless of later settings or catalog changes.
func (s *Store) AddOrder(req OrderRequest) (domain.Order, error) {
	items, subtotal, err := s.resolveItems(req.Items)
	if err != nil {
		return domain.Order{}, err
	}
	if err := validateOrigin(req); err != nil {
		return domain.Order{}, err
	}

	tip, tipPct, err := resolveTip(req, subtotal)
	if err != nil {
		return domain.Order{}, err
	}

	total := subtotal.Add(tip)
	if req.Type == domain.OrderTypeDelivery {
		total = total.Add(DeliveryFee)
	}

	now := s.now()
	order := domain.Order{
		ID:            uuid.NewString(),
		Items:         items,
		Total:         total,
		Tip:           tip,
		TipPercentage: tipPct,
		Status:        domain.StatusPending,
		Paid:          false,
		WaiterName:    req.Label,
		CreatedAt:     now,
		Type:          req.Type,
		Source:        req.Source,

		TableNumber:     req.TableNumber,
		CustomerName:    req.CustomerName,
		PhoneNumber:     req.PhoneNumber,
		DeliveryAddress: req.DeliveryAddress,
		PaymentProof:    req.PaymentProof,
		PaymentMethod:   req.PaymentMethod,
	}

	s.mu.Lock()
	order.Number = s.counter
	s.counter++
	s.orders = append([]domain.Order{order}, s.orders...)
	counter := s.counter
	snapshot := append([]domain.Order(nil), s.orders...)
	s.mu.Unlock()

	if err := s.persistOrders(snapshot); err != nil {
		s.rollback(order)
		return domain.Order{}, err
	}
	// the counter record is a cache; reload re-derives it from the
	// highest assigned number
	if err := s.records.Put(counterKey, counter); err != nil {
		s.log.Warn("counter persist failed, will re-derive on reload", zap.Error(err))
	}

	s.log.Info("order created",
		zap.Int64("number", order.Number),
		zap.String("type", string(order.Type)),
		zap.String("total", order.Total.StringFixed(2)))
	s.publish("order.created", order)
	return order, nil
}

// UpdateOrderStatus applies one forward step of the status chain.
// Unknown IDs, repeated statuses, and illegal (backward or skipping)
// transitions are absorbed as no-ops; the mutation API is total over its
// key space. The completion time is stamped exactly once, when the order
// reaches delivered.
func (s *Store) UpdateOrderStatus(id string, status domain.OrderStatus) error {
	s.mu.Lock()
	var event *StatusEvent
	for i := range s.orders {
		if s.orders[i].ID != id {
			continue
		}
		from := s.orders[i].Status
		if from == status || !domain.CanTransition(from, status) {
			break
		}
		s.orders[i].Status = status
		if status == domain.StatusDelivered && s.orders[i].CompletedAt == nil {
			completed := s.now()
			s.orders[i].CompletedAt = &completed
		}
		event = &StatusEvent{Order: s.orders[i], From: from, To: status}
		break
	}
	snapshot := append([]domain.Order(nil), s.orders...)
	s.mu.Unlock()

	if event == nil {
		return nil
	}
	if err := s.persistOrders(snapshot); err != nil {
		return err
	}

	s.log.Info("order status updated",
		zap.Int64("number", event.Order.Number),
		zap.String("from", string(event.From)),
		zap.String("to", string(event.To)))
	s.publish("order.status.updated", *event)
	return nil
}

// MarkOrderAsPaid sets the paid flag. Unknown IDs are a no-op and
// repeated calls are idempotent; "order.paid" fires only on the
// false -> true edge.
func (s *Store) MarkOrderAsPaid(id string) error {
	s.mu.Lock()
	var paid *domain.Order
	for i := range s.orders {
		if s.orders[i].ID != id {
			continue
		}
		if !s.orders[i].Paid {
			s.orders[i].Paid = true
			order := s.orders[i]
			paid = &order
		}
		break
	}
	snapshot := append([]domain.Order(nil), s.orders...)
	s.mu.Unlock()

	if paid == nil {
		return nil
	}
	if err := s.persistOrders(snapshot); err != nil {
		return err
	}

	s.log.Info("order paid", zap.Int64("number", paid.Number))
	s.publish("order.paid", *paid)
	return nil
}

func (s *Store) resolveItems(inputs []ItemInput) ([]domain.OrderItem, decimal.Decimal, error) {
	if len(inputs) == 0 {
		return nil, decimal.Zero, ErrEmptyOrder
	}

	items := make([]domain.OrderItem, 0, len(inputs))
	subtotal := decimal.Zero
	for _, input := range inputs {
		if input.Quantity < 1 {
			return nil, decimal.Zero, ErrInvalidQuantity
		}
		menuItem, ok := s.catalog.ItemByID(input.MenuItemID)
		if !ok {
			return nil, decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownMenuItem, input.MenuItemID)
		}
		line := domain.OrderItem{MenuItem: menuItem, Quantity: input.Quantity, Notes: input.Notes}
		items = append(items, line)
		subtotal = subtotal.Add(line.LineTotal())
	}
	return items, subtotal, nil
}

func validateOrigin(req OrderRequest) error {
	switch req.Type {
	case domain.OrderTypeDineIn:
		if req.TableNumber == "" {
			return ErrTableRequired
		}
	case domain.OrderTypeTakeout:
	case domain.OrderTypeDelivery:
		if req.PhoneNumber == "" || req.DeliveryAddress == "" {
			return ErrDeliveryInfoRequired
		}
	default:
		return ErrInvalidOrderType
	}
	return nil
}

func resolveTip(req OrderRequest, subtotal decimal.Decimal) (decimal.Decimal, int, error) {
	if req.TipPercentage < 0 || req.CustomTip.IsNegative() {
		return decimal.Zero, 0, ErrNegativeTip
	}
	if req.TipPercentage > 0 {
		tip := subtotal.Mul(decimal.NewFromInt(int64(req.TipPercentage))).Div(decimal.NewFromInt(100))
		return tip, req.TipPercentage, nil
	}
	return req.CustomTip, 0, nil
}

// rollback removes an order that failed to persist and hands its
// number back if no later order claimed one in the meantime.
func (s *Store) rollback(order domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID == order.ID {
			s.orders = append(s.orders[:i], s.orders[i+1:]...)
			break
		}
	}
	if s.counter == order.Number+1 {
		s.counter = order.Number
	}
}

func (s *Store) persistOrders(orders []domain.Order) error {
	return s.records.Put(ordersKey, orders)
}

func (s *Store) publish(key string, payload any) {
	if s.bus != nil {
		s.bus.Publish(key, payload)
	}
}

func (s *Store) reload() {
	var orders []domain.Order
	if err := s.records.Get(ordersKey, &orders); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Warn("orders reload failed", zap.Error(err))
		}
		orders = nil
	}

	var counter int64
	if err := s.records.Get(counterKey, &counter); err != nil || counter < 1 {
		counter = 1
	}
	// Sequence numbers are never reused, even if the counter record was
	// lost: re-derive from the highest assigned number.
	for _, order := range orders {
		if order.Number >= counter {
			counter = order.Number + 1
		}
	}

	s.mu.Lock()
	s.orders = orders
	s.counter = counter
	s.mu.Unlock()
}
