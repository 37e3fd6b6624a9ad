package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusDelivered OrderStatus = "delivered"
)

// statusChain is the only legal progression; there is no transition out
// of delivered and no backward step.
var statusChain = map[OrderStatus]OrderStatus{
	StatusPending:   StatusPreparing,
	StatusPreparing: StatusReady,
	StatusReady:     StatusDelivered,
}

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPreparing, StatusReady, StatusDelivered:
		return true
	}
	return false
}

// Next returns the status that follows s in the chain. The second result
// is false for delivered and for unknown values.
func (s OrderStatus) Next() (OrderStatus, bool) {
	next, ok := statusChain[s]
	return next, ok
}

// CanTransition reports whether from -> to is a legal single step.
func CanTransition(from, to OrderStatus) bool {
	next, ok := statusChain[from]
	return ok && next == to
}

type OrderType string

const (
	OrderTypeDineIn   OrderType = "dine-in"
	OrderTypeTakeout  OrderType = "takeout"
	OrderTypeDelivery OrderType = "delivery"
)

type OrderSource string

const (
	SourceWaiter OrderSource = "waiter"
	SourceWeb    OrderSource = "web"
)

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentTransfer PaymentMethod = "transfer"
)

// OrderItem is one line of an order. It carries a snapshot of the menu
// item taken at order time, so later catalog edits never change what a
// historical order billed.
type OrderItem struct {
	MenuItem MenuItem `json:"menuItem"`
	Quantity int      `json:"quantity"`
	Notes    string   `json:"notes,omitempty"`
}

// LineTotal is price x quantity for this line.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.MenuItem.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Order struct {
	ID            string          `json:"id"`
	Number        int64           `json:"orderNumber"`
	Items         []OrderItem     `json:"items"`
	Total         decimal.Decimal `json:"total"`
	Tip           decimal.Decimal `json:"tip"`
	TipPercentage int             `json:"tipPercentage,omitempty"`
	Status        OrderStatus     `json:"status"`
	Paid          bool            `json:"paid"`
	WaiterName    string          `json:"waiterName"`
	CreatedAt     time.Time       `json:"createdAt"`
	CompletedAt   *time.Time      `json:"completedAt,omitempty"`

	Type   OrderType   `json:"orderType"`
	Source OrderSource `json:"orderSource"`

	TableNumber     string        `json:"tableNumber,omitempty"`
	CustomerName    string        `json:"customerName,omitempty"`
	PhoneNumber     string        `json:"phoneNumber,omitempty"`
	DeliveryAddress string        `json:"deliveryAddress,omitempty"`
	PaymentProof    string        `json:"paymentProof,omitempty"`
	PaymentMethod   PaymentMethod `json:"paymentMethod,omitempty"`
}

// Subtotal is the sum of line totals, before delivery fee and tip.
func (o Order) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range o.Items {
		sum = sum.Add(item.LineTotal())
	}
	return sum
}
