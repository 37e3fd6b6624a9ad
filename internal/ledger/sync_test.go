package ledger

import (
	"testing"

	"burguerclub-pos/internal/domain"
	"burguerclub-pos/internal/storage"
	"burguerclub-pos/pkg/pubsub"

	"go.uber.org/zap"
)

// Two stores sharing one record store and bus model two terminals of
// the same food truck: a write on one becomes visible on the other via
// the storage event, without any polling.
func TestCrossTerminalVisibility(t *testing.T) {
	bus := pubsub.New()
	records, err := storage.Open(t.TempDir(), bus, zap.NewNop())
	if err != nil {
		t.Fatalf("open records: %v", err)
	}

	waiterTerminal := NewStore(records, bus, testCatalog(), zap.NewNop())
	kitchenTerminal := NewStore(records, bus, testCatalog(), zap.NewNop())

	order, err := waiterTerminal.AddOrder(dineIn("2", ItemInput{MenuItemID: "burger", Quantity: 1}))
	if err != nil {
		t.Fatalf("add order: %v", err)
	}

	seen, ok := kitchenTerminal.OrderByID(order.ID)
	if !ok {
		t.Fatal("kitchen terminal must see the new order")
	}
	if seen.Status != domain.StatusPending {
		t.Fatalf("expected pending on the kitchen terminal, got %s", seen.Status)
	}

	if err := kitchenTerminal.UpdateOrderStatus(order.ID, domain.StatusPreparing); err != nil {
		t.Fatalf("kitchen update: %v", err)
	}

	back, _ := waiterTerminal.OrderByID(order.ID)
	if back.Status != domain.StatusPreparing {
		t.Fatalf("waiter terminal must see the kitchen's transition, got %s", back.Status)
	}

	// numbering keeps advancing without gaps no matter which terminal
	// creates the order
	second, err := kitchenTerminal.AddOrder(dineIn("3", ItemInput{MenuItemID: "fries", Quantity: 1}))
	if err != nil {
		t.Fatalf("add order: %v", err)
	}
	if second.Number != order.Number+1 {
		t.Fatalf("expected number %d, got %d", order.Number+1, second.Number)
	}
}
