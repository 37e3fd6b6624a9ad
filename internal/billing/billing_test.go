package billing

import (
	"testing"
	"time"

	"burguerclub-pos/internal/domain"

	"github.com/shopspring/decimal"
)

func menuItem(id string, price int64) domain.MenuItem {
	return domain.MenuItem{ID: id, Name: id, Price: decimal.NewFromInt(price), Category: domain.CategoryMain}
}

func line(id string, price int64, qty int) domain.OrderItem {
	return domain.OrderItem{MenuItem: menuItem(id, price), Quantity: qty}
}

func taxSettings(enabled bool, pct int) domain.Settings {
	return domain.Settings{TaxEnabled: enabled, TaxPercentage: pct, NumberOfTables: 10}
}

func TestTableBillsAppliesTaxOutsideStoredTotal(t *testing.T) {
	order := domain.Order{
		ID:          "o-1",
		Status:      domain.StatusDelivered,
		Type:        domain.OrderTypeDineIn,
		WaiterName:  "Carlos Mesero",
		TableNumber: "2",
		Items:       []domain.OrderItem{line("burger", 100, 1)},
		Total:       decimal.NewFromInt(100), // stored total carries no tax
		Tip:         decimal.Zero,
	}

	bills := TableBills([]domain.Order{order}, taxSettings(true, 16), "Carlos Mesero")
	if len(bills) != 1 {
		t.Fatalf("expected one bill, got %d", len(bills))
	}

	bill := bills[0]
	if !bill.Subtotal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected subtotal 100.00, got %s", bill.Subtotal)
	}
	if !bill.Tax.Equal(decimal.NewFromInt(16)) {
		t.Fatalf("expected tax 16.00, got %s", bill.Tax)
	}
	if !bill.Total.Equal(decimal.NewFromInt(116)) {
		t.Fatalf("expected bill total 116.00, got %s", bill.Total)
	}
	if !order.Total.Equal(decimal.NewFromInt(100)) {
		t.Fatal("tax must stay out of the stored order total")
	}
}

func TestTableBillsGroupingAndPaidReduction(t *testing.T) {
	orders := []domain.Order{
		{ID: "a", Status: domain.StatusDelivered, Type: domain.OrderTypeDineIn, WaiterName: "Carlos", TableNumber: "3",
			Items: []domain.OrderItem{line("burger", 10, 2)}, Tip: decimal.NewFromInt(2), Paid: true},
		{ID: "b", Status: domain.StatusDelivered, Type: domain.OrderTypeDineIn, WaiterName: "Carlos", TableNumber: "3",
			Items: []domain.OrderItem{line("fries", 5, 1)}, Tip: decimal.Zero},
		{ID: "c", Status: domain.StatusDelivered, Type: domain.OrderTypeDineIn, WaiterName: "Carlos", TableNumber: "10",
			Items: []domain.OrderItem{line("burger", 10, 1)}, Tip: decimal.Zero, Paid: true},
		// filtered out: other waiter, not delivered, not dine-in
		{ID: "d", Status: domain.StatusDelivered, Type: domain.OrderTypeDineIn, WaiterName: "Ana", TableNumber: "3",
			Items: []domain.OrderItem{line("burger", 10, 1)}, Tip: decimal.Zero},
		{ID: "e", Status: domain.StatusReady, Type: domain.OrderTypeDineIn, WaiterName: "Carlos", TableNumber: "3",
			Items: []domain.OrderItem{line("burger", 10, 1)}, Tip: decimal.Zero},
		{ID: "f", Status: domain.StatusDelivered, Type: domain.OrderTypeTakeout, WaiterName: "Carlos",
			Items: []domain.OrderItem{line("burger", 10, 1)}, Tip: decimal.Zero},
	}

	bills := TableBills(orders, taxSettings(false, 16), "Carlos")
	if len(bills) != 2 {
		t.Fatalf("expected bills for tables 3 and 10, got %d", len(bills))
	}
	if bills[0].Table != "3" || bills[1].Table != "10" {
		t.Fatalf("expected numeric table order [3 10], got [%s %s]", bills[0].Table, bills[1].Table)
	}

	table3 := bills[0]
	if len(table3.Orders) != 2 {
		t.Fatalf("expected 2 orders on table 3, got %d", len(table3.Orders))
	}
	if !table3.Subtotal.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("expected subtotal 25.00, got %s", table3.Subtotal)
	}
	if !table3.Tax.IsZero() {
		t.Fatalf("tax disabled, got %s", table3.Tax)
	}
	if !table3.Tips.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("expected tips 2.00, got %s", table3.Tips)
	}
	if !table3.Total.Equal(decimal.NewFromInt(27)) {
		t.Fatalf("expected total 27.00, got %s", table3.Total)
	}
	if table3.Paid {
		t.Fatal("table 3 has an unpaid order, Paid must be false")
	}
	if !bills[1].Paid {
		t.Fatal("table 10's only order is paid, Paid must be true")
	}
}

func TestOccupancy(t *testing.T) {
	orders := []domain.Order{
		{ID: "a", Type: domain.OrderTypeDineIn, TableNumber: "3", Paid: false},
		{ID: "b", Type: domain.OrderTypeDineIn, TableNumber: "3", Paid: false}, // same table, still one entry
		{ID: "c", Type: domain.OrderTypeDineIn, TableNumber: "1", Paid: true},  // paid frees the table
		{ID: "d", Type: domain.OrderTypeTakeout, Paid: false},                  // takeout never occupies
	}

	occupied := OccupiedTables(orders)
	if len(occupied) != 1 || occupied[0] != "3" {
		t.Fatalf("expected occupied [3], got %v", occupied)
	}

	available := AvailableTables(orders, 5)
	want := []string{"1", "2", "4", "5"}
	if len(available) != len(want) {
		t.Fatalf("expected available %v, got %v", want, available)
	}
	for i := range want {
		if available[i] != want[i] {
			t.Fatalf("expected available %v, got %v", want, available)
		}
	}
}

func TestOccupancyClearsAfterPayment(t *testing.T) {
	order := domain.Order{ID: "a", Type: domain.OrderTypeDineIn, TableNumber: "3", Paid: false}

	for _, table := range AvailableTables([]domain.Order{order}, 10) {
		if table == "3" {
			t.Fatal("table 3 must not be available while its order is unpaid")
		}
	}

	order.Paid = true
	found := false
	for _, table := range AvailableTables([]domain.Order{order}, 10) {
		if table == "3" {
			found = true
		}
	}
	if !found {
		t.Fatal("table 3 must reappear once the order is paid")
	}
}

func TestDailyRevenueAlwaysSevenBuckets(t *testing.T) {
	now := time.Date(2026, 8, 31, 15, 0, 0, 0, time.UTC)

	series := DailyRevenue(nil, now)
	if len(series) != 7 {
		t.Fatalf("expected 7 buckets with zero orders, got %d", len(series))
	}
	if series[0].Date != "2026-08-25" || series[6].Date != "2026-08-31" {
		t.Fatalf("expected chronological buckets 2026-08-25..2026-08-31, got %s..%s", series[0].Date, series[6].Date)
	}
	for _, day := range series {
		if !day.Revenue.IsZero() || day.Orders != 0 {
			t.Fatalf("expected zero-filled bucket, got %+v", day)
		}
	}
}

func TestDailyRevenueBucketsByCreationDay(t *testing.T) {
	now := time.Date(2026, 8, 31, 15, 0, 0, 0, time.UTC)
	orders := []domain.Order{
		{ID: "a", CreatedAt: now.Add(-2 * time.Hour), Total: decimal.NewFromInt(50)},
		{ID: "b", CreatedAt: now.AddDate(0, 0, -1), Total: decimal.NewFromInt(30)},
		{ID: "c", CreatedAt: now.AddDate(0, 0, -1), Total: decimal.NewFromInt(20)},
		{ID: "d", CreatedAt: now.AddDate(0, 0, -9), Total: decimal.NewFromInt(999)}, // outside the window
	}

	series := DailyRevenue(orders, now)
	today := series[6]
	yesterday := series[5]

	if !today.Revenue.Equal(decimal.NewFromInt(50)) || today.Orders != 1 {
		t.Fatalf("expected today 50.00/1, got %s/%d", today.Revenue, today.Orders)
	}
	if !yesterday.Revenue.Equal(decimal.NewFromInt(30+20)) || yesterday.Orders != 2 {
		t.Fatalf("expected yesterday 50.00/2, got %s/%d", yesterday.Revenue, yesterday.Orders)
	}
	for _, day := range series[:5] {
		if !day.Revenue.IsZero() {
			t.Fatalf("expected empty bucket %s, got %s", day.Date, day.Revenue)
		}
	}
}

func TestTopItems(t *testing.T) {
	orders := []domain.Order{
		// ledger order: most recent first; "burger" is the first item ever sold
		{ID: "new", Items: []domain.OrderItem{line("soda", 3, 2), line("brownie", 5, 2)}},
		{ID: "mid", Items: []domain.OrderItem{line("fries", 5, 4), line("soda", 3, 1)}},
		{ID: "old", Items: []domain.OrderItem{line("burger", 10, 3), line("fries", 5, 1)}},
	}

	top := TopItems(orders, 3)
	if len(top) != 3 {
		t.Fatalf("expected truncation to 3, got %d", len(top))
	}

	// fries 5, burger 3, soda 3 (burger first-seen before soda)
	if top[0].MenuItemID != "fries" || top[0].Quantity != 5 {
		t.Fatalf("expected fries x5 first, got %s x%d", top[0].MenuItemID, top[0].Quantity)
	}
	if top[1].MenuItemID != "burger" || top[2].MenuItemID != "soda" {
		t.Fatalf("expected first-seen tie-break [burger soda], got [%s %s]", top[1].MenuItemID, top[2].MenuItemID)
	}
	if !top[0].Revenue.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("expected fries revenue 25.00, got %s", top[0].Revenue)
	}
}

func TestStatusDistribution(t *testing.T) {
	orders := []domain.Order{
		{ID: "a", Status: domain.StatusPending},
		{ID: "b", Status: domain.StatusPending},
		{ID: "c", Status: domain.StatusDelivered},
	}

	counts := StatusCounts(orders)
	if len(counts) != 4 {
		t.Fatalf("tabular counts must include all statuses, got %d entries", len(counts))
	}
	if counts[domain.StatusPending] != 2 || counts[domain.StatusPreparing] != 0 || counts[domain.StatusDelivered] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}

	breakdown := StatusBreakdown(orders)
	if len(breakdown) != 2 {
		t.Fatalf("chart breakdown must omit zero statuses, got %v", breakdown)
	}
	if breakdown[0].Status != domain.StatusPending || breakdown[1].Status != domain.StatusDelivered {
		t.Fatalf("expected chain order [pending delivered], got %v", breakdown)
	}
}

func TestTipRollups(t *testing.T) {
	orders := []domain.Order{
		{ID: "a", WaiterName: "Carlos", Tip: decimal.NewFromInt(5), Status: domain.StatusDelivered},
		{ID: "b", WaiterName: "Carlos", Tip: decimal.NewFromInt(3), Status: domain.StatusPending},
		{ID: "c", WaiterName: "Ana", Tip: decimal.NewFromInt(4), Status: domain.StatusDelivered},
	}

	team, mine := TipTotals(orders, "Carlos")
	if !team.Equal(decimal.NewFromInt(12)) {
		t.Fatalf("expected team tips 12.00, got %s", team)
	}
	if !mine.Equal(decimal.NewFromInt(8)) {
		t.Fatalf("expected Carlos' tips 8.00, got %s", mine)
	}

	stats := WaiterSummary(orders, "Carlos")
	if stats.Orders != 2 || stats.Delivered != 1 {
		t.Fatalf("expected 2 orders / 1 delivered for Carlos, got %d/%d", stats.Orders, stats.Delivered)
	}
	if !stats.Tips.Equal(mine) || !stats.TeamTips.Equal(team) {
		t.Fatalf("summary tips disagree with rollups: %+v", stats)
	}
}

func TestPaymentsSummary(t *testing.T) {
	orders := []domain.Order{
		{ID: "a", Paid: true, Source: domain.SourceWaiter, Total: decimal.NewFromInt(40)},
		{ID: "b", Paid: true, Source: domain.SourceWeb, Total: decimal.NewFromInt(75), PaymentProof: "proof-b.jpg"},
		{ID: "c", Paid: true, Source: domain.SourceWeb, Total: decimal.NewFromInt(25)}, // cash web order, no proof
		{ID: "d", Paid: false, Source: domain.SourceWaiter, Total: decimal.NewFromInt(999)},
		{ID: "e", Paid: false, Source: domain.SourceWeb, Total: decimal.NewFromInt(999), PaymentProof: "proof-e.jpg"},
	}

	cases := []struct {
		name  string
		check func(t *testing.T, got PaymentsOverview)
	}{
		{
			name: "unpaid orders never count",
			check: func(t *testing.T, got PaymentsOverview) {
				if got.PaidOrders != 3 {
					t.Fatalf("expected 3 paid orders, got %d", got.PaidOrders)
				}
				if !got.TotalPayments.Equal(decimal.NewFromInt(140)) {
					t.Fatalf("expected total payments 140.00, got %s", got.TotalPayments)
				}
			},
		},
		{
			name: "split by source",
			check: func(t *testing.T, got PaymentsOverview) {
				if got.WaiterOrders != 1 || got.WebOrders != 2 {
					t.Fatalf("expected 1 waiter / 2 web orders, got %d/%d", got.WaiterOrders, got.WebOrders)
				}
				if !got.WaiterPayments.Equal(decimal.NewFromInt(40)) {
					t.Fatalf("expected waiter payments 40.00, got %s", got.WaiterPayments)
				}
				if !got.WebPayments.Equal(decimal.NewFromInt(100)) {
					t.Fatalf("expected web payments 100.00, got %s", got.WebPayments)
				}
			},
		},
		{
			name: "proof counted on paid web orders only",
			check: func(t *testing.T, got PaymentsOverview) {
				if got.WebPaymentsWithProof != 1 {
					t.Fatalf("expected 1 web payment with proof, got %d", got.WebPaymentsWithProof)
				}
			},
		},
	}

	got := PaymentsSummary(orders)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) { tc.check(t, got) })
	}

	empty := PaymentsSummary(nil)
	if empty.PaidOrders != 0 || !empty.TotalPayments.IsZero() {
		t.Fatalf("empty ledger must summarize to zero, got %+v", empty)
	}
}

func TestSummarize(t *testing.T) {
	orders := []domain.Order{
		{ID: "a", Status: domain.StatusDelivered, Total: decimal.NewFromInt(40),
			Items: []domain.OrderItem{line("burger", 10, 4)}},
		{ID: "b", Status: domain.StatusPending, Total: decimal.NewFromInt(10),
			Items: []domain.OrderItem{line("fries", 5, 2)}},
	}

	overview := Summarize(orders)
	if overview.TotalOrders != 2 || overview.DeliveredOrders != 1 || overview.PendingOrders != 1 {
		t.Fatalf("unexpected counts: %+v", overview)
	}
	if !overview.TotalRevenue.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected total revenue 50.00, got %s", overview.TotalRevenue)
	}
	if !overview.DeliveredRevenue.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("expected delivered revenue 40.00, got %s", overview.DeliveredRevenue)
	}
	if !overview.AverageOrderValue.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("expected average 25.00, got %s", overview.AverageOrderValue)
	}
	if overview.ItemsSold != 6 {
		t.Fatalf("expected 6 items sold, got %d", overview.ItemsSold)
	}

	empty := Summarize(nil)
	if !empty.AverageOrderValue.IsZero() {
		t.Fatalf("empty ledger must average 0, got %s", empty.AverageOrderValue)
	}
}
