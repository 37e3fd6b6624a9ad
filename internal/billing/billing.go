// Package billing derives business-facing summaries from the order
// ledger and the settings. Every function is a pure projection
// recomputed on each call; nothing here caches or mutates state, which
// keeps the read side trivially consistent with the ledger at the
// expected order volume.
package billing

import (
	"sort"
	"strconv"
	"time"

	"burguerclub-pos/internal/domain"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// TableBill is one table's rollup of a waiter's delivered dine-in
// orders. Tax is applied here, on the grouped subtotal, and only here:
// stored order totals never contain tax.
type TableBill struct {
	Table    string          `json:"table"`
	Orders   []domain.Order  `json:"orders"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Tips     decimal.Decimal `json:"tips"`
	Total    decimal.Decimal `json:"total"`
	Paid     bool            `json:"isPaid"`
}

// TableBills groups the waiter's delivered dine-in orders by table and
// computes each group's balance. Paid is the AND over the group, true
// for an empty group.
func TableBills(orders []domain.Order, settings domain.Settings, waiter string) []TableBill {
	groups := make(map[string][]domain.Order)
	var tables []string
	for _, order := range orders {
		if order.WaiterName != waiter || order.Status != domain.StatusDelivered || order.Type != domain.OrderTypeDineIn {
			continue
		}
		table := order.TableNumber
		if _, seen := groups[table]; !seen {
			tables = append(tables, table)
		}
		groups[table] = append(groups[table], order)
	}
	sortTables(tables)

	bills := make([]TableBill, 0, len(tables))
	for _, table := range tables {
		group := groups[table]
		subtotal := decimal.Zero
		tips := decimal.Zero
		paid := true
		for _, order := range group {
			subtotal = subtotal.Add(order.Subtotal())
			tips = tips.Add(order.Tip)
			paid = paid && order.Paid
		}

		tax := decimal.Zero
		if settings.TaxEnabled {
			tax = subtotal.Mul(decimal.NewFromInt(int64(settings.TaxPercentage))).Div(hundred)
		}

		bills = append(bills, TableBill{
			Table:    table,
			Orders:   group,
			Subtotal: subtotal,
			Tax:      tax,
			Tips:     tips,
			Total:    subtotal.Add(tax).Add(tips),
			Paid:     paid,
		})
	}
	return bills
}

// OccupiedTables returns the distinct table numbers holding at least
// one unpaid dine-in order, regardless of status.
func OccupiedTables(orders []domain.Order) []string {
	seen := make(map[string]bool)
	var tables []string
	for _, order := range orders {
		if order.Type != domain.OrderTypeDineIn || order.TableNumber == "" || order.Paid {
			continue
		}
		if !seen[order.TableNumber] {
			seen[order.TableNumber] = true
			tables = append(tables, order.TableNumber)
		}
	}
	sortTables(tables)
	return tables
}

// AvailableTables is {1..numberOfTables} minus the occupied set, as
// strings in ascending numeric order.
func AvailableTables(orders []domain.Order, numberOfTables int) []string {
	occupied := make(map[string]bool)
	for _, table := range OccupiedTables(orders) {
		occupied[table] = true
	}

	available := make([]string, 0, numberOfTables)
	for i := 1; i <= numberOfTables; i++ {
		table := strconv.Itoa(i)
		if !occupied[table] {
			available = append(available, table)
		}
	}
	return available
}

type DayRevenue struct {
	Date    string          `json:"date"` // 2006-01-02
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
}

// DailyRevenue buckets stored order totals by calendar day in now's
// location, for the trailing 7 days inclusive of today. The series
// always has exactly 7 entries, oldest first, zero-filled.
func DailyRevenue(orders []domain.Order, now time.Time) []DayRevenue {
	const days = 7

	index := make(map[string]int, days)
	series := make([]DayRevenue, days)
	for i := 0; i < days; i++ {
		day := now.AddDate(0, 0, -(days - 1 - i)).Format("2006-01-02")
		series[i] = DayRevenue{Date: day, Revenue: decimal.Zero}
		index[day] = i
	}

	for _, order := range orders {
		day := order.CreatedAt.In(now.Location()).Format("2006-01-02")
		i, ok := index[day]
		if !ok {
			continue
		}
		series[i].Revenue = series[i].Revenue.Add(order.Total)
		series[i].Orders++
	}
	return series
}

type ItemSales struct {
	MenuItemID string          `json:"menuItemId"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	Revenue    decimal.Decimal `json:"revenue"`
}

// TopItems aggregates quantity and revenue per distinct menu item across
// all orders, sorted by quantity descending with a stable first-seen
// tie-break, truncated to limit.
func TopItems(orders []domain.Order, limit int) []ItemSales {
	index := make(map[string]int)
	var sales []ItemSales
	for i := len(orders) - 1; i >= 0; i-- { // oldest first for the tie-break
		for _, line := range orders[i].Items {
			id := line.MenuItem.ID
			pos, seen := index[id]
			if !seen {
				pos = len(sales)
				index[id] = pos
				sales = append(sales, ItemSales{MenuItemID: id, Name: line.MenuItem.Name, Revenue: decimal.Zero})
			}
			sales[pos].Quantity += line.Quantity
			sales[pos].Revenue = sales[pos].Revenue.Add(line.LineTotal())
		}
	}

	sort.SliceStable(sales, func(a, b int) bool {
		return sales[a].Quantity > sales[b].Quantity
	})
	if limit > 0 && len(sales) > limit {
		sales = sales[:limit]
	}
	return sales
}

var statusOrder = []domain.OrderStatus{
	domain.StatusPending,
	domain.StatusPreparing,
	domain.StatusReady,
	domain.StatusDelivered,
}

// StatusCounts is the tabular distribution: every status appears, zeros
// included.
func StatusCounts(orders []domain.Order) map[domain.OrderStatus]int {
	counts := make(map[domain.OrderStatus]int, len(statusOrder))
	for _, status := range statusOrder {
		counts[status] = 0
	}
	for _, order := range orders {
		counts[order.Status]++
	}
	return counts
}

type StatusCount struct {
	Status domain.OrderStatus `json:"status"`
	Count  int                `json:"count"`
}

// StatusBreakdown is the chart-style distribution: statuses with zero
// orders are omitted, the rest appear in chain order.
func StatusBreakdown(orders []domain.Order) []StatusCount {
	counts := StatusCounts(orders)
	breakdown := make([]StatusCount, 0, len(statusOrder))
	for _, status := range statusOrder {
		if counts[status] > 0 {
			breakdown = append(breakdown, StatusCount{Status: status, Count: counts[status]})
		}
	}
	return breakdown
}

// TipTotals returns team-wide tips across all orders and the share
// belonging to one waiter.
func TipTotals(orders []domain.Order, waiter string) (team, mine decimal.Decimal) {
	team, mine = decimal.Zero, decimal.Zero
	for _, order := range orders {
		team = team.Add(order.Tip)
		if order.WaiterName == waiter {
			mine = mine.Add(order.Tip)
		}
	}
	return team, mine
}

type WaiterStats struct {
	Orders    int             `json:"orders"`
	Delivered int             `json:"delivered"`
	Tips      decimal.Decimal `json:"tips"`
	TeamTips  decimal.Decimal `json:"teamTips"`
}

// WaiterSummary is the waiter dashboard header: own order counts and tip
// rollups next to the team-wide tips.
func WaiterSummary(orders []domain.Order, waiter string) WaiterStats {
	stats := WaiterStats{Tips: decimal.Zero, TeamTips: decimal.Zero}
	for _, order := range orders {
		stats.TeamTips = stats.TeamTips.Add(order.Tip)
		if order.WaiterName != waiter {
			continue
		}
		stats.Orders++
		if order.Status == domain.StatusDelivered {
			stats.Delivered++
		}
		stats.Tips = stats.Tips.Add(order.Tip)
	}
	return stats
}

type PaymentsOverview struct {
	TotalPayments        decimal.Decimal `json:"totalPayments"`
	PaidOrders           int             `json:"totalPaidOrders"`
	WaiterOrders         int             `json:"waiterOrdersCount"`
	WebOrders            int             `json:"webOrdersCount"`
	WaiterPayments       decimal.Decimal `json:"totalWaiterPayments"`
	WebPayments          decimal.Decimal `json:"totalWebPayments"`
	WebPaymentsWithProof int             `json:"webPaymentsWithProof"`
}

// PaymentsSummary is the admin payments header: settled totals over paid
// orders only, split by order source, plus how many web payments carry
// a payment proof.
func PaymentsSummary(orders []domain.Order) PaymentsOverview {
	summary := PaymentsOverview{
		TotalPayments:  decimal.Zero,
		WaiterPayments: decimal.Zero,
		WebPayments:    decimal.Zero,
	}
	for _, order := range orders {
		if !order.Paid {
			continue
		}
		summary.PaidOrders++
		summary.TotalPayments = summary.TotalPayments.Add(order.Total)
		switch order.Source {
		case domain.SourceWaiter:
			summary.WaiterOrders++
			summary.WaiterPayments = summary.WaiterPayments.Add(order.Total)
		case domain.SourceWeb:
			summary.WebOrders++
			summary.WebPayments = summary.WebPayments.Add(order.Total)
			if order.PaymentProof != "" {
				summary.WebPaymentsWithProof++
			}
		}
	}
	return summary
}

type Overview struct {
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	DeliveredRevenue  decimal.Decimal `json:"deliveredRevenue"`
	TotalOrders       int             `json:"totalOrders"`
	DeliveredOrders   int             `json:"deliveredOrders"`
	PendingOrders     int             `json:"pendingOrders"`
	PreparingOrders   int             `json:"preparingOrders"`
	ReadyOrders       int             `json:"readyOrders"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
	ItemsSold         int             `json:"itemsSold"`
}

// Summarize is the admin stats header over the whole ledger.
func Summarize(orders []domain.Order) Overview {
	overview := Overview{
		TotalRevenue:      decimal.Zero,
		DeliveredRevenue:  decimal.Zero,
		AverageOrderValue: decimal.Zero,
	}
	for _, order := range orders {
		overview.TotalOrders++
		overview.TotalRevenue = overview.TotalRevenue.Add(order.Total)
		for _, line := range order.Items {
			overview.ItemsSold += line.Quantity
		}
		switch order.Status {
		case domain.StatusPending:
			overview.PendingOrders++
		case domain.StatusPreparing:
			overview.PreparingOrders++
		case domain.StatusReady:
			overview.ReadyOrders++
		case domain.StatusDelivered:
			overview.DeliveredOrders++
			overview.DeliveredRevenue = overview.DeliveredRevenue.Add(order.Total)
		}
	}
	if overview.TotalOrders > 0 {
		overview.AverageOrderValue = overview.TotalRevenue.DivRound(decimal.NewFromInt(int64(overview.TotalOrders)), 2)
	}
	return overview
}

// sortTables orders table labels numerically where possible, falling
// back to lexical order for non-numeric labels.
func sortTables(tables []string) {
	sort.Slice(tables, func(a, b int) bool {
		na, errA := strconv.Atoi(tables[a])
		nb, errB := strconv.Atoi(tables[b])
		if errA == nil && errB == nil {
			return na < nb
		}
		if (errA == nil) != (errB == nil) {
			return errA == nil
		}
		return tables[a] < tables[b]
	})
}
