package simulation

import (
	"fmt"
	"time"

	"options-sim-lab/internal/trade"
)

// OrderStatus is the lifecycle of a pending entry order.
type OrderStatus string

// Order status constants
const (
	OrderPending  OrderStatus = "PENDING"
	OrderFilled   OrderStatus = "FILLED"
	OrderRejected OrderStatus = "REJECTED"
)

// Reject reasons
const (
	RejectInsufficientCapital   = "insufficient_capital"
	RejectInsufficientMargin    = "insufficient_margin"
	RejectInsufficientLiquidity = "insufficient_liquidity"
	RejectTradingHalted         = "trading_halted"
	RejectExpired               = "leg_expired"
)

// PendingOrder is an entry signalled on one bar and filled on a later one.
type PendingOrder struct {
	OrderID      string
	StrategyID   string
	Symbol       string
	SignalDate   time.Time
	SignalPrice  float64 // underlying close on the signal bar
	Size         int     // total contracts across legs
	Direction    string  // "debit" | "credit", from the signal bar's theoretical prices
	VIX          float64
	OptionVolume float64
	OpenInterest float64
	Immediate    bool // filled on the signal bar; tests and debugging only

	Status         OrderStatus
	RejectReason   string
	FillDate       time.Time
	FillPrice      float64 // underlying close on the fill bar
	FillCost       float64 // signed entry cost
	FillCommission float64

	Trade *trade.Trade
}

// orderQueue holds pending orders in FIFO order.
type orderQueue struct {
	orders []*PendingOrder
	seq    int
}

func (q *orderQueue) nextID() string {
	q.seq++
	return fmt.Sprintf("ord-%d", q.seq)
}

func (q *orderQueue) push(o *PendingOrder) {
	q.orders = append(q.orders, o)
}

// due removes and returns orders signalled strictly before date.
func (q *orderQueue) due(date time.Time) []*PendingOrder {
	var ready, keep []*PendingOrder
	for _, o := range q.orders {
		if o.SignalDate.Before(date) {
			ready = append(ready, o)
		} else {
			keep = append(keep, o)
		}
	}
	q.orders = keep
	return ready
}

func (q *orderQueue) len() int { return len(q.orders) }

func (q *orderQueue) snapshot() []*PendingOrder {
	out := make([]*PendingOrder, len(q.orders))
	copy(out, q.orders)
	return out
}
