package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Side string
type OrderKind string
type OrderStatus string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"

	Limit  OrderKind = "LIMIT"
	Market OrderKind = "MARKET"
	Stop   OrderKind = "STOP"

	Open      OrderStatus = "OPEN"
	Pending   OrderStatus = "PENDING"
	Completed OrderStatus = "COMPLETED"
	Canceled  OrderStatus = "CANCELED"
)

// Order is one resting instruction to buy or sell a quantity of a symbol at a
// limit price. ID is assigned by the store on first persistence. Side and
// Symbol are immutable after creation; only the matcher mutates Filled,
// Status and UpdatedAt. Kind beyond LIMIT is accepted but carries no distinct
// matching semantics.
type Order struct {
	ID        string          `json:"id"`
	Symbol    string          `json:"symbol"`
	Side      Side            `json:"side"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
	Filled    int64           `json:"filled_quantity"`
	Status    OrderStatus     `json:"status"`
	Kind      OrderKind       `json:"order_kind"`
	UserID    int64           `json:"user_id"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (o *Order) Remaining() int64 {
	return o.Quantity - o.Filled
}

func (o *Order) PartiallyFilled() bool {
	return o.Filled > 0 && o.Filled < o.Quantity
}
