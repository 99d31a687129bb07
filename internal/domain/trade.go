package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is the immutable record of one execution between a buy and a sell
// order. Price is always the resting sell order's limit price.
type Trade struct {
	ID          string          `json:"id"`
	Symbol      string          `json:"symbol"`
	BuyerID     int64           `json:"buyer_id"`
	SellerID    int64           `json:"seller_id"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int64           `json:"quantity"`
	ExecutedAt  time.Time       `json:"executed_at"`
	BuyOrderID  string          `json:"buy_order_id"`
	SellOrderID string          `json:"sell_order_id"`
}

func (t *Trade) Value() decimal.Decimal {
	return t.Price.Mul(decimal.NewFromInt(t.Quantity))
}
