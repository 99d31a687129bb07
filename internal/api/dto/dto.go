package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nilzex/exchange/internal/domain"
)

type PlaceOrderRequest struct {
	Symbol   string          `json:"symbol" binding:"required"`
	Side     string          `json:"side" binding:"required"`
	Price    decimal.Decimal `json:"price"`
	Quantity int64           `json:"quantity" binding:"required"`
	UserID   int64           `json:"user_id" binding:"required"`
	Kind     string          `json:"order_kind"`
}

type Order struct {
	ID        string          `json:"id"`
	Symbol    string          `json:"symbol"`
	Side      string          `json:"side"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
	Filled    int64           `json:"filled_quantity"`
	Status    string          `json:"status"`
	Kind      string          `json:"order_kind"`
	UserID    int64           `json:"user_id"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

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

type MatchResponse struct {
	Symbol           string    `json:"symbol"`
	BuyOrdersBefore  int       `json:"buy_orders_before"`
	SellOrdersBefore int       `json:"sell_orders_before"`
	BuyOrdersAfter   int       `json:"buy_orders_after"`
	SellOrdersAfter  int       `json:"sell_orders_after"`
	TradesExecuted   int       `json:"trades_executed"`
	RecentTrades     []Trade   `json:"recent_trades"`
	Timestamp        time.Time `json:"timestamp"`
}

type OrderBookResponse struct {
	Symbol       string    `json:"symbol"`
	BuyOrders    []Order   `json:"open_buy_orders"`
	SellOrders   []Order   `json:"open_sell_orders"`
	RecentTrades []Trade   `json:"recent_trades"`
	Timestamp    time.Time `json:"timestamp"`
}

type CreateAssetRequest struct {
	Symbol            string `json:"symbol" binding:"required"`
	Name              string `json:"name" binding:"required"`
	Type              string `json:"type" binding:"required"`
	Currency          string `json:"currency" binding:"required"`
	Exchange          string `json:"exchange" binding:"required"`
	SharesOutstanding int64  `json:"shares_outstanding"`
}

type SeedResponse struct {
	Message       string    `json:"message"`
	OrdersCreated int       `json:"orders_created"`
	Symbols       []string  `json:"symbols"`
	Timestamp     time.Time `json:"timestamp"`
}

func FromOrder(o *domain.Order) Order {
	return Order{
		ID:        o.ID,
		Symbol:    o.Symbol,
		Side:      string(o.Side),
		Price:     o.Price,
		Quantity:  o.Quantity,
		Filled:    o.Filled,
		Status:    string(o.Status),
		Kind:      string(o.Kind),
		UserID:    o.UserID,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func FromOrders(orders []domain.Order) []Order {
	res := make([]Order, len(orders))
	for i := range orders {
		res[i] = FromOrder(&orders[i])
	}
	return res
}

func FromTrade(t *domain.Trade) Trade {
	return Trade{
		ID:          t.ID,
		Symbol:      t.Symbol,
		BuyerID:     t.BuyerID,
		SellerID:    t.SellerID,
		Price:       t.Price,
		Quantity:    t.Quantity,
		ExecutedAt:  t.ExecutedAt,
		BuyOrderID:  t.BuyOrderID,
		SellOrderID: t.SellOrderID,
	}
}

func FromTrades(trades []domain.Trade) []Trade {
	res := make([]Trade, len(trades))
	for i := range trades {
		res[i] = FromTrade(&trades[i])
	}
	return res
}
