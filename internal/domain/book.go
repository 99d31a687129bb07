package domain

import "time"

// BookSnapshot is a read-only projection of one symbol's open orders and
// recent trades. Buys are price desc / created asc, sells price asc /
// created asc, the same ordering the matching engine consumes.
type BookSnapshot struct {
	Symbol       string    `json:"symbol"`
	BuyOrders    []Order   `json:"open_buy_orders"`
	SellOrders   []Order   `json:"open_sell_orders"`
	RecentTrades []Trade   `json:"recent_trades"`
	Timestamp    time.Time `json:"timestamp"`
}

// MatchReport summarizes one matching invocation for a symbol.
type MatchReport struct {
	Symbol           string    `json:"symbol"`
	BuyOrdersBefore  int       `json:"buy_orders_before"`
	SellOrdersBefore int       `json:"sell_orders_before"`
	BuyOrdersAfter   int       `json:"buy_orders_after"`
	SellOrdersAfter  int       `json:"sell_orders_after"`
	TradesExecuted   int       `json:"trades_executed"`
	RecentTrades     []Trade   `json:"recent_trades"`
	Timestamp        time.Time `json:"timestamp"`
}
