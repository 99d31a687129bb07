package core

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/nilzex/exchange/internal/domain"
)

type demoOrder struct {
	symbol string
	side   domain.Side
	price  string
	qty    int64
	userID int64
}

var demoOrders = []demoOrder{
	{"AAPL", domain.Buy, "150.00", 100, 1},
	{"AAPL", domain.Buy, "149.50", 200, 2},
	{"AAPL", domain.Buy, "149.00", 150, 3},
	{"AAPL", domain.Sell, "150.50", 80, 4},
	{"AAPL", domain.Sell, "151.00", 120, 5},
	{"AAPL", domain.Sell, "151.50", 200, 6},
	{"TSLA", domain.Buy, "250.00", 50, 1},
	{"TSLA", domain.Sell, "255.00", 75, 2},
}

// SeedDemoData places a fixed set of limit orders for manual testing and
// demos. Returns the number of orders created and the symbols touched.
func (e *Engine) SeedDemoData(ctx context.Context) (int, []string, error) {
	seen := make(map[string]bool)
	var symbols []string
	for _, d := range demoOrders {
		price, err := decimal.NewFromString(d.price)
		if err != nil {
			return 0, nil, fmt.Errorf("demo price %q: %w", d.price, err)
		}
		if _, err := e.PlaceOrder(ctx, d.symbol, d.side, price, d.qty, d.userID, domain.Limit); err != nil {
			return 0, nil, err
		}
		if !seen[d.symbol] {
			seen[d.symbol] = true
			symbols = append(symbols, d.symbol)
		}
	}
	return len(demoOrders), symbols, nil
}
