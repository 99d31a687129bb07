package port

import (
	"context"

	"github.com/nilzex/exchange/internal/domain"
)

// Repository is the storage collaborator of the matching core. The two
// candidate queries carry the fairness contract: OpenBuyOrders returns price
// desc / created asc, OpenSellOrders price asc / created asc. The engine's
// cursor walk is only correct against those orderings.
type Repository interface {
	// SaveOrder inserts or overwrites an order, assigning the ID on first
	// persistence.
	SaveOrder(ctx context.Context, o *domain.Order) error
	OpenBuyOrders(ctx context.Context, symbol string) ([]domain.Order, error)
	OpenSellOrders(ctx context.Context, symbol string) ([]domain.Order, error)
	OrdersByUser(ctx context.Context, userID int64) ([]domain.Order, error)
	RecentTrades(ctx context.Context, symbol string, limit int) ([]domain.Trade, error)
	TradesBySymbol(ctx context.Context, symbol string) ([]domain.Trade, error)

	SaveAsset(ctx context.Context, a *domain.Asset) error
	Assets(ctx context.Context) ([]domain.Asset, error)
	AssetBySymbol(ctx context.Context, symbol string) (*domain.Asset, error)

	BeginTx(ctx context.Context) (Tx, error)
}

// Tx is the atomic unit for one matched pair: two order updates, one trade
// insert and a batch of ledger entries commit together or not at all.
// SaveTrade assigns the trade ID so ledger entries can back-reference it
// before SaveLedgerEntries runs.
type Tx interface {
	SaveOrder(ctx context.Context, o *domain.Order) error
	SaveTrade(ctx context.Context, t *domain.Trade) error
	SaveLedgerEntries(ctx context.Context, entries []domain.LedgerEntry) error

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
