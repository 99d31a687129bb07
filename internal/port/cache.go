package port

import (
	"context"

	"github.com/nilzex/exchange/internal/domain"
)

type Cache interface {
	SetBook(ctx context.Context, symbol string, book *domain.BookSnapshot) error
	GetBook(ctx context.Context, symbol string) (*domain.BookSnapshot, error)
	Invalidate(ctx context.Context, symbol string) error
}

// TradePublisher receives every executed trade; implementations must not
// block the matching loop.
type TradePublisher interface {
	PublishTrade(t domain.Trade)
}
