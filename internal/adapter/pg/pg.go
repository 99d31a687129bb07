package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nilzex/exchange/internal/domain"
	"github.com/nilzex/exchange/internal/port"
)

var _ port.Repository = (*PgRepo)(nil)

type PgRepo struct {
	pool *pgxpool.Pool
}

// NewPgRepo connects a pool to dsn. Call Close when finished.
func NewPgRepo(ctx context.Context, dsn string) (*PgRepo, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: create pool: %w", err)
	}
	return &PgRepo{pool: pool}, nil
}

func NewRepository(pool *pgxpool.Pool) *PgRepo {
	return &PgRepo{pool: pool}
}

func (p *PgRepo) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

const orderColumns = `id, symbol, side, price, quantity, filled_quantity, status, order_kind, user_id, created_at, updated_at`

const saveOrderSQL = `
INSERT INTO orders(id, symbol, side, price, quantity, filled_quantity, status, order_kind, user_id, created_at, updated_at)
VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
ON CONFLICT (id) DO UPDATE SET
  filled_quantity = EXCLUDED.filled_quantity,
  status = EXCLUDED.status,
  updated_at = EXCLUDED.updated_at
`

func (p *PgRepo) SaveOrder(ctx context.Context, o *domain.Order) error {
	return saveOrder(ctx, p.pool, o)
}

// execer is satisfied by both *pgxpool.Pool and pgx.Tx, so order writes share
// one code path inside and outside transactions.
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func saveOrder(ctx context.Context, q execer, o *domain.Order) error {
	if o == nil {
		return errors.New("nil order")
	}
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	_, err := q.Exec(ctx, saveOrderSQL,
		o.ID, o.Symbol, string(o.Side), o.Price, o.Quantity, o.Filled,
		string(o.Status), string(o.Kind), o.UserID, o.CreatedAt, o.UpdatedAt)
	return err
}

// OpenBuyOrders returns open BUY orders price desc, created asc. The ORDER BY
// is the engine's fairness contract; do not relax it.
func (p *PgRepo) OpenBuyOrders(ctx context.Context, symbol string) ([]domain.Order, error) {
	return p.queryOrders(ctx, `
SELECT `+orderColumns+`
FROM orders
WHERE symbol = $1 AND side = 'BUY' AND status = 'OPEN'
ORDER BY price DESC, created_at ASC
`, symbol)
}

// OpenSellOrders returns open SELL orders price asc, created asc.
func (p *PgRepo) OpenSellOrders(ctx context.Context, symbol string) ([]domain.Order, error) {
	return p.queryOrders(ctx, `
SELECT `+orderColumns+`
FROM orders
WHERE symbol = $1 AND side = 'SELL' AND status = 'OPEN'
ORDER BY price ASC, created_at ASC
`, symbol)
}

func (p *PgRepo) OrdersByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	return p.queryOrders(ctx, `
SELECT `+orderColumns+`
FROM orders
WHERE user_id = $1
ORDER BY created_at DESC
`, userID)
}

func (p *PgRepo) queryOrders(ctx context.Context, sql string, args ...any) ([]domain.Order, error) {
	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Order
	for rows.Next() {
		var o domain.Order
		var side, kind, status string
		if err := rows.Scan(&o.ID, &o.Symbol, &side, &o.Price, &o.Quantity, &o.Filled,
			&status, &kind, &o.UserID, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		o.Side = domain.Side(side)
		o.Kind = domain.OrderKind(kind)
		o.Status = domain.OrderStatus(status)
		res = append(res, o)
	}
	return res, rows.Err()
}

func (p *PgRepo) RecentTrades(ctx context.Context, symbol string, limit int) ([]domain.Trade, error) {
	return p.queryTrades(ctx, `
SELECT id, symbol, buyer_id, seller_id, price, quantity, executed_at, buy_order_id, sell_order_id
FROM trades
WHERE symbol = $1
ORDER BY executed_at DESC
LIMIT $2
`, symbol, limit)
}

func (p *PgRepo) TradesBySymbol(ctx context.Context, symbol string) ([]domain.Trade, error) {
	return p.queryTrades(ctx, `
SELECT id, symbol, buyer_id, seller_id, price, quantity, executed_at, buy_order_id, sell_order_id
FROM trades
WHERE symbol = $1
ORDER BY executed_at DESC
`, symbol)
}

func (p *PgRepo) queryTrades(ctx context.Context, sql string, args ...any) ([]domain.Trade, error) {
	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Trade
	for rows.Next() {
		var t domain.Trade
		if err := rows.Scan(&t.ID, &t.Symbol, &t.BuyerID, &t.SellerID, &t.Price,
			&t.Quantity, &t.ExecutedAt, &t.BuyOrderID, &t.SellOrderID); err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

func (p *PgRepo) SaveAsset(ctx context.Context, a *domain.Asset) error {
	if a == nil {
		return errors.New("nil asset")
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := p.pool.Exec(ctx, `
INSERT INTO assets(id, symbol, name, type, currency, exchange, shares_outstanding, created_at)
VALUES($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (symbol) DO UPDATE SET
  name = EXCLUDED.name,
  type = EXCLUDED.type,
  currency = EXCLUDED.currency,
  exchange = EXCLUDED.exchange,
  shares_outstanding = EXCLUDED.shares_outstanding
`, a.ID, a.Symbol, a.Name, a.Type, a.Currency, a.Exchange, a.SharesOutstanding, a.CreatedAt)
	return err
}

func (p *PgRepo) Assets(ctx context.Context) ([]domain.Asset, error) {
	rows, err := p.pool.Query(ctx, `
SELECT id, symbol, name, type, currency, exchange, shares_outstanding, created_at
FROM assets
ORDER BY symbol ASC
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Asset
	for rows.Next() {
		var a domain.Asset
		if err := rows.Scan(&a.ID, &a.Symbol, &a.Name, &a.Type, &a.Currency,
			&a.Exchange, &a.SharesOutstanding, &a.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, rows.Err()
}

func (p *PgRepo) AssetBySymbol(ctx context.Context, symbol string) (*domain.Asset, error) {
	var a domain.Asset
	err := p.pool.QueryRow(ctx, `
SELECT id, symbol, name, type, currency, exchange, shares_outstanding, created_at
FROM assets
WHERE symbol = $1
`, symbol).Scan(&a.ID, &a.Symbol, &a.Name, &a.Type, &a.Currency,
		&a.Exchange, &a.SharesOutstanding, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("asset %s: not found", symbol)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (p *PgRepo) BeginTx(ctx context.Context) (port.Tx, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("pg: begin tx: %w", err)
	}
	return &pgTx{tx: tx}, nil
}
