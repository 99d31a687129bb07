package pg

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nilzex/exchange/internal/domain"
	"github.com/nilzex/exchange/internal/port"
)

var _ port.Tx = (*pgTx)(nil)

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) SaveOrder(ctx context.Context, o *domain.Order) error {
	return saveOrder(ctx, t.tx, o)
}

func (t *pgTx) SaveTrade(ctx context.Context, tr *domain.Trade) error {
	if tr == nil {
		return errors.New("nil trade")
	}
	if tr.ID == "" {
		tr.ID = uuid.NewString()
	}
	_, err := t.tx.Exec(ctx, `
INSERT INTO trades(id, symbol, buyer_id, seller_id, price, quantity, executed_at, buy_order_id, sell_order_id)
VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9)
`, tr.ID, tr.Symbol, tr.BuyerID, tr.SellerID, tr.Price, tr.Quantity,
		tr.ExecutedAt, tr.BuyOrderID, tr.SellOrderID)
	return err
}

func (t *pgTx) SaveLedgerEntries(ctx context.Context, entries []domain.LedgerEntry) error {
	batch := &pgx.Batch{}
	for i := range entries {
		if entries[i].ID == "" {
			entries[i].ID = uuid.NewString()
		}
		e := entries[i]
		batch.Queue(`
INSERT INTO ledger_entries(id, user_id, kind, asset, amount, created_at, trade_id)
VALUES($1,$2,$3,$4,$5,$6,$7)
`, e.ID, e.UserID, string(e.Kind), e.Asset, e.Amount, e.CreatedAt, e.TradeID)
	}
	return t.tx.SendBatch(ctx, batch).Close()
}

func (t *pgTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *pgTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}
