package core

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nilzex/exchange/internal/domain"
)

// MatchResult carries everything one match produced. Entries are in a fixed
// order: buyer debit cash, buyer credit asset, seller debit asset, seller
// credit cash.
type MatchResult struct {
	Trade   domain.Trade
	Entries [4]domain.LedgerEntry
	Buy     domain.Order
	Sell    domain.Order
}

// ExecuteMatch fills one crossing buy/sell pair and derives the trade plus
// its four balanced ledger entries. Orders come in and go out by value; the
// caller owns persistence and has already verified the preconditions (same
// symbol, buy side vs sell side, both OPEN, different owners, buy price >=
// sell price). The execution price is the resting sell order's price and the
// quantity is the smaller remaining quantity of the two.
func ExecuteMatch(buy, sell domain.Order, cashAsset string, now time.Time) MatchResult {
	qty := buy.Remaining()
	if r := sell.Remaining(); r < qty {
		qty = r
	}

	price := sell.Price
	value := price.Mul(decimal.NewFromInt(qty))
	qtyDec := decimal.NewFromInt(qty)

	buy.Filled += qty
	sell.Filled += qty
	buy.UpdatedAt = now
	sell.UpdatedAt = now
	if buy.Filled == buy.Quantity {
		buy.Status = domain.Completed
	}
	if sell.Filled == sell.Quantity {
		sell.Status = domain.Completed
	}

	trade := domain.Trade{
		Symbol:      buy.Symbol,
		BuyerID:     buy.UserID,
		SellerID:    sell.UserID,
		Price:       price,
		Quantity:    qty,
		ExecutedAt:  now,
		BuyOrderID:  buy.ID,
		SellOrderID: sell.ID,
	}

	return MatchResult{
		Trade: trade,
		Entries: [4]domain.LedgerEntry{
			newEntry(buy.UserID, domain.DebitCash, cashAsset, value, now),
			newEntry(buy.UserID, domain.CreditAsset, buy.Symbol, qtyDec, now),
			newEntry(sell.UserID, domain.DebitAsset, sell.Symbol, qtyDec, now),
			newEntry(sell.UserID, domain.CreditCash, cashAsset, value, now),
		},
		Buy:  buy,
		Sell: sell,
	}
}

func newEntry(userID int64, kind domain.EntryKind, asset string, amount decimal.Decimal, now time.Time) domain.LedgerEntry {
	return domain.LedgerEntry{
		UserID:    userID,
		Kind:      kind,
		Asset:     asset,
		Amount:    amount,
		CreatedAt: now,
	}
}
