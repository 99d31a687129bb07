package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type EntryKind string

const (
	DebitCash   EntryKind = "DEBIT_CASH"
	CreditCash  EntryKind = "CREDIT_CASH"
	DebitAsset  EntryKind = "DEBIT_ASSET"
	CreditAsset EntryKind = "CREDIT_ASSET"
)

// LedgerEntry is one atomic accounting movement caused by a trade. Amount is
// always non-negative; the sign is implied by Kind. Asset holds a currency
// code for cash movements and the traded symbol for asset movements. Every
// trade produces exactly four entries forming a balanced double-entry group.
type LedgerEntry struct {
	ID        string          `json:"id"`
	UserID    int64           `json:"user_id"`
	Kind      EntryKind       `json:"kind"`
	Asset     string          `json:"asset"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
	TradeID   string          `json:"trade_id"`
}
