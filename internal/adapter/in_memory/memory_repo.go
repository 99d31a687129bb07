package in_memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/nilzex/exchange/internal/domain"
	"github.com/nilzex/exchange/internal/port"
)

var ErrNotFound = errors.New("not found")

var _ port.Repository = (*MemoryRepo)(nil)

// MemoryRepo keeps everything in process memory. It backs tests and DB-less
// development runs. Orders keep insertion order so equal-price, equal-time
// candidates stay FIFO under the stable sorts below.
type MemoryRepo struct {
	mu      sync.Mutex
	orders  []*domain.Order
	byID    map[string]int
	trades  []domain.Trade
	entries []domain.LedgerEntry
	assets  map[string]domain.Asset
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:   make(map[string]int),
		assets: make(map[string]domain.Asset),
	}
}

func (r *MemoryRepo) SaveOrder(ctx context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveOrderLocked(o)
	return nil
}

func (r *MemoryRepo) saveOrderLocked(o *domain.Order) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	cp := *o
	if i, ok := r.byID[o.ID]; ok {
		r.orders[i] = &cp
		return
	}
	r.byID[o.ID] = len(r.orders)
	r.orders = append(r.orders, &cp)
}

func (r *MemoryRepo) OpenBuyOrders(ctx context.Context, symbol string) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := r.openOrdersLocked(symbol, domain.Buy)
	sort.SliceStable(res, func(i, j int) bool {
		if !res[i].Price.Equal(res[j].Price) {
			return res[i].Price.GreaterThan(res[j].Price)
		}
		return res[i].CreatedAt.Before(res[j].CreatedAt)
	})
	return res, nil
}

func (r *MemoryRepo) OpenSellOrders(ctx context.Context, symbol string) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := r.openOrdersLocked(symbol, domain.Sell)
	sort.SliceStable(res, func(i, j int) bool {
		if !res[i].Price.Equal(res[j].Price) {
			return res[i].Price.LessThan(res[j].Price)
		}
		return res[i].CreatedAt.Before(res[j].CreatedAt)
	})
	return res, nil
}

func (r *MemoryRepo) openOrdersLocked(symbol string, side domain.Side) []domain.Order {
	var res []domain.Order
	for _, o := range r.orders {
		if o.Symbol == symbol && o.Side == side && o.Status == domain.Open {
			res = append(res, *o)
		}
	}
	return res
}

func (r *MemoryRepo) OrdersByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []domain.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			res = append(res, *o)
		}
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})
	return res, nil
}

func (r *MemoryRepo) RecentTrades(ctx context.Context, symbol string, limit int) ([]domain.Trade, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []domain.Trade
	for _, t := range r.trades {
		if t.Symbol == symbol {
			res = append(res, t)
		}
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].ExecutedAt.After(res[j].ExecutedAt)
	})
	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (r *MemoryRepo) TradesBySymbol(ctx context.Context, symbol string) ([]domain.Trade, error) {
	return r.RecentTrades(ctx, symbol, 0)
}

// LedgerEntries returns every stored entry; tests use it to check the
// double-entry balance.
func (r *MemoryRepo) LedgerEntries() []domain.LedgerEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]domain.LedgerEntry, len(r.entries))
	copy(res, r.entries)
	return res
}

func (r *MemoryRepo) SaveAsset(ctx context.Context, a *domain.Asset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	r.assets[a.Symbol] = *a
	return nil
}

func (r *MemoryRepo) Assets(ctx context.Context) ([]domain.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]domain.Asset, 0, len(r.assets))
	for _, a := range r.assets {
		res = append(res, a)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Symbol < res[j].Symbol })
	return res, nil
}

func (r *MemoryRepo) AssetBySymbol(ctx context.Context, symbol string) (*domain.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assets[symbol]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (r *MemoryRepo) BeginTx(ctx context.Context) (port.Tx, error) {
	return &memoryTx{repo: r}, nil
}

// memoryTx buffers writes and applies them on Commit under the repository
// lock, so a rolled-back pair leaves no trace. IDs are assigned at staging
// time because ledger entries back-reference the trade ID before commit.
type memoryTx struct {
	repo    *MemoryRepo
	orders  []domain.Order
	trades  []domain.Trade
	entries []domain.LedgerEntry
	done    bool
}

func (t *memoryTx) SaveOrder(ctx context.Context, o *domain.Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	t.orders = append(t.orders, *o)
	return nil
}

func (t *memoryTx) SaveTrade(ctx context.Context, tr *domain.Trade) error {
	if tr.ID == "" {
		tr.ID = uuid.NewString()
	}
	t.trades = append(t.trades, *tr)
	return nil
}

func (t *memoryTx) SaveLedgerEntries(ctx context.Context, entries []domain.LedgerEntry) error {
	for _, e := range entries {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		t.entries = append(t.entries, e)
	}
	return nil
}

func (t *memoryTx) Commit(ctx context.Context) error {
	if t.done {
		return errors.New("tx already finished")
	}
	t.done = true
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()
	for i := range t.orders {
		o := t.orders[i]
		t.repo.saveOrderLocked(&o)
	}
	t.repo.trades = append(t.repo.trades, t.trades...)
	t.repo.entries = append(t.repo.entries, t.entries...)
	return nil
}

func (t *memoryTx) Rollback(ctx context.Context) error {
	t.done = true
	t.orders, t.trades, t.entries = nil, nil, nil
	return nil
}
