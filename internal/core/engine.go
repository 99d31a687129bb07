package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/nilzex/exchange/internal/domain"
	"github.com/nilzex/exchange/internal/port"
)

var ErrInvalidOrder = errors.New("invalid order")

// Config holds the engine's business parameters.
type Config struct {
	// CashAsset is the currency code used on cash ledger entries.
	CashAsset string
	// RecentTradesLimit caps the recent-trade views on reports and book
	// snapshots.
	RecentTradesLimit int
}

// Engine orchestrates order placement and matching on top of the storage
// collaborator. Matching for one symbol runs as a single sequential unit of
// work; a per-symbol mutex keeps two invocations for the same symbol, or a
// placement and a match, from interleaving their reads and writes.
type Engine struct {
	repo  port.Repository
	cache port.Cache
	feed  port.TradePublisher
	log   *zap.Logger
	cfg   Config

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewEngine(repo port.Repository, cache port.Cache, feed port.TradePublisher, log *zap.Logger, cfg Config) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.CashAsset == "" {
		cfg.CashAsset = "SEK"
	}
	if cfg.RecentTradesLimit <= 0 {
		cfg.RecentTradesLimit = 10
	}
	return &Engine{
		repo:  repo,
		cache: cache,
		feed:  feed,
		log:   log,
		cfg:   cfg,
		locks: make(map[string]*sync.Mutex),
	}
}

// PlaceOrder validates and stores a new OPEN order with filled=0. It never
// matches; crossing is resolved by a later MatchSymbol call.
func (e *Engine) PlaceOrder(ctx context.Context, symbol string, side domain.Side, price decimal.Decimal, quantity, userID int64, kind domain.OrderKind) (*domain.Order, error) {
	if kind == "" {
		kind = domain.Limit
	}
	if err := validateOrder(symbol, side, price, quantity, kind); err != nil {
		return nil, err
	}

	lock := e.symbolLock(symbol)
	lock.Lock()
	defer lock.Unlock()

	now := time.Now()
	o := &domain.Order{
		Symbol:    symbol,
		Side:      side,
		Price:     price,
		Quantity:  quantity,
		Filled:    0,
		Status:    domain.Open,
		Kind:      kind,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.repo.SaveOrder(ctx, o); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}
	e.invalidateBook(ctx, symbol)
	e.log.Info("order placed",
		zap.String("order_id", o.ID),
		zap.String("symbol", symbol),
		zap.String("side", string(side)),
		zap.String("price", price.String()),
		zap.Int64("quantity", quantity),
		zap.Int64("user_id", userID))
	return o, nil
}

// MatchSymbol processes all currently crossable orders for one symbol to
// exhaustion. Buys arrive price desc / created asc and sells price asc /
// created asc; the walk below leans on that: when the pair at the cursors
// does not cross, no deeper sell price can cross the current buy either, so
// only the sell cursor moves. Each matched pair commits as one transaction;
// a persistence failure rolls that pair back and aborts the invocation.
func (e *Engine) MatchSymbol(ctx context.Context, symbol string) (*domain.MatchReport, error) {
	lock := e.symbolLock(symbol)
	lock.Lock()
	defer lock.Unlock()

	buys, err := e.repo.OpenBuyOrders(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("load buy orders: %w", err)
	}
	sells, err := e.repo.OpenSellOrders(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("load sell orders: %w", err)
	}

	report := &domain.MatchReport{
		Symbol:           symbol,
		BuyOrdersBefore:  len(buys),
		SellOrdersBefore: len(sells),
	}

	buyIdx, sellIdx := 0, 0
	for buyIdx < len(buys) && sellIdx < len(sells) {
		buy, sell := buys[buyIdx], sells[sellIdx]

		if !canMatch(&buy, &sell) {
			sellIdx++
			continue
		}

		res := ExecuteMatch(buy, sell, e.cfg.CashAsset, time.Now())
		if err := e.persistMatch(ctx, &res); err != nil {
			e.log.Error("match persistence failed",
				zap.String("symbol", symbol),
				zap.String("buy_order_id", buy.ID),
				zap.String("sell_order_id", sell.ID),
				zap.Error(err))
			return nil, fmt.Errorf("persist match: %w", err)
		}
		report.TradesExecuted++
		buys[buyIdx], sells[sellIdx] = res.Buy, res.Sell
		if e.feed != nil {
			e.feed.PublishTrade(res.Trade)
		}
		e.log.Info("trade executed",
			zap.String("trade_id", res.Trade.ID),
			zap.String("symbol", symbol),
			zap.String("price", res.Trade.Price.String()),
			zap.Int64("quantity", res.Trade.Quantity),
			zap.Int64("buyer_id", res.Trade.BuyerID),
			zap.Int64("seller_id", res.Trade.SellerID))

		// A cursor advances when its order completed, or in the degenerate
		// case where remaining hit zero without completion, so the loop
		// always terminates.
		if res.Buy.Status == domain.Completed || res.Buy.Remaining() <= 0 {
			buyIdx++
		}
		if res.Sell.Status == domain.Completed || res.Sell.Remaining() <= 0 {
			sellIdx++
		}
	}

	buysAfter, err := e.repo.OpenBuyOrders(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("load buy orders: %w", err)
	}
	sellsAfter, err := e.repo.OpenSellOrders(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("load sell orders: %w", err)
	}
	recent, err := e.repo.RecentTrades(ctx, symbol, e.cfg.RecentTradesLimit)
	if err != nil {
		return nil, fmt.Errorf("load recent trades: %w", err)
	}

	report.BuyOrdersAfter = len(buysAfter)
	report.SellOrdersAfter = len(sellsAfter)
	report.RecentTrades = recent
	report.Timestamp = time.Now()

	if report.TradesExecuted > 0 {
		e.invalidateBook(ctx, symbol)
	}
	return report, nil
}

// canMatch is the crossing predicate: prices overlap, same symbol, different
// owners, both orders still open.
func canMatch(buy, sell *domain.Order) bool {
	return buy.Price.GreaterThanOrEqual(sell.Price) &&
		buy.Symbol == sell.Symbol &&
		buy.UserID != sell.UserID &&
		buy.Status == domain.Open &&
		sell.Status == domain.Open
}

// persistMatch commits one matched pair as a single all-or-nothing unit: two
// order updates, the trade insert and the four ledger entries. The trade ID
// is assigned by the store inside the transaction, so the entries pick up
// their back-reference before they are saved.
func (e *Engine) persistMatch(ctx context.Context, res *MatchResult) error {
	return withTx(ctx, e.repo, func(tx port.Tx) error {
		if err := tx.SaveTrade(ctx, &res.Trade); err != nil {
			return err
		}
		entries := res.Entries[:]
		for i := range entries {
			entries[i].TradeID = res.Trade.ID
		}
		if err := tx.SaveLedgerEntries(ctx, entries); err != nil {
			return err
		}
		if err := tx.SaveOrder(ctx, &res.Buy); err != nil {
			return err
		}
		return tx.SaveOrder(ctx, &res.Sell)
	})
}

// OrderBook returns the read-only book projection for a symbol, served from
// cache when fresh.
func (e *Engine) OrderBook(ctx context.Context, symbol string) (*domain.BookSnapshot, error) {
	if e.cache != nil {
		if book, err := e.cache.GetBook(ctx, symbol); err == nil && book != nil {
			return book, nil
		}
	}

	buys, err := e.repo.OpenBuyOrders(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("load buy orders: %w", err)
	}
	sells, err := e.repo.OpenSellOrders(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("load sell orders: %w", err)
	}
	recent, err := e.repo.RecentTrades(ctx, symbol, e.cfg.RecentTradesLimit)
	if err != nil {
		return nil, fmt.Errorf("load recent trades: %w", err)
	}

	book := &domain.BookSnapshot{
		Symbol:       symbol,
		BuyOrders:    buys,
		SellOrders:   sells,
		RecentTrades: recent,
		Timestamp:    time.Now(),
	}
	if e.cache != nil {
		_ = e.cache.SetBook(ctx, symbol, book)
	}
	return book, nil
}

// UserOrders returns a user's orders, newest first.
func (e *Engine) UserOrders(ctx context.Context, userID int64) ([]domain.Order, error) {
	return e.repo.OrdersByUser(ctx, userID)
}

func (e *Engine) symbolLock(symbol string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.locks[symbol]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[symbol] = lock
	}
	return lock
}

func (e *Engine) invalidateBook(ctx context.Context, symbol string) {
	if e.cache == nil {
		return
	}
	if err := e.cache.Invalidate(ctx, symbol); err != nil {
		e.log.Warn("book cache invalidation failed", zap.String("symbol", symbol), zap.Error(err))
	}
}

func validateOrder(symbol string, side domain.Side, price decimal.Decimal, quantity int64, kind domain.OrderKind) error {
	if symbol == "" {
		return fmt.Errorf("%w: symbol required", ErrInvalidOrder)
	}
	switch side {
	case domain.Buy, domain.Sell:
	default:
		return fmt.Errorf("%w: unknown side %q", ErrInvalidOrder, side)
	}
	switch kind {
	case domain.Limit, domain.Market, domain.Stop:
	default:
		return fmt.Errorf("%w: unknown order kind %q", ErrInvalidOrder, kind)
	}
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidOrder)
	}
	if !price.IsPositive() {
		return fmt.Errorf("%w: price must be positive", ErrInvalidOrder)
	}
	return nil
}
