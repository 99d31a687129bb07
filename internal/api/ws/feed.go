package ws

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/nilzex/exchange/internal/domain"
	"github.com/nilzex/exchange/internal/port"
)

var _ port.TradePublisher = (*Feed)(nil)

type subscriber struct {
	ch chan domain.Trade
}

// Feed fans executed trades out to websocket clients. Broadcast never blocks
// the matching loop: a subscriber that cannot keep up drops messages.
type Feed struct {
	log      *zap.Logger
	upgrader websocket.Upgrader

	mu   sync.RWMutex
	subs map[*subscriber]struct{}
}

func NewFeed(log *zap.Logger) *Feed {
	if log == nil {
		log = zap.NewNop()
	}
	return &Feed{
		log: log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		subs: make(map[*subscriber]struct{}),
	}
}

func (f *Feed) PublishTrade(t domain.Trade) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for sub := range f.subs {
		select {
		case sub.ch <- t:
		default:
		}
	}
}

func (f *Feed) subscribe() *subscriber {
	sub := &subscriber{ch: make(chan domain.Trade, 64)}
	f.mu.Lock()
	f.subs[sub] = struct{}{}
	f.mu.Unlock()
	return sub
}

func (f *Feed) unsubscribe(sub *subscriber) {
	f.mu.Lock()
	delete(f.subs, sub)
	f.mu.Unlock()
	close(sub.ch)
}

// ServeHTTP upgrades the connection and streams trades as JSON until the
// client goes away.
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	sub := f.subscribe()
	defer func() {
		f.unsubscribe(sub)
		_ = conn.Close()
	}()

	done := make(chan struct{})
	go func() {
		// Drain client frames so close handshakes are noticed.
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case t, ok := <-sub.ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(t); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
