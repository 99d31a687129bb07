package in_memory

import (
	"context"
	"sync"

	"github.com/nilzex/exchange/internal/domain"
	"github.com/nilzex/exchange/internal/port"
)

var _ port.Cache = (*Cache)(nil)

type Cache struct {
	mu    sync.Mutex
	store map[string]*domain.BookSnapshot
}

func NewCache() *Cache {
	return &Cache{store: make(map[string]*domain.BookSnapshot)}
}

func (c *Cache) SetBook(ctx context.Context, symbol string, book *domain.BookSnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *book
	c.store[symbol] = &cp
	return nil
}

func (c *Cache) GetBook(ctx context.Context, symbol string) (*domain.BookSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	book, ok := c.store[symbol]
	if !ok {
		return nil, nil
	}
	cp := *book
	return &cp, nil
}

func (c *Cache) Invalidate(ctx context.Context, symbol string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, symbol)
	return nil
}
