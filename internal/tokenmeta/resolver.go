// Package tokenmeta resolves the decimals, symbol and name of tokens entering the engine.
package tokenmeta

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/CasuinoOfficial/bonding-curve/internal/model"
)

// Resolver looks up metadata for a token.
type Resolver interface {
	Resolve(ctx context.Context, token common.Address) (model.TokenMeta, error)
}

// Cache caches token metadata by address.
type Cache struct {
	mu   sync.RWMutex
	data map[common.Address]model.TokenMeta
}

func NewCache() *Cache {
	return &Cache{data: make(map[common.Address]model.TokenMeta)}
}

func (c *Cache) Get(address common.Address) (model.TokenMeta, bool) {
	c.mu.RLock()
	meta, ok := c.data[address]
	c.mu.RUnlock()
	return meta, ok
}

func (c *Cache) Set(address common.Address, meta model.TokenMeta) {
	c.mu.Lock()
	c.data[address] = meta
	c.mu.Unlock()
}

// StaticResolver answers from a fixed table, falling back to Decimals for unknown tokens.
type StaticResolver struct {
	Decimals uint8
	Known    map[common.Address]model.TokenMeta
}

func (s StaticResolver) Resolve(_ context.Context, token common.Address) (model.TokenMeta, error) {
	if meta, ok := s.Known[token]; ok {
		meta.Address = token.Hex()
		return meta, nil
	}
	return model.TokenMeta{Address: token.Hex(), Decimals: s.Decimals}, nil
}
