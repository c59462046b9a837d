package server

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/spyro-labs/spyro-relayer/core"
)

const DefaultCacheSize = 1024

// ResultCache keeps the most recent relay results in memory for the API.
type ResultCache struct {
	cache *lru.Cache[core.MessageID, core.RelayResult]
}

var _ core.ResultSink = (*ResultCache)(nil)

func NewResultCache(size int) (*ResultCache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[core.MessageID, core.RelayResult](size)
	if err != nil {
		return nil, err
	}
	return &ResultCache{cache: cache}, nil
}

// Report records a result, replacing any earlier result of the same message.
func (c *ResultCache) Report(_ context.Context, result core.RelayResult) {
	c.cache.Add(result.MessageID, result)
}

func (c *ResultCache) Get(id core.MessageID) (core.RelayResult, bool) {
	return c.cache.Peek(id)
}

// Results returns the cached results, newest first, optionally filtered by status.
func (c *ResultCache) Results(status core.Status, limit int) []core.RelayResult {
	keys := c.cache.Keys()
	results := make([]core.RelayResult, 0, len(keys))
	for i := len(keys) - 1; i >= 0; i-- {
		r, ok := c.cache.Peek(keys[i])
		if !ok || (status != "" && r.Status != status) {
			continue
		}
		results = append(results, r)
		if limit > 0 && len(results) == limit {
			break
		}
	}
	return results
}

func (c *ResultCache) Len() int {
	return c.cache.Len()
}
