// Package pricing defines the optional franchise/benchmark pricing
// collaborator consumed by the opportunity filter.
package pricing

import (
	"context"
	"time"

	"github.com/angelmondragon/sourcing-engine/pkg/redis"
	"github.com/shopspring/decimal"
)

// Benchmark supplies reference pricing signals for a part. Both lookups may
// report absent data; the opportunity filter fails open in that case.
type Benchmark interface {
	ReferencePrice(ctx context.Context, partNumber string) (decimal.NullDecimal, error)
	FranchiseQuantity(ctx context.Context, partNumber string) (*int, error)
}

// Unavailable is the benchmark used when no pricing collaborator is
// configured. Every lookup reports absent data.
type Unavailable struct{}

func (Unavailable) ReferencePrice(context.Context, string) (decimal.NullDecimal, error) {
	return decimal.NullDecimal{}, nil
}

func (Unavailable) FranchiseQuantity(context.Context, string) (*int, error) {
	return nil, nil
}

const cacheTTL = time.Hour

// Cached wraps a Benchmark with a redis cache for reference prices.
// Benchmark prices move slowly relative to a batch run, so a short TTL is
// plenty. Absent prices are not cached.
type Cached struct {
	inner  Benchmark
	client *redis.Client
}

func NewCached(inner Benchmark, client *redis.Client) *Cached {
	return &Cached{inner: inner, client: client}
}

func (c *Cached) ReferencePrice(ctx context.Context, partNumber string) (decimal.NullDecimal, error) {
	key := c.client.BenchmarkKey(partNumber)
	if raw, err := c.client.Get(ctx, key); err == nil {
		if value, parseErr := decimal.NewFromString(raw); parseErr == nil {
			return decimal.NullDecimal{Decimal: value, Valid: true}, nil
		}
	}

	price, err := c.inner.ReferencePrice(ctx, partNumber)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	if price.Valid {
		// cache write failures are invisible to pricing
		_ = c.client.Set(ctx, key, price.Decimal.String(), cacheTTL)
	}
	return price, nil
}

func (c *Cached) FranchiseQuantity(ctx context.Context, partNumber string) (*int, error) {
	return c.inner.FranchiseQuantity(ctx, partNumber)
}
