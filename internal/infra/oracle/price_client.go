package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
)

const redisRateKey = "price:SOL:USD"

// RateClient fetches the SOL/USD exchange rate with a refresh window and a
// last-known-good fallback. A stale price is always preferred over
// blocking checkout.
type RateClient struct {
	feedURL    string
	refresh    time.Duration
	httpClient *http.Client
	rdb        *redis.Client

	mu        sync.Mutex
	rate      decimal.Decimal
	fetchedAt time.Time
}

func NewRateClient(feedURL string, refresh time.Duration, seed decimal.Decimal) *RateClient {
	return &RateClient{
		feedURL:    feedURL,
		refresh:    refresh,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		rate:       seed,
	}
}

func (c *RateClient) SetRedisClient(client *redis.Client) {
	c.rdb = client
}

// GetExchangeRate returns how many quote units one base unit buys. Only
// SOL/USD is served; USDC is treated as 1:1 with USD at checkout.
func (c *RateClient) GetExchangeRate(ctx context.Context, base, quote string) (decimal.Decimal, error) {
	if base != "SOL" || quote != "USD" {
		return decimal.Zero, fmt.Errorf("unsupported pair %s/%s", base, quote)
	}

	c.mu.Lock()
	fresh := time.Since(c.fetchedAt) < c.refresh && !c.fetchedAt.IsZero()
	cached := c.rate
	c.mu.Unlock()

	if fresh {
		return cached, nil
	}

	rate, err := c.fetch(ctx)
	if err != nil {
		log.Printf("price fetch failed, serving cached rate: %v", err)
		if mirrored, ok := c.fromRedis(ctx); ok {
			return mirrored, nil
		}
		return cached, nil
	}

	c.mu.Lock()
	c.rate = rate
	c.fetchedAt = time.Now()
	c.mu.Unlock()

	if c.rdb != nil {
		c.rdb.Set(ctx, redisRateKey, rate.String(), c.refresh)
	}

	return rate, nil
}

// Run refreshes the rate on the configured interval until ctx is done, so
// checkout requests mostly hit a warm cache.
func (c *RateClient) Run(ctx context.Context) {
	ticker := time.NewTicker(c.refresh)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			c.fetchedAt = time.Time{}
			c.mu.Unlock()
			if _, err := c.GetExchangeRate(ctx, "SOL", "USD"); err != nil {
				log.Printf("price refresh: %v", err)
			}
		}
	}
}

func (c *RateClient) fetch(ctx context.Context) (decimal.Decimal, error) {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("price feed returned status %d", resp.StatusCode)
	}

	// CoinGecko simple-price shape: {"solana":{"usd":123.45}}
	var body map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, err
	}
	usd, ok := body["solana"]["usd"]
	if !ok || usd <= 0 {
		return decimal.Zero, fmt.Errorf("price feed returned no usable rate")
	}
	return decimal.NewFromFloat(usd), nil
}

func (c *RateClient) fromRedis(ctx context.Context) (decimal.Decimal, bool) {
	if c.rdb == nil {
		return decimal.Zero, false
	}
	s, err := c.rdb.Get(ctx, redisRateKey).Result()
	if err != nil {
		return decimal.Zero, false
	}
	rate, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return rate, true
}
