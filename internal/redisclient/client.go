package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ShandyAuliaSafiri/Backend-POS-Kasir/internal/models"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// CacheReceipt stores a rendered receipt with TTL. Transactions are immutable
// once committed, so a cached receipt can never go stale within its TTL.
func (c *Client) CacheReceipt(ctx context.Context, receipt *models.Receipt, ttl time.Duration) error {
	data, err := json.Marshal(receipt)
	if err != nil {
		return fmt.Errorf("failed to marshal receipt: %w", err)
	}
	return c.rdb.Set(ctx, fmt.Sprintf("receipt:%s", receipt.ID), data, ttl).Err()
}

// GetReceipt retrieves a cached receipt, or nil on a cache miss.
func (c *Client) GetReceipt(ctx context.Context, transactionID string) (*models.Receipt, error) {
	data, err := c.rdb.Get(ctx, fmt.Sprintf("receipt:%s", transactionID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var receipt models.Receipt
	if err := json.Unmarshal(data, &receipt); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached receipt: %w", err)
	}
	return &receipt, nil
}

// SetLowStockFlag marks a product as low on stock
func (c *Client) SetLowStockFlag(ctx context.Context, productID string, stock int, ttl time.Duration) error {
	return c.rdb.Set(ctx, fmt.Sprintf("lowstock:%s", productID), stock, ttl).Err()
}

// ClearLowStockFlag removes a product's low stock mark
func (c *Client) ClearLowStockFlag(ctx context.Context, productID string) error {
	return c.rdb.Del(ctx, fmt.Sprintf("lowstock:%s", productID)).Err()
}

// GetLowStockProducts returns the product ids currently flagged as low on stock
func (c *Client) GetLowStockProducts(ctx context.Context) ([]string, error) {
	var (
		cursor uint64
		ids    []string
	)
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, "lowstock:*", 100).Result()
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			ids = append(ids, key[len("lowstock:"):])
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return ids, nil
}
