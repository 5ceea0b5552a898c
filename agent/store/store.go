package store

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound    = errors.New("item not found")
	ErrUnavailable = errors.New("store unavailable")
	ErrInvalidKey  = errors.New("partition and sort key are required")
)

// Item is one record addressed by a composite key.
type Item struct {
	PartitionKey string
	SortKey      string
	Data         []byte
}

// Client is the composite-key persistence contract. Query returns items of a
// partition whose sort key starts with skPrefix, ascending by sort key.
type Client interface {
	Put(ctx context.Context, item Item) error
	Get(ctx context.Context, partitionKey, sortKey string) (Item, error)
	Query(ctx context.Context, partitionKey, sortKeyPrefix string) ([]Item, error)
	Close() error
}

// Config selects and tunes the backend. Loaded with prefix "STORE".
type Config struct {
	Backend  string        `default:"memory"`
	Timeout  time.Duration `default:"3s"`
	Attempts int           `default:"3"`
	Backoff  time.Duration `default:"100ms"`
}

const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendUpstash  = "upstash"
)

func validateKey(partitionKey, sortKey string) error {
	if strings.TrimSpace(partitionKey) == "" || strings.TrimSpace(sortKey) == "" {
		return ErrInvalidKey
	}
	return nil
}
