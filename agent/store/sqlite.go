package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteConfig struct {
	Path string `default:"caddie.db"`
}

// SQLiteClient stores items in a single local table.
type SQLiteClient struct {
	db *sql.DB
}

const createItemsTable = `CREATE TABLE IF NOT EXISTS round_items (
	partition_key TEXT NOT NULL,
	sort_key TEXT NOT NULL,
	data TEXT NOT NULL,
	PRIMARY KEY (partition_key, sort_key)
);`

func NewSQLiteClient(ctx context.Context, cfg SQLiteConfig) (*SQLiteClient, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// sqlite serializes writers; one connection avoids SQLITE_BUSY under concurrent sessions
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, createItemsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create round_items table: %w", err)
	}
	return &SQLiteClient{db: db}, nil
}

func (s *SQLiteClient) Put(ctx context.Context, item Item) error {
	if err := validateKey(item.PartitionKey, item.SortKey); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO round_items (partition_key, sort_key, data) VALUES (?, ?, ?)
		 ON CONFLICT (partition_key, sort_key) DO UPDATE SET data = excluded.data`,
		item.PartitionKey, item.SortKey, string(item.Data))
	if err != nil {
		return fmt.Errorf("sqlite put: %w", err)
	}
	return nil
}

func (s *SQLiteClient) Get(ctx context.Context, partitionKey, sortKey string) (Item, error) {
	if err := validateKey(partitionKey, sortKey); err != nil {
		return Item{}, err
	}
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM round_items WHERE partition_key = ? AND sort_key = ?`,
		partitionKey, sortKey).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, ErrNotFound
	}
	if err != nil {
		return Item{}, fmt.Errorf("sqlite get: %w", err)
	}
	return Item{PartitionKey: partitionKey, SortKey: sortKey, Data: []byte(data)}, nil
}

func (s *SQLiteClient) Query(ctx context.Context, partitionKey, sortKeyPrefix string) ([]Item, error) {
	// substr instead of LIKE: '_' in sort keys would act as a wildcard
	rows, err := s.db.QueryContext(ctx,
		`SELECT sort_key, data FROM round_items
		 WHERE partition_key = ? AND substr(sort_key, 1, ?) = ?
		 ORDER BY sort_key ASC`,
		partitionKey, utf8.RuneCountInString(sortKeyPrefix), sortKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("sqlite query: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var sk, data string
		if err := rows.Scan(&sk, &data); err != nil {
			return nil, fmt.Errorf("sqlite scan: %w", err)
		}
		items = append(items, Item{PartitionKey: partitionKey, SortKey: sk, Data: []byte(data)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite rows: %w", err)
	}
	return items, nil
}

func (s *SQLiteClient) Close() error {
	return s.db.Close()
}
