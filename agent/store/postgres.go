package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type PostgresConfig struct {
	DSN string `envconfig:"DSN" required:"true"`
}

type roundItemModel struct {
	bun.BaseModel `bun:"table:round_items,alias:ri"`

	PartitionKey string          `bun:"partition_key,pk"`
	SortKey      string          `bun:"sort_key,pk"`
	Data         json.RawMessage `bun:"data,type:jsonb,notnull"`
}

// PostgresClient stores items in a round_items table keyed by (partition_key, sort_key).
type PostgresClient struct {
	db *bun.DB
}

func NewPostgresClient(ctx context.Context, cfg PostgresConfig) (*PostgresClient, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.NewCreateTable().
		Model((*roundItemModel)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("create round_items table: %w", err)
	}
	return &PostgresClient{db: db}, nil
}

func (p *PostgresClient) Put(ctx context.Context, item Item) error {
	if err := validateKey(item.PartitionKey, item.SortKey); err != nil {
		return err
	}
	model := &roundItemModel{
		PartitionKey: item.PartitionKey,
		SortKey:      item.SortKey,
		Data:         json.RawMessage(item.Data),
	}
	if _, err := p.db.NewInsert().
		Model(model).
		On("CONFLICT (partition_key, sort_key) DO UPDATE").
		Set("data = EXCLUDED.data").
		Exec(ctx); err != nil {
		return fmt.Errorf("postgres put: %w", err)
	}
	return nil
}

func (p *PostgresClient) Get(ctx context.Context, partitionKey, sortKey string) (Item, error) {
	if err := validateKey(partitionKey, sortKey); err != nil {
		return Item{}, err
	}
	var model roundItemModel
	err := p.db.NewSelect().
		Model(&model).
		Where("partition_key = ?", partitionKey).
		Where("sort_key = ?", sortKey).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, ErrNotFound
	}
	if err != nil {
		return Item{}, fmt.Errorf("postgres get: %w", err)
	}
	return model.item(), nil
}

func (p *PostgresClient) Query(ctx context.Context, partitionKey, sortKeyPrefix string) ([]Item, error) {
	var models []roundItemModel
	if err := p.db.NewSelect().
		Model(&models).
		Where("partition_key = ?", partitionKey).
		Where("starts_with(sort_key, ?)", sortKeyPrefix).
		OrderExpr("sort_key ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("postgres query: %w", err)
	}
	items := make([]Item, 0, len(models))
	for _, m := range models {
		items = append(items, m.item())
	}
	return items, nil
}

func (p *PostgresClient) Close() error {
	return p.db.Close()
}

func (m roundItemModel) item() Item {
	return Item{PartitionKey: m.PartitionKey, SortKey: m.SortKey, Data: []byte(m.Data)}
}
