package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

const (
	defaultUpstashKeyPrefix = "caddie:round:"
	maxResponseSizeBytes    = 2 << 20
)

// UpstashOption customizes UpstashClient.
type UpstashOption func(*UpstashClient)

func WithKeyPrefix(prefix string) UpstashOption {
	return func(c *UpstashClient) {
		trimmed := strings.TrimSpace(prefix)
		if trimmed != "" {
			c.keyPrefix = trimmed
		}
	}
}

func WithHTTPClient(client *http.Client) UpstashOption {
	return func(c *UpstashClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// UpstashClient maps each partition to one Redis hash (field = sort key)
// and talks to Upstash over its REST API.
type UpstashClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	keyPrefix  string
}

type redisRESTResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

type UpstashRedisConfig struct {
	URL     string        `envconfig:"URL" split_words:"true" required:"true"`
	Token   string        `envconfig:"TOKEN" split_words:"true" required:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

func NewUpstashClient(cfg UpstashRedisConfig, opts ...UpstashOption) (*UpstashClient, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if baseURL == "" {
		return nil, errors.New("upstash redis url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid redis rest url: %w", err)
	}

	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("upstash redis token is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &UpstashClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		keyPrefix:  defaultUpstashKeyPrefix,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

func (c *UpstashClient) Put(ctx context.Context, item Item) error {
	if err := validateKey(item.PartitionKey, item.SortKey); err != nil {
		return err
	}
	_, err := c.exec(ctx, []any{"HSET", c.hashKey(item.PartitionKey), item.SortKey, string(item.Data)})
	return err
}

func (c *UpstashClient) Get(ctx context.Context, partitionKey, sortKey string) (Item, error) {
	if err := validateKey(partitionKey, sortKey); err != nil {
		return Item{}, err
	}
	resp, err := c.exec(ctx, []any{"HGET", c.hashKey(partitionKey), sortKey})
	if err != nil {
		return Item{}, err
	}

	result := bytes.TrimSpace(resp.Result)
	if len(result) == 0 || bytes.Equal(result, []byte("null")) {
		return Item{}, ErrNotFound
	}
	var encoded string
	if err := json.Unmarshal(result, &encoded); err != nil {
		return Item{}, fmt.Errorf("decode hash value: %w", err)
	}
	return Item{PartitionKey: partitionKey, SortKey: sortKey, Data: []byte(encoded)}, nil
}

// Query reads the whole partition hash and filters client side; a round
// partition holds at most a few hundred fields.
func (c *UpstashClient) Query(ctx context.Context, partitionKey, sortKeyPrefix string) ([]Item, error) {
	if strings.TrimSpace(partitionKey) == "" {
		return nil, ErrInvalidKey
	}
	resp, err := c.exec(ctx, []any{"HGETALL", c.hashKey(partitionKey)})
	if err != nil {
		return nil, err
	}

	var flat []string
	result := bytes.TrimSpace(resp.Result)
	if len(result) > 0 && !bytes.Equal(result, []byte("null")) {
		if err := json.Unmarshal(result, &flat); err != nil {
			return nil, fmt.Errorf("decode hash fields: %w", err)
		}
	}
	if len(flat)%2 != 0 {
		return nil, fmt.Errorf("malformed HGETALL reply with %d elements", len(flat))
	}

	var items []Item
	for i := 0; i < len(flat); i += 2 {
		if !strings.HasPrefix(flat[i], sortKeyPrefix) {
			continue
		}
		items = append(items, Item{PartitionKey: partitionKey, SortKey: flat[i], Data: []byte(flat[i+1])})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].SortKey < items[j].SortKey })
	return items, nil
}

func (c *UpstashClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *UpstashClient) hashKey(partitionKey string) string {
	return c.keyPrefix + partitionKey
}

func (c *UpstashClient) exec(ctx context.Context, command []any) (*redisRESTResponse, error) {
	if c == nil {
		return nil, errors.New("nil upstash client")
	}
	if len(command) == 0 {
		return nil, errors.New("empty redis command")
	}

	body, err := json.Marshal(command)
	if err != nil {
		return nil, fmt.Errorf("marshal redis command: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build redis request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute redis request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("read redis response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("redis http status=%d body=%s", resp.StatusCode, string(raw))
	}

	var parsed redisRESTResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode redis response: %w", err)
	}
	if parsed.Error != "" {
		return nil, errors.New(parsed.Error)
	}
	return &parsed, nil
}
