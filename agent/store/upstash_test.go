package store

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// fakeUpstash is a tiny in-memory Redis hash server speaking the Upstash REST protocol.
type fakeUpstash struct {
	mu       sync.Mutex
	hashes   map[string]map[string]string
	commands [][]string
}

func newFakeUpstash(t *testing.T) (*fakeUpstash, *httptest.Server) {
	t.Helper()
	f := &fakeUpstash{hashes: make(map[string]map[string]string)}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		if got := r.Header.Get("Authorization"); got != "Bearer token" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":"unauthorized"}`)
			return
		}
		var cmd []string
		if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		f.commands = append(f.commands, cmd)

		var result any
		switch cmd[0] {
		case "HSET":
			h, ok := f.hashes[cmd[1]]
			if !ok {
				h = make(map[string]string)
				f.hashes[cmd[1]] = h
			}
			h[cmd[2]] = cmd[3]
			result = 1
		case "HGET":
			if v, ok := f.hashes[cmd[1]][cmd[2]]; ok {
				result = v
			}
		case "HGETALL":
			flat := []string{}
			for k, v := range f.hashes[cmd[1]] {
				flat = append(flat, k, v)
			}
			result = flat
		default:
			fmt.Fprintf(w, `{"error":"unknown command %s"}`, cmd[0])
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"result": result})
	}))
	t.Cleanup(server.Close)
	return f, server
}

func TestUpstashClientContract(t *testing.T) {
	t.Parallel()

	_, server := newFakeUpstash(t)
	client, err := NewUpstashClient(
		UpstashRedisConfig{URL: server.URL, Token: "token"},
		WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("NewUpstashClient() error = %v", err)
	}
	runClientContract(t, client)
}

func TestUpstashClientUsesPrefixedHashKey(t *testing.T) {
	t.Parallel()

	fake, server := newFakeUpstash(t)
	client, err := NewUpstashClient(
		UpstashRedisConfig{URL: server.URL, Token: "token"},
		WithHTTPClient(server.Client()),
		WithKeyPrefix("test:"),
	)
	if err != nil {
		t.Fatalf("NewUpstashClient() error = %v", err)
	}

	if err := client.Put(context.Background(), Item{PartitionKey: "Ben", SortKey: "s1#metadata", Data: []byte(`{}`)}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	if len(fake.commands) != 1 {
		t.Fatalf("commands = %#v", fake.commands)
	}
	got := fake.commands[0]
	if got[0] != "HSET" || got[1] != "test:Ben" || got[2] != "s1#metadata" {
		t.Fatalf("command = %#v, want HSET test:Ben s1#metadata", got)
	}
}

func TestUpstashClientSurfacesRedisError(t *testing.T) {
	t.Parallel()

	_, server := newFakeUpstash(t)
	client, err := NewUpstashClient(
		UpstashRedisConfig{URL: server.URL, Token: "wrong"},
		WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("NewUpstashClient() error = %v", err)
	}
	if _, err := client.Get(context.Background(), "Ben", "s1#metadata"); err == nil {
		t.Fatal("expected error for unauthorized request")
	}
}

func TestNewUpstashClientValidatesConfig(t *testing.T) {
	t.Parallel()

	cases := []UpstashRedisConfig{
		{URL: "", Token: "token"},
		{URL: "not a url", Token: "token"},
		{URL: "https://example.upstash.io", Token: " "},
	}
	for _, cfg := range cases {
		if _, err := NewUpstashClient(cfg); err == nil {
			t.Fatalf("NewUpstashClient(%+v) expected error", cfg)
		}
	}
}
