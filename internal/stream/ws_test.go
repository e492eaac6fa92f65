package stream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"pool-signal-lab/internal/extractor"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsTestServer serves each message once per connection, then holds the
// connection open until the client goes away.
func wsTestServer(t *testing.T, messages []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for _, msg := range messages {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return
			}
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func testWSConfig(endpoint string) WSConfig {
	cfg := DefaultWSConfig(endpoint)
	cfg.ReconnectDelay = 10 * time.Millisecond
	cfg.MaxReconnectDelay = 50 * time.Millisecond
	cfg.ReadTimeout = 2 * time.Second
	return cfg
}

func TestWSSource_DeliversRecords(t *testing.T) {
	server := wsTestServer(t, []string{
		`{"poolAddress":"p1"}`,
		`{"poolAddress":"p2"}`,
	})
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var got []string
	src := NewWSSource(testWSConfig(wsURL(server)), zerolog.Nop())

	errCh := make(chan error, 1)
	go func() {
		errCh <- src.Run(ctx, func(_ context.Context, rec extractor.RawRecord) error {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, rec["poolAddress"].(string))
			if len(got) == 2 {
				cancel()
			}
			return nil
		})
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("source did not stop")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 || got[0] != "p1" || got[1] != "p2" {
		t.Errorf("expected records p1, p2 in order, got %v", got)
	}
}

func TestWSSource_SkipsUndecodablePayloads(t *testing.T) {
	server := wsTestServer(t, []string{
		`not json`,
		`{"poolAddress":"p1"}`,
	})
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var got []string
	src := NewWSSource(testWSConfig(wsURL(server)), zerolog.Nop())

	errCh := make(chan error, 1)
	go func() {
		errCh <- src.Run(ctx, func(_ context.Context, rec extractor.RawRecord) error {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, rec["poolAddress"].(string))
			cancel()
			return nil
		})
	}()

	select {
	case <-errCh:
	case <-time.After(5 * time.Second):
		t.Fatal("source did not stop")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0] != "p1" {
		t.Errorf("expected only the valid record, got %v", got)
	}
}

func TestWSSource_ReconnectsAfterDrop(t *testing.T) {
	var mu sync.Mutex
	connections := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		mu.Lock()
		connections++
		n := connections
		mu.Unlock()

		if n == 1 {
			// Drop the first connection immediately.
			conn.Close()
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"poolAddress":"after-reconnect"}`))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := NewWSSource(testWSConfig(wsURL(server)), zerolog.Nop())

	var mu2 sync.Mutex
	var got []string
	errCh := make(chan error, 1)
	go func() {
		errCh <- src.Run(ctx, func(_ context.Context, rec extractor.RawRecord) error {
			mu2.Lock()
			defer mu2.Unlock()
			got = append(got, rec["poolAddress"].(string))
			cancel()
			return nil
		})
	}()

	select {
	case <-errCh:
	case <-time.After(10 * time.Second):
		t.Fatal("source did not stop")
	}

	mu2.Lock()
	defer mu2.Unlock()
	if len(got) != 1 || got[0] != "after-reconnect" {
		t.Errorf("expected the record from the second connection, got %v", got)
	}
	mu.Lock()
	defer mu.Unlock()
	if connections < 2 {
		t.Errorf("expected at least 2 connections, got %d", connections)
	}
}

func TestWSSource_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := NewWSSource(testWSConfig("ws://127.0.0.1:0"), zerolog.Nop())
	err := src.Run(ctx, func(context.Context, extractor.RawRecord) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
