package domstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{}

// newTickerServer upgrades each connection, waits for the subscribe frame,
// sends payload once, then holds the connection open.
func newTickerServer(t *testing.T, payload string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		if err := conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
			return
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestReadDeliversBenchmarkTicks(t *testing.T) {
	payload := `{"type":"ticker","data":[{"s":"BTC","p":64000,"ch":-1.25,"t":1700000000000}]}`
	srv := newTickerServer(t, payload)
	defer srv.Close()

	c := New(wsURL(srv), "BTC", 10*time.Millisecond, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := c.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := c.Subscribe(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	ticks, _ := c.Read(ctx)

	select {
	case tick := <-ticks:
		if tick.Symbol != "BTC" || tick.PriceChange24h != -1.25 || tick.Timestamp != 1700000000 {
			t.Fatalf("tick = %+v", tick)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no tick received")
	}
	_ = c.Close()
}

func TestReadErrorsAfterClose(t *testing.T) {
	payload := `{"type":"ticker","data":[]}`
	srv := newTickerServer(t, payload)
	defer srv.Close()

	c := New(wsURL(srv), "BTC", 10*time.Millisecond, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := c.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := c.Subscribe(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	ticks, errs := c.Read(ctx)

	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	select {
	case <-errs:
	case <-time.After(2 * time.Second):
		t.Fatalf("read loop did not report the closed connection")
	}
	for range ticks {
	}
	if c.IsConnected() {
		t.Fatalf("still connected after close")
	}
}

func TestConnectionStateSafeUnderConcurrentAccess(t *testing.T) {
	payload := `{"type":"ticker","data":[]}`
	srv := newTickerServer(t, payload)
	defer srv.Close()

	c := New(wsURL(srv), "BTC", time.Millisecond, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := c.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := c.Subscribe(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	c.Read(ctx)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = c.IsConnected()
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := c.Reconnect(ctx); err != nil {
			t.Errorf("reconnect: %v", err)
		}
	}()
	wg.Wait()

	if !c.IsConnected() {
		t.Fatalf("not connected after reconnect")
	}
	_ = c.Close()
}
