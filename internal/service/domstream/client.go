package domstream

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"ShortBasket/internal/domain/models"
	drepo "ShortBasket/internal/domain/repository"

	"github.com/gorilla/websocket"
)

// Client implements a BenchmarkStream backed by the provider's websocket
// ticker feed. It subscribes to the benchmark symbol only; ranking rows come
// over HTTP.
type Client struct {
	websocketURL   string
	symbol         string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
}

// New creates a benchmark ticker stream.
func New(websocketURL, symbol string, reconnectDelay, pingInterval time.Duration) drepo.BenchmarkStream {
	return &Client{
		websocketURL:   websocketURL,
		symbol:         symbol,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

// Connect establishes the websocket connection.
func (c *Client) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.websocketURL, nil)
	if err != nil {
		return fmt.Errorf("domstream connect: %w", err)
	}
	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()
	log.Printf("domstream: connected")
	return nil
}

// Subscribe subscribes to the benchmark ticker channel.
func (c *Client) Subscribe(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil || !c.connected {
		return fmt.Errorf("domstream not connected")
	}
	msg := map[string]string{"type": "subscribe", "channel": "ticker", "symbol": c.symbol}
	if err := c.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("subscribe %s: %w", c.symbol, err)
	}
	log.Printf("domstream: subscribed %s", c.symbol)
	return nil
}

// current returns the connection pointer under the lock; blocking reads must
// run on the returned copy, not through c.conn.
func (c *Client) current() *websocket.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

type wsTicker struct {
	S  string  `json:"s"`
	P  float64 `json:"p"`
	Ch float64 `json:"ch"` // 24h change percent
	T  int64   `json:"t"`  // ms
}

type wsMessage struct {
	Type string     `json:"type"`
	Data []wsTicker `json:"data"`
}

// Read streams benchmark ticks and errors.
func (c *Client) Read(ctx context.Context) (<-chan *models.BenchmarkTick, <-chan error) {
	ticks := make(chan *models.BenchmarkTick, 256)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.mu.Lock()
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
				c.mu.Unlock()
			}
		}
	}()

	// read loop
	go func() {
		defer close(ticks)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				conn := c.current()
				if conn == nil {
					errs <- fmt.Errorf("domstream conn nil")
					return
				}
				_, b, err := conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("domstream read: %w", err)
					return
				}
				var m wsMessage
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-ticker frames
					continue
				}
				if m.Type != "ticker" {
					continue
				}
				for _, d := range m.Data {
					if d.S != c.symbol {
						continue
					}
					tick := &models.BenchmarkTick{
						Symbol:         d.S,
						Price:          d.P,
						PriceChange24h: d.Ch,
						Timestamp:      d.T / 1000,
					}
					select {
					case ticks <- tick:
					default:
						// drop on backpressure; only the latest tick matters
					}
				}
			}
		}
	}()

	return ticks, errs
}

// Reconnect closes and reconnects.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the websocket connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}
