package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/codenames/go/internal/events"
)

// Config holds configuration for the push-channel connection.
type Config struct {
	DialTimeout     time.Duration
	WriteTimeout    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
}

// DefaultConfig returns default push-channel configuration.
func DefaultConfig() Config {
	return Config{
		DialTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Second,
		MaxMessageSize:  32 * 1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
}

// Handler receives an inbound event. Handlers run on the dispatch
// goroutine, in arrival order.
type Handler func(*events.Event)

// Client wraps the single long-lived websocket connection to the backend's
// push channel. Send is fire-and-forget; inbound events are fanned out to
// subscribers. A dropped connection surfaces only as silence; callers are
// expected to keep a snapshot poller running as the correctness backstop.
type Client struct {
	conn   *websocket.Conn
	config Config

	writeMu sync.Mutex

	subsMu sync.RWMutex
	subs   map[events.EventType]map[int]Handler
	nextID int

	closeOnce sync.Once
	closed    chan struct{}
}

// Dial connects to the backend's push channel at url (a ws:// or wss://
// endpoint) and starts the read loop.
func Dial(ctx context.Context, url string, config Config) (*Client, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: config.DialTimeout,
		ReadBufferSize:   config.ReadBufferSize,
		WriteBufferSize:  config.WriteBufferSize,
	}

	conn, resp, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial push channel: %w", err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	conn.SetReadLimit(config.MaxMessageSize)

	c := &Client{
		conn:   conn,
		config: config,
		subs:   make(map[events.EventType]map[int]Handler),
		closed: make(chan struct{}),
	}

	go c.readLoop()

	log.Info().Str("url", url).Msg("push channel connected")
	return c, nil
}

// Send marshals payload into an event envelope and writes it to the
// channel. There is no acknowledgement contract; an error means only that
// the local write failed.
func (c *Client) Send(eventType events.EventType, payload interface{}) error {
	event, err := events.NewEvent(eventType, payload)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if err := c.conn.WriteJSON(event); err != nil {
		return fmt.Errorf("write %s event: %w", eventType, err)
	}
	return nil
}

// Subscribe registers handler for eventType and returns its unsubscribe
// function. Unsubscribe is idempotent.
func (c *Client) Subscribe(eventType events.EventType, handler Handler) (unsubscribe func()) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()

	handlers, ok := c.subs[eventType]
	if !ok {
		handlers = make(map[int]Handler)
		c.subs[eventType] = handlers
	}

	id := c.nextID
	c.nextID++
	handlers[id] = handler

	return func() {
		c.subsMu.Lock()
		defer c.subsMu.Unlock()
		if handlers, ok := c.subs[eventType]; ok {
			delete(handlers, id)
			if len(handlers) == 0 {
				delete(c.subs, eventType)
			}
		}
	}
}

// SubscriptionCount reports the number of live subscriptions.
func (c *Client) SubscriptionCount() int {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()

	n := 0
	for _, handlers := range c.subs {
		n += len(handlers)
	}
	return n
}

// Close tears down the connection and stops the read loop.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		err = c.conn.Close()
	})
	return err
}

func (c *Client) readLoop() {
	for {
		var event events.Event
		if err := c.conn.ReadJSON(&event); err != nil {
			select {
			case <-c.closed:
				// Deliberate shutdown.
			default:
				log.Error().Err(err).Msg("push channel read failed")
			}
			return
		}

		log.Debug().Str("event_type", string(event.Type)).Msg("push event received")
		c.dispatch(&event)
	}
}

func (c *Client) dispatch(event *events.Event) {
	c.subsMu.RLock()
	handlers := make([]Handler, 0, len(c.subs[event.Type]))
	for _, h := range c.subs[event.Type] {
		handlers = append(handlers, h)
	}
	c.subsMu.RUnlock()

	for _, h := range handlers {
		h(event)
	}
}
