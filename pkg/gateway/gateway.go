// Package gateway maintains the WebSocket connection that streams
// partial state updates from the Concord service. It owns framing,
// handshake and heartbeating only; everything it reads is handed to the
// state layer as an Event, in arrival order, through a single channel.
package gateway

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	gorilla "github.com/gorilla/websocket"

	"github.com/concordchat/concord.go/internal/codec"
	"github.com/concordchat/concord.go/pkg/logger"
)

// WireCodec is a codec that knows its handshake subprotocol name.
type WireCodec interface {
	codec.Codec
	Name() string
}

// DefaultDialer mirrors gorilla's default dialer with compression on.
var DefaultDialer = &gorilla.Dialer{
	Proxy:             gorilla.DefaultDialer.Proxy,
	HandshakeTimeout:  gorilla.DefaultDialer.HandshakeTimeout,
	EnableCompression: true,
}

const closeMessageCode = 1000

// Params configures a Conn.
type Params struct {
	// URL is the full gateway endpoint, e.g. "wss://gateway.concord.chat".
	URL string
	// Token authenticates the identify frame.
	Token string
	// Codec selects the wire encoding; JSON when nil.
	Codec WireCodec
	// Logger defaults to a discard logger.
	Logger logger.Logger
	// Dialer defaults to DefaultDialer.
	Dialer *gorilla.Dialer
	// Buffer is the event channel capacity; 0 means unbuffered.
	Buffer int
}

// Conn is one gateway session. Events() yields dispatches until the
// connection closes, at which point the channel is closed and Err
// reports why.
type Conn struct {
	url    string
	token  string
	codec  WireCodec
	logger logger.Logger
	dialer *gorilla.Dialer

	conn      *gorilla.Conn
	writeLock sync.Mutex

	events    chan Event
	closeChan chan struct{}
	closeOnce sync.Once
	seq       atomic.Int64

	errLock sync.Mutex
	err     error
}

// New builds an unconnected Conn.
func New(p Params) *Conn {
	c := &Conn{
		url:       p.URL,
		token:     p.Token,
		codec:     p.Codec,
		logger:    p.Logger,
		dialer:    p.Dialer,
		events:    make(chan Event, p.Buffer),
		closeChan: make(chan struct{}),
	}
	if c.codec == nil {
		c.codec = codec.JSON{}
	}
	if c.logger == nil {
		c.logger = logger.Discard()
	}
	if c.dialer == nil {
		c.dialer = DefaultDialer
	}
	return c
}

// Connect dials the gateway, completes the hello/identify handshake and
// starts the read and heartbeat loops.
func (c *Conn) Connect(ctx context.Context) error {
	if c.url == "" {
		return fmt.Errorf("gateway: no URL configured")
	}

	dialer := *c.dialer
	dialer.Subprotocols = []string{c.codec.Name()}

	conn, res, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		// On a bad handshake gorilla hands back the server's response.
		if res != nil {
			res.Body.Close()
		}
		return fmt.Errorf("gateway: dial %s: %w", c.url, err)
	}
	defer res.Body.Close()
	c.conn = conn

	hello, err := c.readFrame()
	if err != nil {
		conn.Close()
		return fmt.Errorf("gateway: reading hello: %w", err)
	}
	if hello.Op != OpHello {
		conn.Close()
		return fmt.Errorf("gateway: expected hello, got op %d", hello.Op)
	}
	interval := heartbeatInterval(hello.Data)

	if err := c.write(frame{
		Op:   OpIdentify,
		Data: map[string]any{"token": c.token},
	}); err != nil {
		conn.Close()
		return fmt.Errorf("gateway: identify: %w", err)
	}

	c.logger.Info("gateway connected", "url", c.url, "encoding", c.codec.Name(), "heartbeat_ms", interval.Milliseconds())

	go c.readLoop()
	go c.heartbeatLoop(interval)
	return nil
}

// Events returns the dispatch channel. It is closed when the
// connection ends.
func (c *Conn) Events() <-chan Event { return c.events }

// Err reports why the connection ended, nil for a clean local close.
func (c *Conn) Err() error {
	c.errLock.Lock()
	defer c.errLock.Unlock()
	return c.err
}

func (c *Conn) setErr(err error) {
	c.errLock.Lock()
	c.err = err
	c.errLock.Unlock()
}

// Close sends a close message and tears the connection down. The
// context bounds how long we wait for the close message write; the
// underlying connection is closed regardless.
func (c *Conn) Close(ctx context.Context) error {
	if c.conn == nil {
		return nil
	}
	var closeErr error
	c.closeOnce.Do(func() {
		close(c.closeChan)

		writeErr := make(chan error, 1)
		go func() {
			c.writeLock.Lock()
			defer c.writeLock.Unlock()
			writeErr <- c.conn.WriteMessage(gorilla.CloseMessage,
				gorilla.FormatCloseMessage(closeMessageCode, ""))
		}()

		select {
		case err := <-writeErr:
			if err != nil {
				// Not fatal: we still close the socket locally so no
				// resources leak, the server just sees an unclean end.
				c.logger.Error("failed to write close message", "error", err)
			}
		case <-ctx.Done():
		}

		closeErr = c.conn.Close()
	})
	return closeErr
}

func (c *Conn) readLoop() {
	defer close(c.events)

	for {
		f, err := c.readFrame()
		if err != nil {
			select {
			case <-c.closeChan:
				// Local close; the read error is expected.
			default:
				c.setErr(err)
				c.logger.Error("gateway read failed", "error", err)
			}
			return
		}

		switch f.Op {
		case OpDispatch:
			c.seq.Store(f.Seq)
			select {
			case c.events <- eventFromFrame(f):
			case <-c.closeChan:
				return
			}
		case OpHeartbeat:
			// The service may request an immediate beat.
			if err := c.writeHeartbeat(); err != nil {
				c.logger.Error("heartbeat write failed", "error", err)
			}
		case OpHeartbeatACK:
			c.logger.Debug("heartbeat acknowledged", "seq", c.seq.Load())
		default:
			c.logger.Warn("unexpected gateway opcode", "op", int(f.Op))
		}
	}
}

func (c *Conn) heartbeatLoop(interval time.Duration) {
	if interval <= 0 {
		interval = 45 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.writeHeartbeat(); err != nil {
				c.logger.Error("heartbeat write failed", "error", err)
				return
			}
		case <-c.closeChan:
			return
		}
	}
}

func (c *Conn) writeHeartbeat() error {
	return c.write(frame{Op: OpHeartbeat, Seq: c.seq.Load()})
}

func (c *Conn) readFrame() (frame, error) {
	var f frame
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return f, err
	}
	if err := c.codec.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("decoding frame: %w", err)
	}
	return f, nil
}

func (c *Conn) write(f frame) error {
	data, err := c.codec.Marshal(f)
	if err != nil {
		return err
	}

	messageType := gorilla.TextMessage
	if c.codec.Name() != "json" {
		messageType = gorilla.BinaryMessage
	}

	c.writeLock.Lock()
	defer c.writeLock.Unlock()
	return c.conn.WriteMessage(messageType, data)
}

func heartbeatInterval(data map[string]any) time.Duration {
	v, ok := data["heartbeat_interval"]
	if !ok {
		return 0
	}
	switch x := v.(type) {
	case float64:
		return time.Duration(x) * time.Millisecond
	case int64:
		return time.Duration(x) * time.Millisecond
	case uint64:
		return time.Duration(x) * time.Millisecond
	case int:
		return time.Duration(x) * time.Millisecond
	}
	return 0
}
