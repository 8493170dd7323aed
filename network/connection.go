package network

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ReZorDos/TerraWar-sub000/logging"
)

const (
	sendQueueSize = 256
	flushTimeout  = time.Second
)

var (
	ErrClosed        = errors.New("connection closed")
	ErrSendQueueFull = errors.New("send queue full")
)

// MessageHandler interface for handling messages
type MessageHandler interface {
	HandleMessage(conn *Connection, message []byte)
}

// Options tunes a Connection. A zero RateLimit disables inbound throttling.
type Options struct {
	RateLimit float64
	RateBurst int
	Logger    *zap.Logger
}

// Connection wraps a transport with a session id, an outbound queue and an inbound throttle
type Connection struct {
	ID string

	transport Transport
	send      chan []byte
	limiter   *rate.Limiter
	log       *zap.Logger

	done      chan struct{}
	flushed   chan struct{}
	writing   atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// NewConnection creates a new connection wrapper
func NewConnection(t Transport, opts Options) *Connection {
	id := uuid.NewString()
	log := logging.OrNop(opts.Logger)

	c := &Connection{
		ID:        id,
		transport: t,
		send:      make(chan []byte, sendQueueSize),
		log:       log.With(zap.String("session", id), zap.String("remote", t.RemoteAddr())),
		done:      make(chan struct{}),
		flushed:   make(chan struct{}),
	}
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return c
}

// Logger returns the session-scoped logger
func (c *Connection) Logger() *zap.Logger {
	return c.log
}

// RemoteAddr returns the peer address
func (c *Connection) RemoteAddr() string {
	return c.transport.RemoteAddr()
}

// Done is closed once the connection is closed
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

// ReadPump reads lines until the peer goes away, the context ends or the connection is closed.
// A clean EOF returns nil. The connection is closed on return.
func (c *Connection) ReadPump(ctx context.Context, h MessageHandler) error {
	defer c.Close()

	for {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		line, err := c.transport.ReadLine()
		if err != nil {
			select {
			case <-c.done:
				return nil
			default:
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		h.HandleMessage(c, line)
	}
}

// WritePump drains the send queue onto the transport. It is the only writer.
func (c *Connection) WritePump() {
	c.writing.Store(true)
	defer c.Close()
	defer close(c.flushed)

	for {
		select {
		case message := <-c.send:
			if err := c.transport.WriteLine(message); err != nil {
				c.log.Debug("write failed", zap.Error(err))
				return
			}
		case <-c.done:
			// flush whatever was queued before the close
			for {
				select {
				case message := <-c.send:
					if err := c.transport.WriteLine(message); err != nil {
						return
					}
				default:
					return
				}
			}
		}
	}
}

// SendMessage marshals msg and queues it for the write pump
func (c *Connection) SendMessage(msg interface{}) error {
	messageBytes, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	select {
	case c.send <- messageBytes:
		return nil
	default:
		// If the send channel is full, close the connection
		c.log.Warn("send queue full, closing connection")
		go c.Close()
		return ErrSendQueueFull
	}
}

// Close shuts the connection down after flushing queued messages. Safe to call more than once.
func (c *Connection) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.writing.Load() {
			select {
			case <-c.flushed:
			case <-time.After(flushTimeout):
			}
		}
		c.closeErr = c.transport.Close()
	})
	return c.closeErr
}
