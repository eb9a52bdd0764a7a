package room

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// writeWait is the deadline applied to every outbound frame.
const writeWait = 10 * time.Second

// ConnState tracks the lifecycle of a Conn.
// Open -> Registered -> Closing -> Closed; Closed is terminal.
type ConnState int32

const (
	StateOpen ConnState = iota
	StateRegistered
	StateClosing
	StateClosed
)

// ErrConnClosed is returned by sends on a connection past its Closing state.
var ErrConnClosed = errors.New("connection closed")

// transport is the frame connection surface a Conn drives. Satisfied by
// *websocket.Conn; tests substitute fakes.
type transport interface {
	SetWriteDeadline(t time.Time) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Conn wraps one live socket. Its identity is an opaque token issued at
// accept time, so registry keys never depend on transport object identity.
// Writes are serialized; gorilla connections do not allow concurrent writers.
type Conn struct {
	id string
	ws transport

	state atomic.Int32

	writeMu sync.Mutex

	closeMu sync.Mutex
	onClose []func()
}

// NewConn wraps an upgraded socket and issues its identity token.
func NewConn(ws transport) *Conn {
	return &Conn{
		id: uuid.NewString(),
		ws: ws,
	}
}

// ID returns the connection's identity token.
func (c *Conn) ID() string {
	return c.id
}

// State returns the current lifecycle state.
func (c *Conn) State() ConnState {
	return ConnState(c.state.Load())
}

func (c *Conn) markRegistered() {
	c.state.CompareAndSwap(int32(StateOpen), int32(StateRegistered))
}

// OnClose registers a callback fired exactly once when the connection
// begins closing. If the connection is already closing, fn runs now.
func (c *Conn) OnClose(fn func()) {
	c.closeMu.Lock()
	if c.State() >= StateClosing {
		c.closeMu.Unlock()
		fn()
		return
	}
	c.onClose = append(c.onClose, fn)
	c.closeMu.Unlock()
}

// WriteText sends a text frame.
func (c *Conn) WriteText(data []byte) error {
	return c.write(websocket.TextMessage, data)
}

// WriteBinary sends a binary frame.
func (c *Conn) WriteBinary(data []byte) error {
	return c.write(websocket.BinaryMessage, data)
}

func (c *Conn) write(messageType int, data []byte) error {
	if c.State() >= StateClosing {
		return ErrConnClosed
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(messageType, data)
}

// Close moves the connection to Closed, firing close callbacks once.
// Safe to call multiple times and from any goroutine.
func (c *Conn) Close() error {
	c.closeMu.Lock()
	if c.State() >= StateClosing {
		c.closeMu.Unlock()
		return nil
	}
	c.state.Store(int32(StateClosing))
	callbacks := c.onClose
	c.onClose = nil
	c.closeMu.Unlock()

	for _, fn := range callbacks {
		fn()
	}

	err := c.ws.Close()
	c.state.Store(int32(StateClosed))
	return err
}
