package room

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport records written frames and can be told to fail.
type fakeTransport struct {
	mu         sync.Mutex
	frames     []frame
	failWrites bool
	closed     bool
}

type frame struct {
	messageType int
	data        []byte
}

func (f *fakeTransport) SetWriteDeadline(t time.Time) error { return nil }

func (f *fakeTransport) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites {
		return errors.New("write failed")
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	f.frames = append(f.frames, frame{messageType: messageType, data: cp})
	return nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeTransport) sentFrames() []frame {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]frame, len(f.frames))
	copy(out, f.frames)
	return out
}

func TestConnIdentityIsUnique(t *testing.T) {
	a := NewConn(&fakeTransport{})
	b := NewConn(&fakeTransport{})

	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestConnWriteAfterCloseFails(t *testing.T) {
	ft := &fakeTransport{}
	c := NewConn(ft)

	require.NoError(t, c.WriteText([]byte("hello")))
	require.NoError(t, c.Close())

	err := c.WriteText([]byte("late"))
	assert.ErrorIs(t, err, ErrConnClosed)
	assert.Len(t, ft.sentFrames(), 1)
	assert.True(t, ft.closed)
}

func TestConnCloseIsIdempotent(t *testing.T) {
	c := NewConn(&fakeTransport{})

	calls := 0
	c.OnClose(func() { calls++ })

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	assert.Equal(t, 1, calls)
	assert.Equal(t, StateClosed, c.State())
}

func TestConnOnCloseAfterCloseRunsImmediately(t *testing.T) {
	c := NewConn(&fakeTransport{})
	require.NoError(t, c.Close())

	ran := false
	c.OnClose(func() { ran = true })
	assert.True(t, ran)
}

func TestConnWriteTypes(t *testing.T) {
	ft := &fakeTransport{}
	c := NewConn(ft)

	require.NoError(t, c.WriteText([]byte("text")))
	require.NoError(t, c.WriteBinary([]byte{0x01, 0x02}))

	frames := ft.sentFrames()
	require.Len(t, frames, 2)
	assert.Equal(t, websocket.TextMessage, frames[0].messageType)
	assert.Equal(t, websocket.BinaryMessage, frames[1].messageType)
}
