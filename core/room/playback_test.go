package room

import (
	"context"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaybackControlWordsRelayedVerbatim(t *testing.T) {
	r := NewRegistry()
	s := NewPlaybackService(r, NewStreamer(r, &memStore{}, 4096))

	sender := NewConn(&fakeTransport{})
	listener := NewConn(&fakeTransport{})
	s.Connect("room-1", sender)
	s.Connect("room-1", listener)

	for _, word := range []string{"play", "pause", "next", "back"} {
		s.HandleFrame(context.Background(), "room-1", sender, word)
	}

	frames := listener.ws.(*fakeTransport).sentFrames()
	require.Len(t, frames, 4)
	assert.Equal(t, "play", string(frames[0].data))
	assert.Equal(t, "back", string(frames[3].data))
	for _, f := range frames {
		assert.Equal(t, websocket.TextMessage, f.messageType)
	}
	// The sender hears its own control words too.
	assert.Len(t, sender.ws.(*fakeTransport).sentFrames(), 4)
}

func TestPlaybackInvalidFrameErrorsSenderOnly(t *testing.T) {
	r := NewRegistry()
	s := NewPlaybackService(r, NewStreamer(r, &memStore{}, 4096))

	sender := NewConn(&fakeTransport{})
	listener := NewConn(&fakeTransport{})
	s.Connect("room-1", sender)
	s.Connect("room-1", listener)

	s.HandleFrame(context.Background(), "room-1", sender, "shuffle")
	s.HandleFrame(context.Background(), "room-1", sender, "0")
	s.HandleFrame(context.Background(), "room-1", sender, "-3")

	frames := sender.ws.(*fakeTransport).sentFrames()
	require.Len(t, frames, 3)
	for _, f := range frames {
		assert.Equal(t, "Invalid track number", string(f.data))
	}
	assert.Len(t, listener.ws.(*fakeTransport).sentFrames(), 0)
}

func TestPlaybackTrackNumberStartsStream(t *testing.T) {
	store := &memStore{tracks: map[int][]byte{3: make([]byte, 500)}}
	r := NewRegistry()
	s := NewPlaybackService(r, NewStreamer(r, store, 4096))

	sender := NewConn(&fakeTransport{})
	s.Connect("room-1", sender)

	s.HandleFrame(context.Background(), "room-1", sender, "3")

	// The stream runs on its own goroutine; wait for the sentinel.
	deadline := time.After(2 * time.Second)
	for {
		frames := binaryFrames(sender.ws.(*fakeTransport))
		if len(frames) == 2 {
			assert.Len(t, frames[0], 500)
			assert.Len(t, frames[1], 0)
			return
		}
		select {
		case <-deadline:
			t.Fatal("stream did not finish")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
