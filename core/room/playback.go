package room

import (
	"context"
	"strconv"
)

// Playback control vocabulary relayed verbatim to listeners.
var controlWords = map[string]bool{
	"play":  true,
	"pause": true,
	"next":  true,
	"back":  true,
}

// PlaybackService classifies inbound frames on the stream socket: a
// positive track number starts a stream, a control word fans out verbatim,
// anything else earns the sender an error frame.
type PlaybackService struct {
	registry *Registry
	streamer *Streamer
}

// NewPlaybackService creates the playback service.
func NewPlaybackService(registry *Registry, streamer *Streamer) *PlaybackService {
	return &PlaybackService{
		registry: registry,
		streamer: streamer,
	}
}

// Connect joins the connection to the room's stream domain and arranges
// its removal from every domain on close.
func (s *PlaybackService) Connect(roomID string, conn *Conn) {
	s.registry.Join(StreamDomain(roomID), conn)
	conn.OnClose(func() {
		s.registry.Drop(conn)
	})
}

// HandleFrame processes one inbound text frame from the stream socket.
// ctx should span the connection's lifetime; a started stream keeps
// running after this call returns.
func (s *PlaybackService) HandleFrame(ctx context.Context, roomID string, conn *Conn, text string) {
	if trackNumber, err := strconv.Atoi(text); err == nil {
		if trackNumber > 0 {
			// Dedicated goroutine per stream: the blocking read loop must
			// not occupy this connection's frame loop or any other room.
			go s.streamer.Stream(ctx, roomID, trackNumber, conn)
		} else {
			conn.WriteText([]byte("Invalid track number"))
		}
		return
	}

	if controlWords[text] {
		s.registry.BroadcastText(StreamDomain(roomID), []byte(text))
		return
	}

	conn.WriteText([]byte("Invalid track number"))
}
