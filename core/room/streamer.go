package room

import (
	"context"
	"errors"
	"io"
	"os"

	"teamplayer/logger"
)

// DefaultChunkSize is the read size used when none is configured.
const DefaultChunkSize = 4096

// MediaStore resolves a track number to its backing media. Open returns
// os.ErrNotExist when no media exists for the track.
type MediaStore interface {
	Open(ctx context.Context, trackNumber int) (io.ReadCloser, error)
}

// Streamer reads track media in fixed-size chunks and fans each chunk out
// to a room's stream domain. Each active stream runs on its own goroutine
// so a slow room never stalls another.
type Streamer struct {
	registry  *Registry
	store     MediaStore
	chunkSize int
}

// NewStreamer creates a streamer over the registry and media store.
func NewStreamer(registry *Registry, store MediaStore, chunkSize int) *Streamer {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Streamer{
		registry:  registry,
		store:     store,
		chunkSize: chunkSize,
	}
}

// Stream pushes the track's media to every listener of the room's stream
// domain. It blocks until the media is exhausted or ctx is cancelled, so
// callers run it on a dedicated goroutine. The requester's disconnect
// cancels the stream via its close callback.
//
// Termination broadcasts an empty binary frame as the end-of-stream
// sentinel, clears the domain and releases the media handle.
func (s *Streamer) Stream(ctx context.Context, roomID string, trackNumber int, requester *Conn) {
	domain := StreamDomain(roomID)

	media, err := s.store.Open(ctx, trackNumber)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			requester.WriteText([]byte("Track not found"))
		} else {
			logger.Error("failed to open track media",
				logger.ErrorField(err),
				logger.String("room", roomID),
				logger.Int("track", trackNumber))
			requester.WriteText([]byte("Unable to open file"))
		}
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	requester.OnClose(cancel)

	logger.Info("stream started",
		logger.String("room", roomID),
		logger.Int("track", trackNumber),
		logger.Int("listeners", s.registry.Count(domain)))

	buf := make([]byte, s.chunkSize)
	for {
		select {
		case <-ctx.Done():
			s.terminate(domain, media, roomID, trackNumber)
			return
		default:
		}

		n, err := io.ReadFull(media, buf)
		if n > 0 {
			s.registry.BroadcastBinary(domain, buf[:n])
		}
		if err != nil {
			if err != io.EOF && err != io.ErrUnexpectedEOF {
				logger.Warn("stream read failed",
					logger.ErrorField(err),
					logger.String("room", roomID),
					logger.Int("track", trackNumber))
			}
			s.terminate(domain, media, roomID, trackNumber)
			return
		}
	}
}

func (s *Streamer) terminate(domain Domain, media io.ReadCloser, roomID string, trackNumber int) {
	s.registry.BroadcastBinary(domain, []byte{})
	s.registry.Clear(domain)
	media.Close()

	logger.Info("stream finished",
		logger.String("room", roomID),
		logger.Int("track", trackNumber))
}
