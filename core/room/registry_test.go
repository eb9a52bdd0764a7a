package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryJoinIsIdempotent(t *testing.T) {
	r := NewRegistry()
	c := NewConn(&fakeTransport{})
	d := ChatDomain("room-1")

	r.Join(d, c)
	r.Join(d, c)

	assert.Equal(t, 1, r.Count(d))
	assert.Equal(t, StateRegistered, c.State())
}

func TestRegistryLeave(t *testing.T) {
	r := NewRegistry()
	c := NewConn(&fakeTransport{})
	d := ChatDomain("room-1")

	r.Join(d, c)
	r.Leave(d, c)
	assert.Equal(t, 0, r.Count(d))

	// Leaving a domain the conn never joined is fine.
	r.Leave(StreamDomain("room-1"), c)
}

func TestRegistryDropRemovesFromAllDomains(t *testing.T) {
	r := NewRegistry()
	c := NewConn(&fakeTransport{})

	r.Join(ChatDomain("room-1"), c)
	r.Join(StreamDomain("room-1"), c)
	r.Join(ChatDomain("room-2"), c)

	r.Drop(c)

	assert.Equal(t, 0, r.Count(ChatDomain("room-1")))
	assert.Equal(t, 0, r.Count(StreamDomain("room-1")))
	assert.Equal(t, 0, r.Count(ChatDomain("room-2")))
}

func TestRegistryClearDetachesWithoutClosing(t *testing.T) {
	r := NewRegistry()
	a := NewConn(&fakeTransport{})
	b := NewConn(&fakeTransport{})
	d := StreamDomain("room-1")

	r.Join(d, a)
	r.Join(d, b)

	r.Clear(d)

	assert.Equal(t, 0, r.Count(d))
	assert.Less(t, a.State(), StateClosing)
	assert.Less(t, b.State(), StateClosing)
}

func TestRegistryDomainsAreIsolated(t *testing.T) {
	r := NewRegistry()
	chatConn := NewConn(&fakeTransport{})
	streamConn := NewConn(&fakeTransport{})

	r.Join(ChatDomain("room-1"), chatConn)
	r.Join(StreamDomain("room-1"), streamConn)

	assert.Equal(t, 1, r.Count(ChatDomain("room-1")))
	assert.Equal(t, 1, r.Count(StreamDomain("room-1")))

	r.BroadcastText(ChatDomain("room-1"), []byte("hi"))

	ct := chatConn.ws.(*fakeTransport)
	st := streamConn.ws.(*fakeTransport)
	assert.Len(t, ct.sentFrames(), 1)
	assert.Len(t, st.sentFrames(), 0)
}

func TestRegistryBroadcastEvictsFailingConn(t *testing.T) {
	r := NewRegistry()
	healthy := &fakeTransport{}
	broken := &fakeTransport{failWrites: true}
	a := NewConn(healthy)
	b := NewConn(broken)
	d := ChatDomain("room-1")

	r.Join(d, a)
	r.Join(d, b)

	r.BroadcastText(d, []byte("one"))
	r.BroadcastText(d, []byte("two"))

	// The healthy conn got both payloads, the broken one is gone.
	require.Len(t, healthy.sentFrames(), 2)
	assert.Equal(t, 1, r.Count(d))
	conns := r.Conns(d)
	require.Len(t, conns, 1)
	assert.Equal(t, a.ID(), conns[0].ID())
}
