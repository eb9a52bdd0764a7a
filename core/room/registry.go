package room

import (
	"sync"

	"teamplayer/logger"

	"github.com/gorilla/websocket"
)

// Domain names one broadcast group: the set of connections that should
// receive a given category of realtime event for one room.
type Domain string

// ChatDomain is the broadcast group for a room's chat messages.
func ChatDomain(roomID string) Domain {
	return Domain("chat:" + roomID)
}

// StreamDomain is the broadcast group for a room's playback control and
// audio chunks.
func StreamDomain(roomID string) Domain {
	return Domain("stream:" + roomID)
}

// Registry owns the live connection sets per broadcast domain. It is
// constructed once at process start and shared by every socket handler;
// all mutation happens under its lock.
type Registry struct {
	mu      sync.RWMutex
	domains map[Domain]map[string]*Conn
	// conn id -> domains it belongs to, for removal on disconnect
	members map[string]map[Domain]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		domains: make(map[Domain]map[string]*Conn),
		members: make(map[string]map[Domain]struct{}),
	}
}

// Join adds the connection to the domain. Joining a domain the connection
// is already in is a no-op.
func (r *Registry) Join(d Domain, c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.domains[d] == nil {
		r.domains[d] = make(map[string]*Conn)
	}
	if _, ok := r.domains[d][c.ID()]; ok {
		return
	}
	r.domains[d][c.ID()] = c

	if r.members[c.ID()] == nil {
		r.members[c.ID()] = make(map[Domain]struct{})
	}
	r.members[c.ID()][d] = struct{}{}

	c.markRegistered()
}

// Leave removes the connection from the domain. Safe to call when the
// connection was never joined.
func (r *Registry) Leave(d Domain, c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.removeLocked(d, c.ID())
}

// Drop removes the connection from every domain it belongs to. Called on
// disconnect and on send failure.
func (r *Registry) Drop(c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for d := range r.members[c.ID()] {
		r.removeLocked(d, c.ID())
	}
}

// Clear empties the domain, detaching every connection from it without
// closing them.
func (r *Registry) Clear(d Domain) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id := range r.domains[d] {
		r.removeLocked(d, id)
	}
}

func (r *Registry) removeLocked(d Domain, connID string) {
	if conns, ok := r.domains[d]; ok {
		delete(conns, connID)
		if len(conns) == 0 {
			delete(r.domains, d)
		}
	}
	if doms, ok := r.members[connID]; ok {
		delete(doms, d)
		if len(doms) == 0 {
			delete(r.members, connID)
		}
	}
}

// Count returns the number of connections in the domain.
func (r *Registry) Count(d Domain) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.domains[d])
}

// Conns returns a snapshot of the domain's connections.
func (r *Registry) Conns(d Domain) []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]*Conn, 0, len(r.domains[d]))
	for _, c := range r.domains[d] {
		conns = append(conns, c)
	}
	return conns
}

// Broadcast sends the payload to every connection currently in the domain.
// A failing send is logged and evicts that connection from all domains;
// delivery to the remaining connections continues.
func (r *Registry) Broadcast(d Domain, messageType int, payload []byte) {
	// Snapshot first so sends happen outside the lock.
	conns := r.Conns(d)

	for _, c := range conns {
		if err := c.write(messageType, payload); err != nil {
			logger.Warn("broadcast send failed",
				logger.ErrorField(err),
				logger.String("domain", string(d)),
				logger.String("conn", c.ID()))
			r.Drop(c)
		}
	}
}

// BroadcastText sends a text frame to the domain.
func (r *Registry) BroadcastText(d Domain, payload []byte) {
	r.Broadcast(d, websocket.TextMessage, payload)
}

// BroadcastBinary sends a binary frame to the domain.
func (r *Registry) BroadcastBinary(d Domain, payload []byte) {
	r.Broadcast(d, websocket.BinaryMessage, payload)
}
