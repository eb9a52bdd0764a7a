package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"teamplayer/db"
)

const (
	roomOnlineKey = "room:%s:online_users" // Set: userIDs currently connected
	presenceTTL   = 24 * time.Hour
)

// RoomPresence tracks which users hold a live socket in each room.
// Presence is advisory: it is refreshed on every connect and the key
// expires on its own if the room goes quiet.
type RoomPresence struct {
	client *redis.Client
}

// NewRoomPresence creates the presence cache on the shared Redis client.
func NewRoomPresence() *RoomPresence {
	return &RoomPresence{client: db.RedisClient}
}

// NewRoomPresenceWithClient creates the presence cache on an explicit
// client, for tests.
func NewRoomPresenceWithClient(client *redis.Client) *RoomPresence {
	return &RoomPresence{client: client}
}

// SetOnline marks the user as present in the room.
func (c *RoomPresence) SetOnline(ctx context.Context, roomID, userID string) error {
	if c.client == nil {
		return fmt.Errorf("redis client not initialized")
	}

	key := fmt.Sprintf(roomOnlineKey, roomID)
	pipe := c.client.Pipeline()
	pipe.SAdd(ctx, key, userID)
	pipe.Expire(ctx, key, presenceTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// SetOffline removes the user from the room's online set.
func (c *RoomPresence) SetOffline(ctx context.Context, roomID, userID string) error {
	if c.client == nil {
		return fmt.Errorf("redis client not initialized")
	}

	key := fmt.Sprintf(roomOnlineKey, roomID)
	return c.client.SRem(ctx, key, userID).Err()
}

// OnlineUsers returns the IDs of users currently present in the room.
func (c *RoomPresence) OnlineUsers(ctx context.Context, roomID string) ([]string, error) {
	if c.client == nil {
		return nil, fmt.Errorf("redis client not initialized")
	}

	key := fmt.Sprintf(roomOnlineKey, roomID)
	return c.client.SMembers(ctx, key).Result()
}

// OnlineCount returns the number of users currently present in the room.
func (c *RoomPresence) OnlineCount(ctx context.Context, roomID string) (int64, error) {
	if c.client == nil {
		return 0, fmt.Errorf("redis client not initialized")
	}

	key := fmt.Sprintf(roomOnlineKey, roomID)
	return c.client.SCard(ctx, key).Result()
}

// ClearRoom drops the room's presence set, used when a room closes.
func (c *RoomPresence) ClearRoom(ctx context.Context, roomID string) error {
	if c.client == nil {
		return fmt.Errorf("redis client not initialized")
	}

	key := fmt.Sprintf(roomOnlineKey, roomID)
	return c.client.Del(ctx, key).Err()
}
