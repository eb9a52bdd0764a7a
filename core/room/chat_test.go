package room

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamplayer/model"
)

// fakeChatRepo records persisted messages and can be told to fail.
type fakeChatRepo struct {
	messages []*model.ChatMessage
	failNext bool
}

func (f *fakeChatRepo) CreateMessage(ctx context.Context, msg *model.ChatMessage) error {
	if f.failNext {
		f.failNext = false
		return errors.New("database unavailable")
	}
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeChatRepo) GetMessagesByRoom(ctx context.Context, roomID string) ([]*model.ChatMessage, error) {
	var out []*model.ChatMessage
	for _, m := range f.messages {
		if m.RoomID == roomID {
			out = append(out, m)
		}
	}
	return out, nil
}

func chatFrame(t *testing.T, message, creator, roomID string) []byte {
	t.Helper()
	payload, err := json.Marshal(model.ChatFrame{
		Message: message,
		Creator: creator,
		Room:    roomID,
	})
	require.NoError(t, err)
	return payload
}

func TestChatPersistThenBroadcast(t *testing.T) {
	r := NewRegistry()
	repo := &fakeChatRepo{}
	chat := NewChatService(r, repo)

	sender := NewConn(&fakeTransport{})
	listener := NewConn(&fakeTransport{})
	outsider := NewConn(&fakeTransport{})
	chat.Connect("room-1", sender)
	chat.Connect("room-1", listener)
	chat.Connect("room-2", outsider)

	payload := chatFrame(t, "hello", "user-1", "room-1")
	chat.HandleFrame(context.Background(), sender, payload)

	// Persisted first.
	require.Len(t, repo.messages, 1)
	assert.Equal(t, "hello", repo.messages[0].Message)
	assert.Equal(t, "user-1", repo.messages[0].CreatorID)
	assert.Equal(t, "room-1", repo.messages[0].RoomID)

	// Fanned out to the room, sender included, other rooms untouched.
	senderFrames := sender.ws.(*fakeTransport).sentFrames()
	listenerFrames := listener.ws.(*fakeTransport).sentFrames()
	require.Len(t, senderFrames, 1)
	require.Len(t, listenerFrames, 1)
	assert.Equal(t, payload, senderFrames[0].data)
	assert.Len(t, outsider.ws.(*fakeTransport).sentFrames(), 0)
}

func TestChatNoBroadcastWhenPersistFails(t *testing.T) {
	r := NewRegistry()
	repo := &fakeChatRepo{failNext: true}
	chat := NewChatService(r, repo)

	sender := NewConn(&fakeTransport{})
	listener := NewConn(&fakeTransport{})
	chat.Connect("room-1", sender)
	chat.Connect("room-1", listener)

	chat.HandleFrame(context.Background(), sender, chatFrame(t, "lost", "user-1", "room-1"))

	assert.Len(t, repo.messages, 0)
	assert.Len(t, listener.ws.(*fakeTransport).sentFrames(), 0)
	assert.Len(t, sender.ws.(*fakeTransport).sentFrames(), 0)
}

func TestChatMalformedFrameDropped(t *testing.T) {
	r := NewRegistry()
	repo := &fakeChatRepo{}
	chat := NewChatService(r, repo)

	sender := NewConn(&fakeTransport{})
	chat.Connect("room-1", sender)

	chat.HandleFrame(context.Background(), sender, []byte("not json"))
	chat.HandleFrame(context.Background(), sender, chatFrame(t, "", "user-1", "room-1"))

	assert.Len(t, repo.messages, 0)
	// The connection stays open and registered.
	assert.Less(t, sender.State(), StateClosing)
	assert.Equal(t, 1, r.Count(ChatDomain("room-1")))
}

func TestChatDisconnectLeavesRegistry(t *testing.T) {
	r := NewRegistry()
	chat := NewChatService(r, &fakeChatRepo{})

	conn := NewConn(&fakeTransport{})
	chat.Connect("room-1", conn)
	require.Equal(t, 1, r.Count(ChatDomain("room-1")))

	conn.Close()
	assert.Equal(t, 0, r.Count(ChatDomain("room-1")))
}

func TestChatHistoryOrder(t *testing.T) {
	r := NewRegistry()
	repo := &fakeChatRepo{}
	chat := NewChatService(r, repo)

	sender := NewConn(&fakeTransport{})
	chat.Connect("room-1", sender)

	for _, text := range []string{"first", "second", "third"} {
		chat.HandleFrame(context.Background(), sender, chatFrame(t, text, "user-1", "room-1"))
	}

	history, err := chat.History(context.Background(), "room-1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "first", history[0].Message)
	assert.Equal(t, "third", history[2].Message)
}
