package room

import (
	"context"
	"math/rand"
	"sync"

	"teamplayer/logger"
	"teamplayer/model"
	"teamplayer/repository"
)

const (
	invitationCodeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	invitationCodeLength   = 5

	ratingLimit = 10
)

// Service implements room lifecycle and membership operations on top of
// the persistence layer.
type Service struct {
	rooms repository.RoomRepository
	users repository.UserRepository

	// Serializes DJ handoffs per room so two concurrent transfers on the
	// same room cannot interleave.
	handoffMu sync.Mutex
	handoffs  map[string]*sync.Mutex
}

// NewService creates the room service.
func NewService(rooms repository.RoomRepository, users repository.UserRepository) *Service {
	return &Service{
		rooms:    rooms,
		users:    users,
		handoffs: make(map[string]*sync.Mutex),
	}
}

// CreateRoomInput carries the caller-supplied room attributes.
type CreateRoomInput struct {
	Name        string
	IsPrivate   bool
	ImageData   string
	Description string
}

// CreateRoom creates the room, the creator's membership, the room playlist
// and its binding in one transaction. Capacity is frozen from the
// creator's subscription plan.
func (s *Service) CreateRoom(ctx context.Context, creatorID string, input CreateRoomInput) (*model.Room, error) {
	creator, err := s.users.GetByID(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	if creator == nil {
		return nil, model.NotFoundf("user %s", creatorID)
	}

	room := &model.Room{
		Name:           input.Name,
		CreatorID:      creator.ID,
		IsPrivate:      input.IsPrivate,
		InvitationCode: generateInvitationCode(),
		UsersInRoom:    model.RoomCapacityForPlan(creator.Plan),
		ImageData:      input.ImageData,
		Description:    input.Description,
	}
	playlist := &model.Playlist{
		Name:        input.Name + "Playlist",
		CreatorID:   creator.ID,
		Description: input.Description,
	}

	if err := s.rooms.CreateWithPlaylist(ctx, room, playlist); err != nil {
		return nil, err
	}

	logger.Info("room created",
		logger.String("room", room.ID),
		logger.String("creator", creator.ID),
		logger.Int("capacity", room.UsersInRoom))

	return room, nil
}

// JoinRoom adds the user to the room by ID. An existing member gets the
// room view back without a second membership row; private rooms require
// the matching invitation code.
func (s *Service) JoinRoom(ctx context.Context, roomID, userID, invitationCode string) (*model.JoinResponse, error) {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, model.NotFoundf("room %s", roomID)
	}

	member, err := s.rooms.GetMember(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		if room.IsPrivate && room.InvitationCode != invitationCode {
			return nil, model.Forbiddenf("invalid invitation code for private room")
		}
		if err := s.rooms.AddMember(ctx, roomID, userID); err != nil {
			return nil, err
		}
	}

	return s.joinResponse(ctx, room)
}

// JoinRoomByCode adds the user to the room matching the invitation code.
// Knowing the code is the proof of invitation, so no further check applies.
func (s *Service) JoinRoomByCode(ctx context.Context, invitationCode, userID string) (*model.JoinResponse, error) {
	room, err := s.rooms.GetByCode(ctx, invitationCode)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, model.NotFoundf("room with code %s", invitationCode)
	}

	member, err := s.rooms.GetMember(ctx, room.ID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		if err := s.rooms.AddMember(ctx, room.ID, userID); err != nil {
			return nil, err
		}
	}

	return s.joinResponse(ctx, room)
}

func (s *Service) joinResponse(ctx context.Context, room *model.Room) (*model.JoinResponse, error) {
	creatorName := ""
	if creator, err := s.users.GetByID(ctx, room.CreatorID); err == nil && creator != nil {
		creatorName = creator.Name
	}

	return &model.JoinResponse{
		ID:             room.ID,
		Name:           room.Name,
		Creator:        creatorName,
		IsPrivate:      room.IsPrivate,
		InvitationCode: room.InvitationCode,
		Description:    room.Description,
	}, nil
}

// LeaveRoom removes the user's membership.
func (s *Service) LeaveRoom(ctx context.Context, roomID, userID string) error {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return err
	}
	if room == nil {
		return model.NotFoundf("room %s", roomID)
	}

	return s.rooms.RemoveMember(ctx, roomID, userID)
}

// CloseRoom deletes the room and everything hanging off it. Only the
// room's creator may close it.
func (s *Service) CloseRoom(ctx context.Context, roomID, userID string) error {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return err
	}
	if room == nil {
		return model.NotFoundf("room %s", roomID)
	}
	if room.CreatorID != userID {
		return model.Forbiddenf("only the room admin can close the room")
	}

	if err := s.rooms.CloseCascade(ctx, roomID); err != nil {
		return err
	}

	logger.Info("room closed", logger.String("room", roomID))
	return nil
}

// KickParticipant removes another member from the room. Only the creator
// may kick.
func (s *Service) KickParticipant(ctx context.Context, roomID, callerID, targetUserID string) error {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return err
	}
	if room == nil || room.CreatorID != callerID {
		return model.Forbiddenf("only the room admin can kick participants")
	}

	return s.rooms.RemoveMember(ctx, roomID, targetUserID)
}

// SetDJ performs the DJ handoff: room ownership, playlist ownership and
// the caller's membership row move to the new DJ in one transaction.
// Handoffs on the same room are serialized.
func (s *Service) SetDJ(ctx context.Context, roomID, callerID, newDJID string) error {
	lock := s.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.rooms.TransferDJ(ctx, roomID, callerID, newDJID); err != nil {
		return err
	}

	logger.Info("DJ changed",
		logger.String("room", roomID),
		logger.String("from", callerID),
		logger.String("to", newDJID))
	return nil
}

func (s *Service) roomLock(roomID string) *sync.Mutex {
	s.handoffMu.Lock()
	defer s.handoffMu.Unlock()

	lock, ok := s.handoffs[roomID]
	if !ok {
		lock = &sync.Mutex{}
		s.handoffs[roomID] = lock
	}
	return lock
}

// ListJoined returns the rooms the user is a member of.
func (s *Service) ListJoined(ctx context.Context, userID string) ([]*model.Room, error) {
	return s.rooms.ListByMember(ctx, userID)
}

// ListPublic returns all public rooms.
func (s *Service) ListPublic(ctx context.Context) ([]*model.Room, error) {
	return s.rooms.ListPublic(ctx)
}

// SearchByName returns rooms whose name contains the query.
func (s *Service) SearchByName(ctx context.Context, name string) ([]*model.Room, error) {
	return s.rooms.SearchByName(ctx, name)
}

// Rating returns the ten busiest rooms by membership count.
func (s *Service) Rating(ctx context.Context) ([]*model.RoomRating, error) {
	return s.rooms.Rating(ctx, ratingLimit)
}

// ListMembers returns the room's members. The caller must be a member
// themselves.
func (s *Service) ListMembers(ctx context.Context, roomID, callerID string) ([]model.PublicUser, error) {
	member, err := s.rooms.GetMember(ctx, roomID, callerID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, model.Forbiddenf("user is not in the room")
	}

	users, err := s.rooms.ListMembers(ctx, roomID)
	if err != nil {
		return nil, err
	}

	out := make([]model.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}

// PlaylistID returns the ID of the playlist bound to the room.
func (s *Service) PlaylistID(ctx context.Context, roomID string) (string, error) {
	id, err := s.rooms.PlaylistIDForRoom(ctx, roomID)
	if err != nil {
		return "", err
	}
	return id, nil
}

// generateInvitationCode produces a 5-character code. Codes are not
// checked for uniqueness against existing rooms.
func generateInvitationCode() string {
	code := make([]byte, invitationCodeLength)
	for i := range code {
		code[i] = invitationCodeAlphabet[rand.Intn(len(invitationCodeAlphabet))]
	}
	return string(code)
}
