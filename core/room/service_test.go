package room

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"teamplayer/model"
	"teamplayer/repository"
)

func setupService(t *testing.T) (*Service, repository.UserRepository, repository.RoomRepository) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(
		&model.User{}, &model.Room{}, &model.RoomUser{}, &model.RoomPlaylist{},
		&model.Playlist{}, &model.TrackPlaylist{}, &model.Track{}, &model.ChatMessage{},
	))

	users := repository.NewGormUserRepository(gdb)
	rooms := repository.NewGormRoomRepository(gdb)
	return NewService(rooms, users), users, rooms
}

func createUser(t *testing.T, users repository.UserRepository, name, plan string) *model.User {
	t.Helper()
	u := &model.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        name + "@example.com",
		Plan:         plan,
		PasswordHash: "x",
	}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func TestCreateRoomCapacityByPlan(t *testing.T) {
	tests := []struct {
		plan     string
		capacity int
	}{
		{model.PlanBasic, 5},
		{model.PlanStandard, 15},
		{model.PlanPremium, 100},
		{"unknown", 100},
	}

	for _, tt := range tests {
		t.Run(tt.plan, func(t *testing.T) {
			svc, users, rooms := setupService(t)
			creator := createUser(t, users, "dj-"+tt.plan, tt.plan)

			created, err := svc.CreateRoom(context.Background(), creator.ID, CreateRoomInput{Name: "Friday"})
			require.NoError(t, err)
			assert.Equal(t, tt.capacity, created.UsersInRoom)
			assert.Equal(t, creator.ID, created.CreatorID)
			assert.Len(t, created.InvitationCode, 5)

			// Creator is a member from the start.
			member, err := rooms.GetMember(context.Background(), created.ID, creator.ID)
			require.NoError(t, err)
			assert.NotNil(t, member)

			// The room playlist exists and carries the derived name.
			playlistID, err := rooms.PlaylistIDForRoom(context.Background(), created.ID)
			require.NoError(t, err)
			assert.NotEmpty(t, playlistID)
		})
	}
}

func TestInvitationCodeAlphabet(t *testing.T) {
	for i := 0; i < 50; i++ {
		code := generateInvitationCode()
		require.Len(t, code, 5)
		for _, ch := range code {
			assert.True(t, strings.ContainsRune(invitationCodeAlphabet, ch), "unexpected character %q", ch)
		}
	}
}

func TestJoinPrivateRoomRequiresCode(t *testing.T) {
	svc, users, _ := setupService(t)
	creator := createUser(t, users, "owner", model.PlanBasic)
	guest := createUser(t, users, "guest", model.PlanBasic)

	created, err := svc.CreateRoom(context.Background(), creator.ID, CreateRoomInput{Name: "Secret", IsPrivate: true})
	require.NoError(t, err)

	_, err = svc.JoinRoom(context.Background(), created.ID, guest.ID, "wrong")
	assert.ErrorIs(t, err, model.ErrForbidden)

	resp, err := svc.JoinRoom(context.Background(), created.ID, guest.ID, created.InvitationCode)
	require.NoError(t, err)
	assert.Equal(t, created.ID, resp.ID)
	assert.Equal(t, "owner", resp.Creator)
}

func TestJoinRoomIsIdempotent(t *testing.T) {
	svc, users, rooms := setupService(t)
	creator := createUser(t, users, "owner", model.PlanBasic)
	guest := createUser(t, users, "guest", model.PlanBasic)

	created, err := svc.CreateRoom(context.Background(), creator.ID, CreateRoomInput{Name: "Open"})
	require.NoError(t, err)

	_, err = svc.JoinRoom(context.Background(), created.ID, guest.ID, "")
	require.NoError(t, err)
	_, err = svc.JoinRoom(context.Background(), created.ID, guest.ID, "")
	require.NoError(t, err)

	members, err := rooms.ListMembers(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestJoinByCodeSkipsPrivacyCheck(t *testing.T) {
	svc, users, _ := setupService(t)
	creator := createUser(t, users, "owner", model.PlanBasic)
	guest := createUser(t, users, "guest", model.PlanBasic)

	created, err := svc.CreateRoom(context.Background(), creator.ID, CreateRoomInput{Name: "Secret", IsPrivate: true})
	require.NoError(t, err)

	resp, err := svc.JoinRoomByCode(context.Background(), created.InvitationCode, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, resp.ID)

	_, err = svc.JoinRoomByCode(context.Background(), "nope!", guest.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestCloseRoomOnlyCreator(t *testing.T) {
	svc, users, rooms := setupService(t)
	creator := createUser(t, users, "owner", model.PlanBasic)
	guest := createUser(t, users, "guest", model.PlanBasic)

	created, err := svc.CreateRoom(context.Background(), creator.ID, CreateRoomInput{Name: "Doomed"})
	require.NoError(t, err)
	_, err = svc.JoinRoom(context.Background(), created.ID, guest.ID, "")
	require.NoError(t, err)

	err = svc.CloseRoom(context.Background(), created.ID, guest.ID)
	assert.ErrorIs(t, err, model.ErrForbidden)

	require.NoError(t, svc.CloseRoom(context.Background(), created.ID, creator.ID))

	gone, err := rooms.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestListMembersRequiresMembership(t *testing.T) {
	svc, users, _ := setupService(t)
	creator := createUser(t, users, "owner", model.PlanBasic)
	outsider := createUser(t, users, "outsider", model.PlanBasic)

	created, err := svc.CreateRoom(context.Background(), creator.ID, CreateRoomInput{Name: "Club"})
	require.NoError(t, err)

	_, err = svc.ListMembers(context.Background(), created.ID, outsider.ID)
	assert.ErrorIs(t, err, model.ErrForbidden)

	members, err := svc.ListMembers(context.Background(), created.ID, creator.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "owner", members[0].Name)
}

func TestKickOnlyCreator(t *testing.T) {
	svc, users, rooms := setupService(t)
	creator := createUser(t, users, "owner", model.PlanBasic)
	guest := createUser(t, users, "guest", model.PlanBasic)

	created, err := svc.CreateRoom(context.Background(), creator.ID, CreateRoomInput{Name: "Strict"})
	require.NoError(t, err)
	_, err = svc.JoinRoom(context.Background(), created.ID, guest.ID, "")
	require.NoError(t, err)

	err = svc.KickParticipant(context.Background(), created.ID, guest.ID, creator.ID)
	assert.ErrorIs(t, err, model.ErrForbidden)

	require.NoError(t, svc.KickParticipant(context.Background(), created.ID, creator.ID, guest.ID))

	member, err := rooms.GetMember(context.Background(), created.ID, guest.ID)
	require.NoError(t, err)
	assert.Nil(t, member)
}
