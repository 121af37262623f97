package repository

import (
	"context"
	"errors"
	"time"

	"marketchat/internal/domain/chat"
	marketchat_errors "marketchat/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresRoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) RoomRepository {
	return &PostgresRoomRepository{db: db}
}

func (r *PostgresRoomRepository) Create(ctx context.Context, room *chat.ChatRoom) error {
	res := r.db.WithContext(ctx).Create(room)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return marketchat_errors.ErrConflict
		}
		return res.Error
	}
	return nil
}

func (r *PostgresRoomRepository) GetByID(ctx context.Context, id uuid.UUID) (chat.ChatRoom, error) {
	var room chat.ChatRoom
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return chat.ChatRoom{}, marketchat_errors.ErrNotFound
		}
		return chat.ChatRoom{}, err
	}
	return room, nil
}

func (r *PostgresRoomRepository) FindByPair(ctx context.Context, low, high uuid.UUID, listingID uuid.NullUUID) (chat.ChatRoom, error) {
	var room chat.ChatRoom
	q := r.db.WithContext(ctx).
		Where("participant_low = ? AND participant_high = ?", low, high)

	if listingID.Valid {
		q = q.Where("listing_id = ?", listingID.UUID)
	} else {
		q = q.Where("listing_id IS NULL")
	}

	err := q.First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return chat.ChatRoom{}, marketchat_errors.ErrNotFound
		}
		return chat.ChatRoom{}, err
	}
	return room, nil
}

func (r *PostgresRoomRepository) GetUserRooms(ctx context.Context, userID uuid.UUID) ([]chat.ChatRoom, error) {
	var rooms []chat.ChatRoom
	err := r.db.WithContext(ctx).
		Where("participant_low = ? OR participant_high = ?", userID, userID).
		Order("last_activity_at DESC").
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

func (r *PostgresRoomRepository) TouchActivity(ctx context.Context, roomID uuid.UUID, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&chat.ChatRoom{}).
		Where("id = ?", roomID).
		Update("last_activity_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return marketchat_errors.ErrNotFound
	}
	return nil
}
