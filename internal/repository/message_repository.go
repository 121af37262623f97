package repository

import (
	"context"
	"errors"
	"time"

	"marketchat/internal/domain/chat"
	marketchat_errors "marketchat/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &PostgresMessageRepository{db: db}
}

func (r *PostgresMessageRepository) Create(ctx context.Context, m *chat.Message) error {
	res := r.db.WithContext(ctx).Create(m)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return marketchat_errors.ErrConflict
		}
		return res.Error
	}
	return nil
}

func (r *PostgresMessageRepository) GetByID(ctx context.Context, id uuid.UUID) (chat.Message, error) {
	var m chat.Message
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return chat.Message{}, marketchat_errors.ErrNotFound
		}
		return chat.Message{}, err
	}
	return m, nil
}

func (r *PostgresMessageRepository) ListRoomMessages(ctx context.Context, roomID uuid.UUID, after time.Time) ([]chat.Message, error) {
	var messages []chat.Message
	q := r.db.WithContext(ctx).Where("room_id = ?", roomID)

	if !after.IsZero() {
		q = q.Where("created_at > ?", after)
	}

	err := q.Order("created_at ASC, id ASC").Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkRead is guarded by read_at IS NULL so a timestamp, once set, is never
// overwritten by a second mark.
func (r *PostgresMessageRepository) MarkRead(ctx context.Context, messageIDs []uuid.UUID, at time.Time) ([]uuid.UUID, error) {
	if len(messageIDs) == 0 {
		return nil, nil
	}

	var updated []chat.Message
	res := r.db.WithContext(ctx).
		Model(&updated).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "id"}}}).
		Where("id IN ? AND read_at IS NULL", messageIDs).
		Update("read_at", at)
	if res.Error != nil {
		return nil, res.Error
	}

	ids := make([]uuid.UUID, 0, len(updated))
	for _, m := range updated {
		ids = append(ids, m.ID)
	}
	return ids, nil
}
