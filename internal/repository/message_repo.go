package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/udinder/udinder/internal/db"
	"github.com/udinder/udinder/internal/utils/pagination"
)

// MessageRepository provides data access methods for the Message model.
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new repository bound to the given DB connection.
func NewMessageRepository(database *gorm.DB) *MessageRepository {
	return &MessageRepository{db: database}
}

// CreateMessage inserts a message row. Foreign keys on sender_id and
// receiver_id surface as gorm.ErrForeignKeyViolated when either user
// does not exist.
func (r *MessageRepository) CreateMessage(ctx context.Context, msg *db.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// ListConversation returns messages exchanged between two users in
// either direction, newest first.
//
// The messages table has no timestamp column, so ordering and the
// pagination cursor both ride on the auto-increment id.
func (r *MessageRepository) ListConversation(
	ctx context.Context,
	userID, peerID uint64,
	paginationToken *string,
	limit int,
) ([]db.Message, *string, error) {
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Where(
			"(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, peerID, peerID, userID,
		).
		Order("id DESC").
		Limit(limit + 1)

	if cursor.LastID > 0 {
		query = query.Where("id < ?", cursor.LastID)
	}

	var messages []db.Message
	if err := query.Find(&messages).Error; err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(messages) > limit {
		last := messages[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{LastID: last.ID})
		nextToken = &token
		messages = messages[:limit]
	}

	return messages, nextToken, nil
}
