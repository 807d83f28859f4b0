package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/udinder/udinder/internal/db"
	"github.com/udinder/udinder/internal/utils/pagination"
)

// LikeRepository provides data access methods for the Like and Match
// models. Likes are append-only; matches are deduplicated by the
// (user_id, liked_user_id) unique constraint.
type LikeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new repository bound to the given DB connection.
func NewLikeRepository(database *gorm.DB) *LikeRepository {
	return &LikeRepository{db: database}
}

// CreateLike appends a like row from userID to likedUserID.
//
// The likes table has no uniqueness constraint: liking the same user
// twice inserts a second row. Readers deduplicate per liker.
func (r *LikeRepository) CreateLike(ctx context.Context, userID, likedUserID uint64) error {
	like := db.Like{
		UserID:      userID,
		LikedUserID: likedUserID,
	}
	return r.db.WithContext(ctx).Create(&like).Error
}

// HasLiked checks whether userID has at least one like row toward
// likedUserID. Used for mutual-like detection on the write path.
func (r *LikeRepository) HasLiked(ctx context.Context, userID, likedUserID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Like{}).
		Where("user_id = ? AND liked_user_id = ?", userID, likedUserID).
		Count(&count).Error
	return count > 0, err
}

// CountLikers returns how many distinct users liked the given user.
// Duplicate like rows from the same liker count once.
func (r *LikeRepository) CountLikers(ctx context.Context, likedUserID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Like{}).
		Where("liked_user_id = ?", likedUserID).
		Distinct("user_id").
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ListLikers returns the users who liked the given user, newest first.
//
// Behavior:
//   - Duplicate likes collapse to the liker's most recent row.
//   - Ordered by the collapsed row id descending (the table has ids
//     but no timestamps).
//   - Supports cursor-based pagination via paginationToken.
func (r *LikeRepository) ListLikers(
	ctx context.Context,
	likedUserID uint64,
	paginationToken *string,
	limit int,
) ([]db.Like, *string, error) {
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Model(&db.Like{}).
		Select("MAX(id) AS id, user_id, liked_user_id").
		Where("liked_user_id = ?", likedUserID).
		Group("user_id").
		Order("id DESC").
		Limit(limit + 1)

	if cursor.LastID > 0 {
		query = query.Having("MAX(id) < ?", cursor.LastID)
	}

	var likes []db.Like
	if err := query.Find(&likes).Error; err != nil {
		return nil, nil, err
	}

	return pageOfLikes(likes, limit)
}

// CreateMatch inserts a match row for the ordered (userID, likedUserID)
// pair. The unique constraint makes repeated inserts no-ops, so replays
// of the same mutual like are idempotent.
func (r *LikeRepository) CreateMatch(ctx context.Context, userID, likedUserID uint64) error {
	match := db.Match{
		UserID:      userID,
		LikedUserID: likedUserID,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "liked_user_id"}},
			DoNothing: true,
		}).
		Create(&match).Error
}

// CountMatches returns how many match rows the user owns.
func (r *LikeRepository) CountMatches(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Match{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// ListMatches returns the user's match rows, newest first, with cursor
// pagination.
func (r *LikeRepository) ListMatches(
	ctx context.Context,
	userID uint64,
	paginationToken *string,
	limit int,
) ([]db.Match, *string, error) {
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit + 1)

	if cursor.LastID > 0 {
		query = query.Where("id < ?", cursor.LastID)
	}

	var matches []db.Match
	if err := query.Find(&matches).Error; err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(matches) > limit {
		last := matches[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{LastID: last.ID})
		nextToken = &token
		matches = matches[:limit]
	}

	return matches, nextToken, nil
}

// pageOfLikes trims the limit+1 overscan and builds the next cursor.
func pageOfLikes(likes []db.Like, limit int) ([]db.Like, *string, error) {
	var nextToken *string
	if len(likes) > limit {
		last := likes[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{LastID: last.ID})
		nextToken = &token
		likes = likes[:limit]
	}
	return likes, nextToken, nil
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
