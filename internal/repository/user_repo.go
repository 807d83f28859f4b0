package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/udinder/udinder/internal/db"
)

// UserRepository provides data access methods for users, profiles and
// admin records.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository bound to the given DB connection.
func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// CreateUser inserts a user row. The caller supplies the ID; the
// database never generates one, so a reused ID fails on the primary key.
func (r *UserRepository) CreateUser(ctx context.Context, user *db.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetUser loads a user with their profile and admin record, if any.
func (r *UserRepository) GetUser(ctx context.Context, id uint64) (*db.User, error) {
	var user db.User
	err := r.db.WithContext(ctx).
		Preload("Profile").
		Preload("Admin").
		First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpsertProfile creates or updates the profile attached to a user.
//
// profiles.user_id carries no unique constraint, so the upsert is done
// by lookup rather than ON CONFLICT: the first profile row for the
// user is updated in place, or a new row inserted when none exists.
func (r *UserRepository) UpsertProfile(ctx context.Context, profile *db.Profile) error {
	var existing db.Profile
	err := r.db.WithContext(ctx).
		Where("user_id = ?", profile.UserID).
		First(&existing).Error
	if err == nil {
		profile.ID = existing.ID
		return r.db.WithContext(ctx).Save(profile).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return r.db.WithContext(ctx).Create(profile).Error
}

// GrantAdmin inserts an admin record for the user, or leaves the
// existing one untouched. admins.user_id is unique, so the insert is
// idempotent via ON CONFLICT DO NOTHING.
func (r *UserRepository) GrantAdmin(ctx context.Context, userID uint64) (*db.Admin, error) {
	admin := db.Admin{UserID: userID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&admin).Error
	if err != nil {
		return nil, err
	}

	var out db.Admin
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// SetAdminBlocked flips the is_blocked flag on a user's admin record.
// Returns gorm.ErrRecordNotFound when the user has no admin record.
func (r *UserRepository) SetAdminBlocked(ctx context.Context, userID uint64, blocked bool) error {
	res := r.db.WithContext(ctx).
		Model(&db.Admin{}).
		Where("user_id = ?", userID).
		Update("is_blocked", blocked)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
