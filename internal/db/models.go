package db

import (
	"time"
)

// User is the core identity row. IDs are assigned by the caller at
// registration time, never by the database, so uniqueness is enforced
// solely through the primary key.
type User struct {
	ID          uint64  `gorm:"primaryKey;autoIncrement:false"`
	Email       string  `gorm:"size:128;not null"`
	Name        string  `gorm:"size:64;not null"`
	Password    string  `gorm:"size:255;not null"`
	Gender      *string `gorm:"size:16"`
	BirthDate   *time.Time
	Preferences *string `gorm:"size:255"`
	Location    *string `gorm:"size:128"`
	Age         *int

	Admin   *Admin   `gorm:"foreignKey:UserID"`
	Profile *Profile `gorm:"foreignKey:UserID"`
}

// Profile holds optional extended user data, kept separate from the
// identity row. One profile per user by convention; the column itself
// is not unique.
type Profile struct {
	ID          uint64  `gorm:"primaryKey;autoIncrement"`
	UserID      uint64  `gorm:"not null"`
	Photo       []byte  `gorm:"type:blob"`
	Description *string `gorm:"type:text"`
	Interests   *string `gorm:"type:text"`

	User User `gorm:"foreignKey:UserID"`
}

// Admin marks a user as a moderator and carries their block flag.
type Admin struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	UserID    uint64 `gorm:"not null;uniqueIndex"`
	IsBlocked bool   `gorm:"default:false"`

	User User `gorm:"foreignKey:UserID"`
}

// Like records that user_id liked liked_user_id. There is deliberately
// no uniqueness constraint: repeated likes accumulate as rows, and
// readers deduplicate per liker.
type Like struct {
	ID          uint64 `gorm:"primaryKey"`
	UserID      uint64 `gorm:"index"`
	LikedUserID uint64 `gorm:"index"`

	User      User `gorm:"foreignKey:UserID"`
	LikedUser User `gorm:"foreignKey:LikedUserID"`
}

// Match records a confirmed pairing from user_id's point of view.
//
// The unique index is on the ordered (user_id, liked_user_id) pair, so
// (A,B) and (B,A) are distinct rows. A mutual like is stored as two
// mirrored rows, one per participant, each insert made idempotent by
// the constraint.
type Match struct {
	ID          uint64 `gorm:"primaryKey"`
	UserID      uint64 `gorm:"uniqueIndex:uniq_match,priority:1"`
	LikedUserID uint64 `gorm:"uniqueIndex:uniq_match,priority:2"`

	User      User `gorm:"foreignKey:UserID"`
	LikedUser User `gorm:"foreignKey:LikedUserID"`
}

// Message is a direct message between two users. The table carries no
// timestamp column; the auto-increment id is the only insertion order.
type Message struct {
	ID         uint64 `gorm:"primaryKey"`
	SenderID   uint64 `gorm:"index"`
	ReceiverID uint64 `gorm:"index"`
	Message    string `gorm:"type:text"`

	Sender   User `gorm:"foreignKey:SenderID"`
	Receiver User `gorm:"foreignKey:ReceiverID"`
}
