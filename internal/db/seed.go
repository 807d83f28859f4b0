package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// seedTables lists every table in FK-safe deletion order.
var seedTables = []string{"messages", "matches", "likes", "admins", "profiles", "users"}

// SeedTestData resets the database and populates it with demo data.
//
// Behavior:
//  1. Clears all six tables in FK-safe order.
//  2. Creates 20 users (10 male, 10 female) with caller-assigned IDs
//     and hashed passwords, plus profiles for the first half.
//  3. Generates random likes across genders; every 3rd pair is made
//     mutual, which also inserts the mirrored match rows.
//  4. Drops a short message exchange into each matched pair.
//
// Compatible with both MySQL and SQLite (AUTO_INCREMENT reset skipped for SQLite).
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	// --- Fresh start ---
	for _, table := range seedTables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	// Reset auto-increment sequences
	switch db.Dialector.Name() {
	case "mysql":
		for _, table := range seedTables {
			db.Exec("ALTER TABLE " + table + " AUTO_INCREMENT = 1")
		}
	case "sqlite":
		for _, table := range seedTables {
			db.Exec("DELETE FROM sqlite_sequence WHERE name = ?", table)
		}
	}

	log.Println("Cleared existing data")

	// --- Seed Users (10 male, 10 female), IDs assigned here, never by the DB ---
	for i := 1; i <= 20; i++ {
		hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		gender := "male"
		if i > 10 {
			gender = "female"
		}
		birth := time.Date(1980+r.Intn(25), time.Month(1+r.Intn(12)), 1+r.Intn(28), 0, 0, 0, 0, time.UTC)
		age := int(time.Since(birth).Hours() / 24 / 365)
		location := "London"
		prefs := "female"
		if gender == "female" {
			prefs = "male"
		}

		user := User{
			ID:          uint64(i),
			Email:       fmt.Sprintf("user%d@example.com", i),
			Name:        fmt.Sprintf("user%d", i),
			Password:    string(hash),
			Gender:      &gender,
			BirthDate:   &birth,
			Preferences: &prefs,
			Location:    &location,
			Age:         &age,
		}

		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}

		if i <= 10 {
			desc := fmt.Sprintf("demo profile for user%d", i)
			interests := "hiking, coffee"
			profile := Profile{
				UserID:      user.ID,
				Description: &desc,
				Interests:   &interests,
			}
			if err := db.Create(&profile).Error; err != nil {
				return fmt.Errorf("failed to seed profile: %w", err)
			}
		}
	}
	log.Println("Seeded 20 users.")

	// user1 moderates the demo dataset
	if err := db.Create(&Admin{UserID: 1}).Error; err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}

	// --- Seed Likes and Matches ---
	counter := 0
	for userID := 1; userID <= 10; userID++ {
		for j := 0; j < 6; j++ {
			likedID := uint64(r.Intn(10) + 11) // opposite half
			counter++

			like := Like{UserID: uint64(userID), LikedUserID: likedID}
			if err := db.Create(&like).Error; err != nil {
				return fmt.Errorf("failed to seed like: %w", err)
			}

			// guarantee mutual likes every 3rd pair
			if counter%3 == 0 {
				recip := Like{UserID: likedID, LikedUserID: uint64(userID)}
				if err := db.Create(&recip).Error; err != nil {
					return fmt.Errorf("failed to seed reciprocal like: %w", err)
				}

				for _, pair := range [][2]uint64{{uint64(userID), likedID}, {likedID, uint64(userID)}} {
					match := Match{UserID: pair[0], LikedUserID: pair[1]}
					err := db.Clauses(clause.OnConflict{
						Columns:   []clause.Column{{Name: "user_id"}, {Name: "liked_user_id"}},
						DoNothing: true,
					}).Create(&match).Error
					if err != nil {
						return fmt.Errorf("failed to seed match: %w", err)
					}
				}

				// a short exchange between the matched pair
				msgs := []Message{
					{SenderID: uint64(userID), ReceiverID: likedID, Message: "hey, we matched!"},
					{SenderID: likedID, ReceiverID: uint64(userID), Message: "hey yourself :)"},
				}
				if err := db.Create(&msgs).Error; err != nil {
					return fmt.Errorf("failed to seed messages: %w", err)
				}
			}
		}
	}

	return nil
}

// SeedMinimalTestData wipes the DB and inserts a small deterministic
// dataset for repeatable tests.
//
// Dataset:
//   - Users: 1 (male), 2 (female), 3 (female)
//   - Likes: 1→2, 2→1 (mutual), 3→1 (one-way)
//   - Matches: mirrored rows for the (1,2) pair
//   - Messages: 1→2 "hello", 2→1 "hi"
func SeedMinimalTestData(db *gorm.DB) error {
	for _, table := range seedTables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}

	male, female := "male", "female"
	users := []User{
		{ID: 1, Email: "u1@test.com", Name: "user1", Password: "x", Gender: &male},
		{ID: 2, Email: "u2@test.com", Name: "user2", Password: "x", Gender: &female},
		{ID: 3, Email: "u3@test.com", Name: "user3", Password: "x", Gender: &female},
	}
	if err := db.Create(&users).Error; err != nil {
		return err
	}

	likes := []Like{
		{UserID: 1, LikedUserID: 2}, // user1 → user2
		{UserID: 2, LikedUserID: 1}, // user2 → user1 (mutual with above)
		{UserID: 3, LikedUserID: 1}, // user3 → user1 (one-way)
	}
	if err := db.Create(&likes).Error; err != nil {
		return err
	}

	matches := []Match{
		{UserID: 1, LikedUserID: 2},
		{UserID: 2, LikedUserID: 1},
	}
	if err := db.Create(&matches).Error; err != nil {
		return err
	}

	messages := []Message{
		{SenderID: 1, ReceiverID: 2, Message: "hello"},
		{SenderID: 2, ReceiverID: 1, Message: "hi"},
	}
	return db.Create(&messages).Error
}
