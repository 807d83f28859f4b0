package repository_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/udinder/udinder/internal/db"
	"github.com/udinder/udinder/internal/repository"
)

// setup in-memory DB
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	sqlDB, err := database.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.Migrate(database); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return database
}

func TestCreateLikeAccumulatesDuplicates(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewLikeRepository(dbase)

	require.NoError(t, repo.CreateLike(ctx, 1, 2))
	require.NoError(t, repo.CreateLike(ctx, 1, 2))

	var rows int64
	require.NoError(t, dbase.Model(&db.Like{}).Count(&rows).Error)
	assert.Equal(t, int64(2), rows)

	// duplicate likers count once
	count, err := repo.CountLikers(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestHasLiked(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewLikeRepository(dbase)

	require.NoError(t, repo.CreateLike(ctx, 1, 2))

	liked, err := repo.HasLiked(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = repo.HasLiked(ctx, 2, 1)
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestListLikersAndPagination(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewLikeRepository(dbase)

	// likers 1..5 of user 99, then user 2 likes again (newest row)
	for id := uint64(1); id <= 5; id++ {
		require.NoError(t, repo.CreateLike(ctx, id, 99))
	}
	require.NoError(t, repo.CreateLike(ctx, 2, 99))

	// first page: newest collapsed rows first → 2 (re-like), 5, 4
	likes, token, err := repo.ListLikers(ctx, 99, nil, 3)
	require.NoError(t, err)
	require.Len(t, likes, 3)
	assert.Equal(t, uint64(2), likes[0].UserID)
	assert.Equal(t, uint64(5), likes[1].UserID)
	assert.Equal(t, uint64(4), likes[2].UserID)
	require.NotNil(t, token)

	// second page: 3, 1, no further token
	likes, token, err = repo.ListLikers(ctx, 99, token, 3)
	require.NoError(t, err)
	require.Len(t, likes, 2)
	assert.Equal(t, uint64(3), likes[0].UserID)
	assert.Equal(t, uint64(1), likes[1].UserID)
	assert.Nil(t, token)
}

func TestCreateMatchIdempotent(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewLikeRepository(dbase)

	require.NoError(t, repo.CreateMatch(ctx, 1, 2))
	require.NoError(t, repo.CreateMatch(ctx, 1, 2)) // replay, DO NOTHING
	require.NoError(t, repo.CreateMatch(ctx, 2, 1)) // mirrored pair is distinct

	var rows int64
	require.NoError(t, dbase.Model(&db.Match{}).Count(&rows).Error)
	assert.Equal(t, int64(2), rows)

	count, err := repo.CountMatches(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestListMatchesPagination(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewLikeRepository(dbase)

	for id := uint64(2); id <= 5; id++ {
		require.NoError(t, repo.CreateMatch(ctx, 1, id))
	}

	matches, token, err := repo.ListMatches(ctx, 1, nil, 3)
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, uint64(5), matches[0].LikedUserID)
	require.NotNil(t, token)

	matches, token, err = repo.ListMatches(ctx, 1, token, 3)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, uint64(2), matches[0].LikedUserID)
	assert.Nil(t, token)
}
