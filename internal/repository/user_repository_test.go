package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	apperrors "github.com/jenca-cloud/users/internal/errors"
	"github.com/jenca-cloud/users/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// A named shared-cache database so every pooled connection sees the
	// same in-memory store.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, gormDB.AutoMigrate(&model.User{}))
	return gormDB
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	user := &model.User{Email: "alice@example.com", PasswordHash: "123abc"}
	require.NoError(t, repo.Create(ctx, user))

	found, err := repo.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", found.Email)
	assert.Equal(t, "123abc", found.PasswordHash)
}

func TestUserRepository_FindMissing(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	_, err := repo.FindByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.User{Email: "alice@example.com", PasswordHash: "123abc"}))

	// The duplicate fails at the primary key, whatever hash it carries,
	// and the stored hash is untouched.
	err := repo.Create(ctx, &model.User{Email: "alice@example.com", PasswordHash: "different"})
	assert.ErrorIs(t, err, apperrors.ErrUserExists)

	found, err := repo.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "123abc", found.PasswordHash)
}

func TestUserRepository_Delete(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.User{Email: "alice@example.com", PasswordHash: "123abc"}))

	deleted, err := repo.Delete(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", deleted.Email)
	assert.Equal(t, "123abc", deleted.PasswordHash)

	_, err = repo.FindByEmail(ctx, "alice@example.com")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestUserRepository_DeleteMissing(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.User{Email: "bob@example.com", PasswordHash: "123abc"}))

	_, err := repo.Delete(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	// Other records stay put.
	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserRepository_List(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)

	want := []model.User{
		{Email: "alice@example.com", PasswordHash: "123abc"},
		{Email: "bob@example.com", PasswordHash: "123abc"},
		{Email: "carol@example.com", PasswordHash: "456def"},
		{Email: "dan@example.com", PasswordHash: "789efg"},
	}
	for i := range want {
		require.NoError(t, repo.Create(ctx, &want[i]))
	}

	users, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, users)

	// Stable across reads.
	again, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, users, again)
}
