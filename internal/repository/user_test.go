package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carstash/carstash-go/internal/model"
)

func TestUserRepositoryCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO users").
		WithArgs("alice", "$2a$10$hash").
		WillReturnResult(sqlmock.NewResult(7, 1))

	user := &model.User{Username: "alice", AuthHash: "$2a$10$hash"}
	err = repo.Create(context.Background(), user)

	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCreateDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'alice' for key 'uq_users_username'"))

	err = repo.Create(context.Background(), &model.User{Username: "alice", AuthHash: "h"})

	assert.ErrorIs(t, err, ErrDuplicateUsername)
}

func TestUserRepositoryGetByUsername(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepository(db)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "username", "auth_hash", "created_at", "updated_at"}).
		AddRow(3, "alice", "$2a$10$hash", now, now)
	mock.ExpectQuery("SELECT (.+) FROM users WHERE username").
		WithArgs("alice").
		WillReturnRows(rows)

	user, err := repo.GetByUsername(context.Background(), "alice")

	require.NoError(t, err)
	assert.Equal(t, int64(3), user.ID)
	assert.Equal(t, "alice", user.Username)
}

func TestUserRepositoryGetByUsernameNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE username").
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "auth_hash", "created_at", "updated_at"}))

	_, err = repo.GetByUsername(context.Background(), "nobody")

	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestIsDuplicateEntryError(t *testing.T) {
	assert.False(t, isDuplicateEntryError(nil))
	assert.False(t, isDuplicateEntryError(ErrUserNotFound))
	assert.True(t, isDuplicateEntryError(errors.New("Error 1062: Duplicate entry 'x'")))
}
