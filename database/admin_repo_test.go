package database

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/higbec/project-portal-backend/models"
)

func sampleAdmin(username, email string) *models.Admin {
	return &models.Admin{
		Username:     username,
		Email:        email,
		PasswordHash: "$2a$12$notarealhashnotarealhashnotarealhashnotarealhash",
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
}

func TestAdminRepo_FindActiveByEmail(t *testing.T) {
	repo := NewAdminRepo(setupTestDB(t))

	require.NoError(t, repo.Add(sampleAdmin("alice", "alice@x.com")))

	inactive := sampleAdmin("bob", "bob@x.com")
	inactive.IsActive = false
	require.NoError(t, repo.Add(inactive))

	got, err := repo.FindActiveByEmail(" ALICE@X.COM ")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.Username)

	gone, err := repo.FindActiveByEmail("bob@x.com")
	require.NoError(t, err)
	assert.Nil(t, gone)

	missing, err := repo.FindActiveByEmail("nobody@x.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAdminRepo_DeactivatedFlagPersists(t *testing.T) {
	repo := NewAdminRepo(setupTestDB(t))

	inactive := sampleAdmin("eve", "eve@x.com")
	inactive.IsActive = false
	require.NoError(t, repo.Add(inactive))

	stored, err := repo.FindByUsernameOrEmail("eve", "eve@x.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.False(t, stored.IsActive)
}

func TestAdminRepo_FindByUsernameOrEmail(t *testing.T) {
	repo := NewAdminRepo(setupTestDB(t))

	inactive := sampleAdmin("carol", "carol@x.com")
	inactive.IsActive = false
	require.NoError(t, repo.Add(inactive))

	byUsername, err := repo.FindByUsernameOrEmail("carol", "other@x.com")
	require.NoError(t, err)
	require.NotNil(t, byUsername)

	byEmail, err := repo.FindByUsernameOrEmail("other", "carol@x.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)

	missing, err := repo.FindByUsernameOrEmail("other", "other@x.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAdminRepo_AddDuplicate(t *testing.T) {
	repo := NewAdminRepo(setupTestDB(t))

	require.NoError(t, repo.Add(sampleAdmin("dave", "dave@x.com")))

	err := repo.Add(sampleAdmin("dave", "dave2@x.com"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))
}
