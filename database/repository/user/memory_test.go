package userRepo

import (
	"testing"

	"knead/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRevokeLeavesEarlierSnapshotsUntouched(t *testing.T) {
	repo := NewMemoryUserRepo()
	require.NoError(t, repo.Create(&models.User{
		ID:           "user-1",
		Email:        "ada@example.com",
		Capabilities: []string{models.CapabilityProvider, models.CapabilityAdmin},
	}))

	before, err := repo.GetByID("user-1")
	require.NoError(t, err)

	require.NoError(t, repo.RevokeCapability("user-1", models.CapabilityProvider))

	// The snapshot handed out before the revoke keeps its own capability
	// slice; only the stored row changes.
	assert.Equal(t, []string{models.CapabilityProvider, models.CapabilityAdmin}, before.Capabilities)

	after, err := repo.GetByID("user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{models.CapabilityAdmin}, after.Capabilities)
}
