package auth

import (
	"testing"

	userRepo "knead/database/repository/user"
	"knead/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextResolvesCapabilitiesOnce(t *testing.T) {
	users := userRepo.NewMemoryUserRepo()
	require.NoError(t, users.Create(&models.User{
		ID:           "masseur-1",
		Email:        "ada@example.com",
		Capabilities: []string{models.CapabilityProvider},
	}))

	ctx, err := Resolve(users, "masseur-1")
	require.NoError(t, err)
	assert.True(t, ctx.IsProvider())
	assert.False(t, ctx.IsAdmin())

	// Capabilities are a snapshot: revoking after resolution does not affect
	// an already-resolved context.
	require.NoError(t, users.RevokeCapability("masseur-1", models.CapabilityProvider))
	assert.True(t, ctx.IsProvider())

	fresh, err := Resolve(users, "masseur-1")
	require.NoError(t, err)
	assert.False(t, fresh.IsProvider())
}

func TestSystemContextHoldsEveryCapability(t *testing.T) {
	ctx := SystemContext()
	assert.True(t, ctx.IsProvider())
	assert.True(t, ctx.IsAdmin())
	assert.True(t, ctx.HasCapability("anything"))
}

func TestResolveUnknownUser(t *testing.T) {
	users := userRepo.NewMemoryUserRepo()
	_, err := Resolve(users, "ghost")
	assert.Error(t, err)
}
