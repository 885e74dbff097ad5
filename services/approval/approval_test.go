package approval

import (
	"errors"
	"testing"

	masseurRepo "knead/database/repository/masseur"
	userRepo "knead/database/repository/user"
	"knead/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type approvalFixture struct {
	svc      *DefaultApprovalService
	masseurs *masseurRepo.MemoryMasseurRepo
	users    *userRepo.MemoryUserRepo
}

func newApprovalFixture(t *testing.T) *approvalFixture {
	t.Helper()

	masseurs := masseurRepo.NewMemoryMasseurRepo()
	users := userRepo.NewMemoryUserRepo()
	require.NoError(t, users.Create(&models.User{ID: "masseur-1", Email: "ada@example.com"}))

	return &approvalFixture{
		svc:      &DefaultApprovalService{Repo: masseurs, Users: users},
		masseurs: masseurs,
		users:    users,
	}
}

func (f *approvalFixture) apply(t *testing.T) *models.MasseurApplication {
	t.Helper()
	app, err := f.svc.Apply("masseur-1", models.MasseurProfile{DisplayName: "Ada", Bio: "Deep tissue specialist"})
	require.NoError(t, err)
	return app
}

func TestApproveGrantsProviderCapabilityAndDiscoverability(t *testing.T) {
	f := newApprovalFixture(t)
	f.apply(t)

	require.NoError(t, f.svc.Approve("masseur-1"))

	discoverable, err := f.svc.Discover()
	require.NoError(t, err)
	require.Len(t, discoverable, 1)
	assert.Equal(t, "masseur-1", discoverable[0].MasseurID)

	user, err := f.users.GetByID("masseur-1")
	require.NoError(t, err)
	assert.True(t, user.HasCapability(models.CapabilityProvider))
}

func TestRejectRevokesEvenWhenNeverGranted(t *testing.T) {
	f := newApprovalFixture(t)
	f.apply(t)

	// Reject straight from pending: the capability was never granted and
	// revoking it must still succeed.
	require.NoError(t, f.svc.Reject("masseur-1"))

	discoverable, err := f.svc.Discover()
	require.NoError(t, err)
	assert.Empty(t, discoverable)

	user, err := f.users.GetByID("masseur-1")
	require.NoError(t, err)
	assert.False(t, user.HasCapability(models.CapabilityProvider))
}

func TestFreshApplicationSupersedesRejection(t *testing.T) {
	f := newApprovalFixture(t)
	f.apply(t)
	require.NoError(t, f.svc.Reject("masseur-1"))

	app := f.apply(t)
	assert.Equal(t, models.ApplicationPending, app.Status)

	current, err := f.masseurs.GetCurrent("masseur-1")
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationPending, current.Status)
}

func TestApproveSurfacesConsistencyGap(t *testing.T) {
	f := newApprovalFixture(t)
	f.apply(t)

	f.users.GrantErr = errors.New("identity service unavailable")
	err := f.svc.Approve("masseur-1")

	var gapErr *ConsistencyGapError
	require.ErrorAs(t, err, &gapErr)
	assert.Equal(t, "masseur-1", gapErr.MasseurID)

	// The status write landed, the grant did not.
	current, err := f.masseurs.GetCurrent("masseur-1")
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationApproved, current.Status)

	user, err := f.users.GetByID("masseur-1")
	require.NoError(t, err)
	assert.False(t, user.HasCapability(models.CapabilityProvider))
}

func TestRepairGrantsClosesTheGapIdempotently(t *testing.T) {
	f := newApprovalFixture(t)
	f.apply(t)

	f.users.GrantErr = errors.New("identity service unavailable")
	var gapErr *ConsistencyGapError
	require.ErrorAs(t, f.svc.Approve("masseur-1"), &gapErr)

	repaired, err := f.svc.RepairGrants()
	require.NoError(t, err)
	assert.Equal(t, 1, repaired)

	user, err := f.users.GetByID("masseur-1")
	require.NoError(t, err)
	assert.True(t, user.HasCapability(models.CapabilityProvider))

	// Nothing left to repair.
	repaired, err = f.svc.RepairGrants()
	require.NoError(t, err)
	assert.Equal(t, 0, repaired)
}

func TestAdministrativeLoadRunsRepairPass(t *testing.T) {
	f := newApprovalFixture(t)
	f.apply(t)

	f.users.GrantErr = errors.New("identity service unavailable")
	var gapErr *ConsistencyGapError
	require.ErrorAs(t, f.svc.Approve("masseur-1"), &gapErr)

	apps, err := f.svc.ListApplications(models.ApplicationApproved)
	require.NoError(t, err)
	require.Len(t, apps, 1)

	user, err := f.users.GetByID("masseur-1")
	require.NoError(t, err)
	assert.True(t, user.HasCapability(models.CapabilityProvider))
}
