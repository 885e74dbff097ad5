// Package approval implements the masseur application state machine:
// pending -> approved | rejected, with a fresh application restarting the
// cycle after a rejection. Approval performs two logically related but
// non-transactional writes (application status, capability grant); the
// repair pass keeps them convergent.
package approval

import (
	"fmt"

	masseurRepo "knead/database/repository/masseur"
	userRepo "knead/database/repository/user"
	"knead/models"
	"knead/utils"

	"go.uber.org/zap"
)

// ApprovalService manages masseur applications and the provider capability.
type ApprovalService interface {
	// Apply creates a pending application for the masseur, superseding a
	// previous rejected one.
	Apply(masseurID string, profile models.MasseurProfile) (*models.MasseurApplication, error)

	// Approve marks the application approved and grants the provider
	// capability. When the grant fails after the status write, the returned
	// error is a *ConsistencyGapError.
	Approve(masseurID string) error

	// Reject marks the application rejected and revokes the provider
	// capability. Revoking an ungranted capability is a no-op success.
	Reject(masseurID string) error

	// ListApplications returns applications in the given status, running the
	// repair pass first so an administrative load always converges earlier
	// gaps.
	ListApplications(status models.ApplicationStatus) ([]models.MasseurApplication, error)

	// Discover returns the approved applications visible to customers.
	Discover() ([]models.MasseurApplication, error)

	// RepairGrants grants the provider capability to every approved
	// application whose account lacks it. Idempotent; returns how many
	// grants it applied.
	RepairGrants() (int, error)
}

// DefaultApprovalService implements ApprovalService.
type DefaultApprovalService struct {
	Repo  masseurRepo.MasseurRepository
	Users userRepo.UserRepository
}

func (s *DefaultApprovalService) Apply(masseurID string, profile models.MasseurProfile) (*models.MasseurApplication, error) {
	user, err := s.Users.GetByID(masseurID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up applicant %s: %w", masseurID, err)
	}
	if user == nil {
		return nil, fmt.Errorf("no such user: %s", masseurID)
	}

	app := &models.MasseurApplication{
		MasseurID: masseurID,
		Profile:   profile,
	}
	created, err := s.Repo.CreateApplication(app)
	if err != nil {
		return nil, fmt.Errorf("failed to create application for %s: %w", masseurID, err)
	}

	utils.GetLogger().Info("masseur application created",
		zap.String("masseurId", masseurID), zap.String("applicationId", created.ID))
	return created, nil
}

func (s *DefaultApprovalService) Approve(masseurID string) error {
	app, err := s.Repo.GetCurrent(masseurID)
	if err != nil {
		return fmt.Errorf("failed to load application for %s: %w", masseurID, err)
	}
	if app == nil {
		return fmt.Errorf("no application for masseur %s", masseurID)
	}

	if _, err := s.Repo.SetStatus(masseurID, models.ApplicationApproved); err != nil {
		return fmt.Errorf("failed to approve application for %s: %w", masseurID, err)
	}

	// Second, independent write. A failure here leaves the application
	// approved without the capability; surface the gap so the caller knows
	// the repair pass still has work to do.
	if err := s.Users.GrantCapability(masseurID, models.CapabilityProvider); err != nil {
		utils.GetLogger().Error("capability grant failed after approval",
			zap.String("masseurId", masseurID), zap.Error(err))
		return &ConsistencyGapError{MasseurID: masseurID, Err: err}
	}

	utils.GetLogger().Info("masseur approved", zap.String("masseurId", masseurID))
	return nil
}

func (s *DefaultApprovalService) Reject(masseurID string) error {
	app, err := s.Repo.GetCurrent(masseurID)
	if err != nil {
		return fmt.Errorf("failed to load application for %s: %w", masseurID, err)
	}
	if app == nil {
		return fmt.Errorf("no application for masseur %s", masseurID)
	}

	if _, err := s.Repo.SetStatus(masseurID, models.ApplicationRejected); err != nil {
		return fmt.Errorf("failed to reject application for %s: %w", masseurID, err)
	}

	if err := s.Users.RevokeCapability(masseurID, models.CapabilityProvider); err != nil {
		return fmt.Errorf("failed to revoke provider capability from %s: %w", masseurID, err)
	}

	utils.GetLogger().Info("masseur rejected", zap.String("masseurId", masseurID))
	return nil
}

func (s *DefaultApprovalService) ListApplications(status models.ApplicationStatus) ([]models.MasseurApplication, error) {
	if _, err := s.RepairGrants(); err != nil {
		utils.GetLogger().Warn("approval repair pass failed", zap.Error(err))
	}
	return s.Repo.ListByStatus(status)
}

func (s *DefaultApprovalService) Discover() ([]models.MasseurApplication, error) {
	return s.Repo.ListDiscoverable()
}

func (s *DefaultApprovalService) RepairGrants() (int, error) {
	approved, err := s.Repo.ListByStatus(models.ApplicationApproved)
	if err != nil {
		return 0, fmt.Errorf("failed to list approved applications: %w", err)
	}

	repaired := 0
	for _, app := range approved {
		user, err := s.Users.GetByID(app.MasseurID)
		if err != nil {
			return repaired, fmt.Errorf("failed to load account %s: %w", app.MasseurID, err)
		}
		if user == nil || user.HasCapability(models.CapabilityProvider) {
			continue
		}
		if err := s.Users.GrantCapability(app.MasseurID, models.CapabilityProvider); err != nil {
			return repaired, fmt.Errorf("failed to repair grant for %s: %w", app.MasseurID, err)
		}
		repaired++
		utils.GetLogger().Info("repaired missing provider capability",
			zap.String("masseurId", app.MasseurID))
	}
	return repaired, nil
}
