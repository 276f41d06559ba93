package usecases

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/seatwise-io/seatwise/internal/domain/entitlement"
	"github.com/seatwise-io/seatwise/internal/shared/errors"
	"github.com/seatwise-io/seatwise/internal/shared/logger"
)

type GrantEntitlementCommand struct {
	UserID        uint
	Name          string
	ProductID     string
	Platform      string
	Source        entitlement.Source
	SourceEventID string
	ExpiresAt     *time.Time
}

// GrantEntitlementUseCase grants or extends an entitlement with end-state
// semantics: applying the same grant twice leaves the same stored state, and
// a grant for a live (user, name) pair extends the expiry instead of stacking
// a second row. A grant after a revocation creates a fresh row; the revoked
// one stays untouched as audit history.
type GrantEntitlementUseCase struct {
	entitlementRepo entitlement.Repository
	logger          logger.Interface
}

func NewGrantEntitlementUseCase(entitlementRepo entitlement.Repository, logger logger.Interface) *GrantEntitlementUseCase {
	return &GrantEntitlementUseCase{entitlementRepo: entitlementRepo, logger: logger}
}

func (uc *GrantEntitlementUseCase) Execute(ctx context.Context, cmd GrantEntitlementCommand) (*entitlement.Entitlement, error) {
	existing, err := uc.entitlementRepo.GetByUserAndName(ctx, cmd.UserID, cmd.Name)
	if err != nil && !stderrors.Is(err, entitlement.ErrNotFound) {
		return nil, errors.NewInternalError("failed to check existing entitlement", err.Error())
	}

	if existing != nil {
		existing.ExtendExpiry(cmd.ExpiresAt, cmd.SourceEventID)
		if err := uc.entitlementRepo.Update(ctx, existing); err != nil {
			return nil, errors.NewInternalError("failed to extend entitlement", err.Error())
		}
		uc.logger.Infow("entitlement extended",
			"user_id", cmd.UserID,
			"name", cmd.Name,
			"source_event_id", cmd.SourceEventID,
		)
		return existing, nil
	}

	ent, err := entitlement.NewEntitlement(cmd.UserID, cmd.Name, cmd.ProductID, cmd.Platform, cmd.Source, cmd.SourceEventID, cmd.ExpiresAt)
	if err != nil {
		return nil, errors.NewValidationError("invalid entitlement", err.Error())
	}
	if err := uc.entitlementRepo.Create(ctx, ent); err != nil {
		// A concurrent grant for the same pair won the insert; converge on it.
		if errors.IsDuplicateError(err) {
			stored, getErr := uc.entitlementRepo.GetByUserAndName(ctx, cmd.UserID, cmd.Name)
			if getErr == nil {
				return stored, nil
			}
		}
		return nil, errors.NewInternalError("failed to grant entitlement", err.Error())
	}

	uc.logger.Infow("entitlement granted",
		"user_id", cmd.UserID,
		"name", cmd.Name,
		"source", cmd.Source,
		"source_event_id", cmd.SourceEventID,
	)
	return ent, nil
}
