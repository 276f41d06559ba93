package usecases

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/seatwise-io/seatwise/internal/domain/entitlement"
	"github.com/seatwise-io/seatwise/internal/shared/errors"
	"github.com/seatwise-io/seatwise/internal/shared/logger"
)

type RevokeEntitlementCommand struct {
	UserID uint
	Name   string
	Reason string
	// At is the provider-reported revocation time, not the local clock.
	At time.Time
}

// RevokeEntitlementUseCase withdraws an entitlement. Revoking one that is
// already revoked or missing is a no-op success.
type RevokeEntitlementUseCase struct {
	entitlementRepo entitlement.Repository
	logger          logger.Interface
}

func NewRevokeEntitlementUseCase(entitlementRepo entitlement.Repository, logger logger.Interface) *RevokeEntitlementUseCase {
	return &RevokeEntitlementUseCase{entitlementRepo: entitlementRepo, logger: logger}
}

func (uc *RevokeEntitlementUseCase) Execute(ctx context.Context, cmd RevokeEntitlementCommand) error {
	ent, err := uc.entitlementRepo.GetByUserAndName(ctx, cmd.UserID, cmd.Name)
	if err != nil {
		if stderrors.Is(err, entitlement.ErrNotFound) {
			return nil
		}
		return errors.NewInternalError("failed to load entitlement", err.Error())
	}

	if ent.RevokedAt() != nil {
		return nil
	}

	ent.Revoke(cmd.Reason, cmd.At)
	if err := uc.entitlementRepo.Update(ctx, ent); err != nil {
		return errors.NewInternalError("failed to revoke entitlement", err.Error())
	}

	uc.logger.Infow("entitlement revoked",
		"user_id", cmd.UserID,
		"name", cmd.Name,
		"reason", cmd.Reason,
	)
	return nil
}
