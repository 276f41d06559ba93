package usecases

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/seatwise-io/seatwise/internal/domain/entitlement"
	"github.com/seatwise-io/seatwise/internal/domain/org"
	"github.com/seatwise-io/seatwise/internal/domain/subscription"
	"github.com/seatwise-io/seatwise/internal/domain/tier"
	"github.com/seatwise-io/seatwise/internal/shared/errors"
	"github.com/seatwise-io/seatwise/internal/shared/goroutine"
	"github.com/seatwise-io/seatwise/internal/shared/logger"
)

type RevokeSeatCommand struct {
	SubscriptionSID string
	TargetUserID    uint
	CallerUserID    uint
}

// RevokeSeatUseCase releases a user's seat. Revoking a seat the user does not
// hold is a no-op success so retries and races are harmless. The decrement is
// guarded in storage and never drives seats_used below zero.
type RevokeSeatUseCase struct {
	subscriptionRepo subscription.Repository
	assignmentRepo   subscription.SeatAssignmentRepository
	entitlementRepo  entitlement.Repository
	membershipRepo   org.MembershipRepository
	txRunner         TransactionRunner
	notifier         SeatChangeNotifier
	logger           logger.Interface
}

func NewRevokeSeatUseCase(
	subscriptionRepo subscription.Repository,
	assignmentRepo subscription.SeatAssignmentRepository,
	entitlementRepo entitlement.Repository,
	membershipRepo org.MembershipRepository,
	txRunner TransactionRunner,
	notifier SeatChangeNotifier,
	logger logger.Interface,
) *RevokeSeatUseCase {
	return &RevokeSeatUseCase{
		subscriptionRepo: subscriptionRepo,
		assignmentRepo:   assignmentRepo,
		entitlementRepo:  entitlementRepo,
		membershipRepo:   membershipRepo,
		txRunner:         txRunner,
		notifier:         notifier,
		logger:           logger,
	}
}

func (uc *RevokeSeatUseCase) Execute(ctx context.Context, cmd RevokeSeatCommand) error {
	if cmd.TargetUserID == 0 {
		return errors.NewValidationError("target user ID is required")
	}

	sub, err := uc.subscriptionRepo.GetBySID(ctx, cmd.SubscriptionSID)
	if err != nil {
		if stderrors.Is(err, subscription.ErrNotFound) {
			return errors.NewNotFoundError("subscription not found")
		}
		return errors.NewInternalError("failed to load subscription", err.Error())
	}

	if err := uc.authorize(ctx, sub, cmd.CallerUserID); err != nil {
		return err
	}

	assignment, err := uc.assignmentRepo.GetBySubscriptionAndUser(ctx, sub.ID(), cmd.TargetUserID)
	if err != nil {
		if stderrors.Is(err, subscription.ErrAssignmentNotFound) {
			return nil
		}
		return errors.NewInternalError("failed to load assignment", err.Error())
	}
	if !assignment.IsActive() {
		return nil
	}

	var released bool
	txErr := uc.txRunner.RunInTransaction(ctx, func(txCtx context.Context) error {
		// Only the caller that wins the conditional flip on the active row
		// releases the seat; a racing revoke sees rows affected zero and
		// leaves the ledger and entitlement alone.
		assignment.Revoke()
		won, err := uc.assignmentRepo.DeactivateIfActive(txCtx, assignment)
		if err != nil {
			return fmt.Errorf("failed to deactivate assignment: %w", err)
		}
		if !won {
			return nil
		}
		released = true
		if err := uc.subscriptionRepo.DecrementSeatsUsed(txCtx, sub.ID()); err != nil {
			return fmt.Errorf("failed to decrement seats: %w", err)
		}
		return uc.revokeSeatEntitlement(txCtx, cmd.TargetUserID)
	})
	if txErr != nil {
		uc.logger.Errorw("seat revocation failed",
			"error", txErr,
			"subscription_sid", sub.SID(),
			"target_user_id", cmd.TargetUserID,
		)
		return errors.NewInternalError("failed to revoke seat", txErr.Error())
	}
	if !released {
		return nil
	}

	uc.logger.Infow("seat revoked",
		"subscription_sid", sub.SID(),
		"target_user_id", cmd.TargetUserID,
		"revoked_by", cmd.CallerUserID,
	)

	goroutine.SafeGo(uc.logger, "notify-seat-revoked", func() {
		if err := uc.notifier.NotifySeatRevoked(context.WithoutCancel(ctx), sub, cmd.TargetUserID); err != nil {
			uc.logger.Warnw("seat revocation notification failed", "error", err)
		}
	})

	return nil
}

func (uc *RevokeSeatUseCase) authorize(ctx context.Context, sub *subscription.Subscription, callerUserID uint) error {
	if callerUserID == 0 {
		return errors.NewUnauthorizedError("caller identity is required")
	}

	membership, err := uc.membershipRepo.GetByOrgAndUser(ctx, sub.OrgID(), callerUserID)
	if err != nil {
		if stderrors.Is(err, org.ErrMembershipNotFound) {
			return errors.NewForbiddenError("caller is not a member of this organization")
		}
		return errors.NewInternalError("failed to load membership", err.Error())
	}
	if !membership.CanManageSeats() {
		return errors.NewForbiddenError("caller role cannot manage seats")
	}
	return nil
}

func (uc *RevokeSeatUseCase) revokeSeatEntitlement(ctx context.Context, userID uint) error {
	ent, err := uc.entitlementRepo.GetByUserAndName(ctx, userID, string(tier.CapabilitySeatLicenses))
	if err != nil {
		if stderrors.Is(err, entitlement.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load entitlement: %w", err)
	}

	ent.Revoke("seat revoked", time.Now().UTC())
	return uc.entitlementRepo.Update(ctx, ent)
}
