package usecases

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/seatwise-io/seatwise/internal/domain/entitlement"
	"github.com/seatwise-io/seatwise/internal/domain/org"
	"github.com/seatwise-io/seatwise/internal/domain/subscription"
	"github.com/seatwise-io/seatwise/internal/domain/tier"
	"github.com/seatwise-io/seatwise/internal/shared/errors"
	"github.com/seatwise-io/seatwise/internal/shared/goroutine"
	"github.com/seatwise-io/seatwise/internal/shared/logger"
)

type AssignSeatCommand struct {
	SubscriptionSID string
	TargetUserID    uint
	CallerUserID    uint
}

type AssignSeatResult struct {
	AssignmentSID   string `json:"assignment_sid"`
	AlreadyAssigned bool   `json:"already_assigned"`
	SeatsUsed       int    `json:"seats_used"`
}

// AssignSeatUseCase assigns a seat to a user. The capacity check and the
// increment happen in one conditional UPDATE inside the transaction, so two
// racing calls for the last seat commit exactly one assignment.
type AssignSeatUseCase struct {
	subscriptionRepo subscription.Repository
	assignmentRepo   subscription.SeatAssignmentRepository
	entitlementRepo  entitlement.Repository
	membershipRepo   org.MembershipRepository
	txRunner         TransactionRunner
	notifier         SeatChangeNotifier
	logger           logger.Interface
}

func NewAssignSeatUseCase(
	subscriptionRepo subscription.Repository,
	assignmentRepo subscription.SeatAssignmentRepository,
	entitlementRepo entitlement.Repository,
	membershipRepo org.MembershipRepository,
	txRunner TransactionRunner,
	notifier SeatChangeNotifier,
	logger logger.Interface,
) *AssignSeatUseCase {
	return &AssignSeatUseCase{
		subscriptionRepo: subscriptionRepo,
		assignmentRepo:   assignmentRepo,
		entitlementRepo:  entitlementRepo,
		membershipRepo:   membershipRepo,
		txRunner:         txRunner,
		notifier:         notifier,
		logger:           logger,
	}
}

func (uc *AssignSeatUseCase) Execute(ctx context.Context, cmd AssignSeatCommand) (*AssignSeatResult, error) {
	if cmd.TargetUserID == 0 {
		return nil, errors.NewValidationError("target user ID is required")
	}

	sub, err := uc.subscriptionRepo.GetBySID(ctx, cmd.SubscriptionSID)
	if err != nil {
		if stderrors.Is(err, subscription.ErrNotFound) {
			return nil, errors.NewNotFoundError("subscription not found")
		}
		return nil, errors.NewInternalError("failed to load subscription", err.Error())
	}

	if err := uc.authorize(ctx, sub, cmd.CallerUserID); err != nil {
		return nil, err
	}
	if err := uc.checkTargetEligible(ctx, sub, cmd.TargetUserID); err != nil {
		return nil, err
	}

	if !sub.CanAssignSeats() {
		return nil, errors.NewConflictError("subscription is not active")
	}
	if sub.IsOverLimit() {
		// Pre-existing usage above the cap freezes further assignment
		// until seats are released or the cap is raised.
		return nil, errors.NewCapacityExceededError("seat usage exceeds capacity, assignment frozen")
	}

	// An already occupied seat for this user is success, not a second seat.
	existing, err := uc.assignmentRepo.GetBySubscriptionAndUser(ctx, sub.ID(), cmd.TargetUserID)
	if err != nil && !stderrors.Is(err, subscription.ErrAssignmentNotFound) {
		return nil, errors.NewInternalError("failed to check existing assignment", err.Error())
	}
	if existing != nil && existing.IsActive() {
		return &AssignSeatResult{AssignmentSID: existing.SID(), AlreadyAssigned: true, SeatsUsed: sub.SeatsUsed()}, nil
	}

	var assignmentSID string
	var lostRace bool
	txErr := uc.txRunner.RunInTransaction(ctx, func(txCtx context.Context) error {
		if existing != nil {
			// The conditional flip arbitrates racing reassignments: only the
			// caller that wins the UPDATE on the inactive row consumes a seat.
			existing.Reactivate(cmd.CallerUserID)
			won, err := uc.assignmentRepo.ReactivateIfInactive(txCtx, existing)
			if err != nil {
				return fmt.Errorf("failed to reactivate assignment: %w", err)
			}
			assignmentSID = existing.SID()
			if !won {
				lostRace = true
				return nil
			}
			if err := uc.subscriptionRepo.IncrementSeatsUsedIfAvailable(txCtx, sub.ID()); err != nil {
				return err
			}
		} else {
			if err := uc.subscriptionRepo.IncrementSeatsUsedIfAvailable(txCtx, sub.ID()); err != nil {
				return err
			}
			assignment, err := subscription.NewSeatAssignment(sub.ID(), cmd.TargetUserID, cmd.CallerUserID)
			if err != nil {
				return err
			}
			if err := uc.assignmentRepo.Create(txCtx, assignment); err != nil {
				return fmt.Errorf("failed to create assignment: %w", err)
			}
			assignmentSID = assignment.SID()
		}

		return uc.grantSeatEntitlement(txCtx, sub, cmd.TargetUserID, assignmentSID)
	})
	if txErr != nil {
		if stderrors.Is(txErr, subscription.ErrSeatCapacityExceeded) {
			uc.logger.Infow("seat assignment rejected, no capacity",
				"subscription_sid", sub.SID(),
				"target_user_id", cmd.TargetUserID,
			)
			return nil, errors.NewCapacityExceededError("no seats available")
		}
		if errors.IsDuplicateError(txErr) {
			// A concurrent request created the row first; the unique
			// (subscription_id, user_id) index rolled this one back whole.
			stored, getErr := uc.assignmentRepo.GetBySubscriptionAndUser(ctx, sub.ID(), cmd.TargetUserID)
			if getErr == nil {
				return &AssignSeatResult{AssignmentSID: stored.SID(), AlreadyAssigned: true, SeatsUsed: sub.SeatsUsed()}, nil
			}
		}
		uc.logger.Errorw("seat assignment failed",
			"error", txErr,
			"subscription_sid", sub.SID(),
			"target_user_id", cmd.TargetUserID,
		)
		if errors.IsAppError(txErr) {
			return nil, txErr
		}
		return nil, errors.NewInternalError("failed to assign seat", txErr.Error())
	}
	if lostRace {
		return &AssignSeatResult{AssignmentSID: assignmentSID, AlreadyAssigned: true, SeatsUsed: sub.SeatsUsed()}, nil
	}

	uc.logger.Infow("seat assigned",
		"subscription_sid", sub.SID(),
		"target_user_id", cmd.TargetUserID,
		"assigned_by", cmd.CallerUserID,
	)

	goroutine.SafeGo(uc.logger, "notify-seat-assigned", func() {
		if err := uc.notifier.NotifySeatAssigned(context.WithoutCancel(ctx), sub, cmd.TargetUserID); err != nil {
			uc.logger.Warnw("seat assignment notification failed", "error", err)
		}
	})

	return &AssignSeatResult{AssignmentSID: assignmentSID, SeatsUsed: sub.SeatsUsed() + 1}, nil
}

// authorize re-reads the caller's membership on every call so a role revoked
// a moment ago already blocks this request.
func (uc *AssignSeatUseCase) authorize(ctx context.Context, sub *subscription.Subscription, callerUserID uint) error {
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
	if !tier.CanAllocate(sub.Tier(), sub.OrgCategory(), membership.Role()) {
		return errors.NewForbiddenError("subscription tier does not permit seat allocation")
	}
	return nil
}

// checkTargetEligible verifies the target belongs to the subscription's
// organization and holds a role that may occupy a seat.
func (uc *AssignSeatUseCase) checkTargetEligible(ctx context.Context, sub *subscription.Subscription, targetUserID uint) error {
	membership, err := uc.membershipRepo.GetByOrgAndUser(ctx, sub.OrgID(), targetUserID)
	if err != nil {
		if stderrors.Is(err, org.ErrMembershipNotFound) {
			return errors.NewTargetIneligibleError("target user is not a member of this organization")
		}
		return errors.NewInternalError("failed to load target membership", err.Error())
	}
	if !membership.CanHoldSeat() {
		return errors.NewTargetIneligibleError("target user cannot hold a seat")
	}
	return nil
}

func (uc *AssignSeatUseCase) grantSeatEntitlement(ctx context.Context, sub *subscription.Subscription, userID uint, assignmentSID string) error {
	existing, err := uc.entitlementRepo.GetByUserAndName(ctx, userID, string(tier.CapabilitySeatLicenses))
	if err != nil && !stderrors.Is(err, entitlement.ErrNotFound) {
		return fmt.Errorf("failed to check existing entitlement: %w", err)
	}

	periodEnd := sub.PeriodEnd()
	if existing != nil {
		existing.ExtendExpiry(&periodEnd, assignmentSID)
		return uc.entitlementRepo.Update(ctx, existing)
	}

	ent, err := entitlement.NewEntitlement(
		userID, string(tier.CapabilitySeatLicenses), sub.Tier().String(), "",
		entitlement.SourceSubscription, assignmentSID, &periodEnd,
	)
	if err != nil {
		return err
	}
	return uc.entitlementRepo.Create(ctx, ent)
}
