package usecases

import (
	"context"
	stderrors "errors"

	"github.com/seatwise-io/seatwise/internal/domain/subscription"
	"github.com/seatwise-io/seatwise/internal/shared/errors"
	"github.com/seatwise-io/seatwise/internal/shared/logger"
)

type GetSeatLimitsQuery struct {
	SubscriptionSID string
}

// SeatLimits is the read model for seat capacity. Unlimited is true when no
// cap is configured, in which case Total and Available are omitted.
type SeatLimits struct {
	SubscriptionSID string `json:"subscription_sid"`
	Unlimited       bool   `json:"unlimited"`
	Total           *int   `json:"total,omitempty"`
	Used            int    `json:"used"`
	Available       *int   `json:"available,omitempty"`
	OverLimit       bool   `json:"over_limit,omitempty"`
}

type GetSeatLimitsUseCase struct {
	subscriptionRepo subscription.Repository
	logger           logger.Interface
}

func NewGetSeatLimitsUseCase(subscriptionRepo subscription.Repository, logger logger.Interface) *GetSeatLimitsUseCase {
	return &GetSeatLimitsUseCase{subscriptionRepo: subscriptionRepo, logger: logger}
}

func (uc *GetSeatLimitsUseCase) Execute(ctx context.Context, q GetSeatLimitsQuery) (*SeatLimits, error) {
	sub, err := uc.subscriptionRepo.GetBySID(ctx, q.SubscriptionSID)
	if err != nil {
		if stderrors.Is(err, subscription.ErrNotFound) {
			return nil, errors.NewNotFoundError("subscription not found")
		}
		return nil, errors.NewInternalError("failed to load subscription", err.Error())
	}

	limits := &SeatLimits{
		SubscriptionSID: sub.SID(),
		Used:            sub.SeatsUsed(),
		OverLimit:       sub.IsOverLimit(),
	}

	if sub.SeatsTotal() == nil {
		limits.Unlimited = true
		return limits, nil
	}

	total := *sub.SeatsTotal()
	available := sub.SeatsAvailable()
	limits.Total = &total
	limits.Available = &available
	return limits, nil
}
