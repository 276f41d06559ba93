package usecases

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/seatwise-io/seatwise/internal/domain/subscription"
	"github.com/seatwise-io/seatwise/internal/shared/errors"
	"github.com/seatwise-io/seatwise/internal/shared/logger"
)

type ListSeatsQuery struct {
	SubscriptionSID string
	Page            int
	PageSize        int
}

type SeatDTO struct {
	SID        string    `json:"sid"`
	UserID     uint      `json:"user_id"`
	AssignedBy uint      `json:"assigned_by"`
	AssignedAt time.Time `json:"assigned_at"`
}

type ListSeatsResult struct {
	Seats []SeatDTO `json:"seats"`
	Total int64     `json:"total"`
}

type ListSeatsUseCase struct {
	subscriptionRepo subscription.Repository
	assignmentRepo   subscription.SeatAssignmentRepository
	logger           logger.Interface
}

func NewListSeatsUseCase(
	subscriptionRepo subscription.Repository,
	assignmentRepo subscription.SeatAssignmentRepository,
	logger logger.Interface,
) *ListSeatsUseCase {
	return &ListSeatsUseCase{
		subscriptionRepo: subscriptionRepo,
		assignmentRepo:   assignmentRepo,
		logger:           logger,
	}
}

func (uc *ListSeatsUseCase) Execute(ctx context.Context, q ListSeatsQuery) (*ListSeatsResult, error) {
	sub, err := uc.subscriptionRepo.GetBySID(ctx, q.SubscriptionSID)
	if err != nil {
		if stderrors.Is(err, subscription.ErrNotFound) {
			return nil, errors.NewNotFoundError("subscription not found")
		}
		return nil, errors.NewInternalError("failed to load subscription", err.Error())
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	pageSize := q.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	assignments, total, err := uc.assignmentRepo.ListActiveBySubscription(ctx, sub.ID(), (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, errors.NewInternalError("failed to list seats", err.Error())
	}

	seats := make([]SeatDTO, 0, len(assignments))
	for _, a := range assignments {
		seats = append(seats, SeatDTO{
			SID:        a.SID(),
			UserID:     a.UserID(),
			AssignedBy: a.AssignedBy(),
			AssignedAt: a.AssignedAt(),
		})
	}

	return &ListSeatsResult{Seats: seats, Total: total}, nil
}
