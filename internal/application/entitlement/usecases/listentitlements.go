package usecases

import (
	"context"
	"time"

	"github.com/seatwise-io/seatwise/internal/domain/entitlement"
	"github.com/seatwise-io/seatwise/internal/shared/errors"
	"github.com/seatwise-io/seatwise/internal/shared/logger"
)

type EntitlementDTO struct {
	SID       string     `json:"sid"`
	Name      string     `json:"name"`
	ProductID string     `json:"product_id,omitempty"`
	Platform  string     `json:"platform,omitempty"`
	Source    string     `json:"source"`
	Status    string     `json:"status"`
	GrantedAt time.Time  `json:"granted_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type ListEntitlementsUseCase struct {
	entitlementRepo entitlement.Repository
	logger          logger.Interface
}

func NewListEntitlementsUseCase(entitlementRepo entitlement.Repository, logger logger.Interface) *ListEntitlementsUseCase {
	return &ListEntitlementsUseCase{entitlementRepo: entitlementRepo, logger: logger}
}

func (uc *ListEntitlementsUseCase) Execute(ctx context.Context, userID uint) ([]EntitlementDTO, error) {
	if userID == 0 {
		return nil, errors.NewValidationError("user ID is required")
	}

	ents, err := uc.entitlementRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.NewInternalError("failed to list entitlements", err.Error())
	}

	now := time.Now().UTC()
	out := make([]EntitlementDTO, 0, len(ents))
	for _, e := range ents {
		out = append(out, EntitlementDTO{
			SID:       e.SID(),
			Name:      e.Name(),
			ProductID: e.ProductID(),
			Platform:  e.Platform(),
			Source:    string(e.Source()),
			Status:    string(e.Status(now)),
			GrantedAt: e.GrantedAt(),
			ExpiresAt: e.ExpiresAt(),
		})
	}
	return out, nil
}
