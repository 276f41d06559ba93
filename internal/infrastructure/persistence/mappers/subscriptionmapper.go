package mappers

import (
	"fmt"

	"github.com/seatwise-io/seatwise/internal/domain/subscription"
	vo "github.com/seatwise-io/seatwise/internal/domain/subscription/valueobjects"
	"github.com/seatwise-io/seatwise/internal/domain/tier"
	"github.com/seatwise-io/seatwise/internal/infrastructure/persistence/models"
)

type SubscriptionMapper struct{}

func NewSubscriptionMapper() SubscriptionMapper {
	return SubscriptionMapper{}
}

func (m SubscriptionMapper) ToModel(entity *subscription.Subscription) (*models.SubscriptionModel, error) {
	if entity == nil {
		return nil, fmt.Errorf("subscription entity is nil")
	}

	return &models.SubscriptionModel{
		ID:           entity.ID(),
		SID:          entity.SID(),
		OwnerType:    entity.OwnerType().String(),
		OrgID:        entity.OrgID(),
		OwnerUserID:  entity.OwnerUserID(),
		OrgCategory:  string(entity.OrgCategory()),
		Tier:         entity.Tier().String(),
		Status:       entity.Status().String(),
		SeatsTotal:   entity.SeatsTotal(),
		SeatsUsed:    entity.SeatsUsed(),
		BillingCycle: entity.BillingCycle().String(),
		PriceCents:   entity.PriceCents(),
		Currency:     entity.Currency(),
		PeriodEnd:    entity.PeriodEnd(),
		CancelledAt:  entity.CancelledAt(),
		CancelReason: entity.CancelReason(),
		Version:      entity.Version(),
		CreatedAt:    entity.CreatedAt(),
		UpdatedAt:    entity.UpdatedAt(),
	}, nil
}

func (m SubscriptionMapper) ToEntity(model *models.SubscriptionModel) (*subscription.Subscription, error) {
	if model == nil {
		return nil, fmt.Errorf("subscription model is nil")
	}

	return subscription.ReconstructSubscription(subscription.SubscriptionReconstructParams{
		ID:           model.ID,
		SID:          model.SID,
		OwnerType:    vo.OwnerType(model.OwnerType),
		OrgID:        model.OrgID,
		OwnerUserID:  model.OwnerUserID,
		OrgCategory:  tier.OrgCategory(model.OrgCategory),
		PlanTier:     tier.Normalize(model.Tier),
		Status:       vo.SubscriptionStatus(model.Status),
		SeatsTotal:   model.SeatsTotal,
		SeatsUsed:    model.SeatsUsed,
		BillingCycle: vo.BillingCycle(model.BillingCycle),
		PriceCents:   model.PriceCents,
		Currency:     model.Currency,
		PeriodEnd:    model.PeriodEnd,
		CancelledAt:  model.CancelledAt,
		CancelReason: model.CancelReason,
		Version:      model.Version,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	})
}

func (m SubscriptionMapper) ToEntities(list []*models.SubscriptionModel) ([]*subscription.Subscription, error) {
	entities := make([]*subscription.Subscription, 0, len(list))
	for _, model := range list {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
