package mappers

import (
	"fmt"

	"github.com/seatwise-io/seatwise/internal/domain/subscription"
	"github.com/seatwise-io/seatwise/internal/infrastructure/persistence/models"
)

type SeatAssignmentMapper struct{}

func NewSeatAssignmentMapper() SeatAssignmentMapper {
	return SeatAssignmentMapper{}
}

func (m SeatAssignmentMapper) ToModel(entity *subscription.SeatAssignment) (*models.SeatAssignmentModel, error) {
	if entity == nil {
		return nil, fmt.Errorf("seat assignment entity is nil")
	}

	return &models.SeatAssignmentModel{
		ID:             entity.ID(),
		SID:            entity.SID(),
		SubscriptionID: entity.SubscriptionID(),
		UserID:         entity.UserID(),
		AssignedBy:     entity.AssignedBy(),
		Active:         entity.IsActive(),
		AssignedAt:     entity.AssignedAt(),
		RevokedAt:      entity.RevokedAt(),
		Version:        entity.Version(),
		CreatedAt:      entity.CreatedAt(),
		UpdatedAt:      entity.UpdatedAt(),
	}, nil
}

func (m SeatAssignmentMapper) ToEntity(model *models.SeatAssignmentModel) (*subscription.SeatAssignment, error) {
	if model == nil {
		return nil, fmt.Errorf("seat assignment model is nil")
	}

	return subscription.ReconstructSeatAssignment(subscription.SeatAssignmentReconstructParams{
		ID:             model.ID,
		SID:            model.SID,
		SubscriptionID: model.SubscriptionID,
		UserID:         model.UserID,
		AssignedBy:     model.AssignedBy,
		Active:         model.Active,
		AssignedAt:     model.AssignedAt,
		RevokedAt:      model.RevokedAt,
		Version:        model.Version,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	})
}

func (m SeatAssignmentMapper) ToEntities(list []*models.SeatAssignmentModel) ([]*subscription.SeatAssignment, error) {
	entities := make([]*subscription.SeatAssignment, 0, len(list))
	for _, model := range list {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
