package mappers

import (
	"fmt"

	"github.com/seatwise-io/seatwise/internal/domain/entitlement"
	"github.com/seatwise-io/seatwise/internal/infrastructure/persistence/models"
)

type EntitlementMapper struct{}

func NewEntitlementMapper() EntitlementMapper {
	return EntitlementMapper{}
}

func (m EntitlementMapper) ToModel(entity *entitlement.Entitlement) (*models.EntitlementModel, error) {
	if entity == nil {
		return nil, fmt.Errorf("entitlement entity is nil")
	}

	revokeKey := ""
	if entity.RevokedAt() != nil {
		revokeKey = entity.SID()
	}

	return &models.EntitlementModel{
		ID:            entity.ID(),
		SID:           entity.SID(),
		UserID:        entity.UserID(),
		Name:          entity.Name(),
		RevokeKey:     revokeKey,
		ProductID:     entity.ProductID(),
		Platform:      entity.Platform(),
		Source:        string(entity.Source()),
		SourceEventID: entity.SourceEventID(),
		GrantedAt:     entity.GrantedAt(),
		ExpiresAt:     entity.ExpiresAt(),
		RevokedAt:     entity.RevokedAt(),
		RevokeReason:  entity.RevokeReason(),
		Version:       entity.Version(),
		CreatedAt:     entity.CreatedAt(),
		UpdatedAt:     entity.UpdatedAt(),
	}, nil
}

func (m EntitlementMapper) ToEntity(model *models.EntitlementModel) (*entitlement.Entitlement, error) {
	if model == nil {
		return nil, fmt.Errorf("entitlement model is nil")
	}

	return entitlement.ReconstructEntitlement(entitlement.EntitlementReconstructParams{
		ID:            model.ID,
		SID:           model.SID,
		UserID:        model.UserID,
		Name:          model.Name,
		ProductID:     model.ProductID,
		Platform:      model.Platform,
		Source:        entitlement.Source(model.Source),
		SourceEventID: model.SourceEventID,
		GrantedAt:     model.GrantedAt,
		ExpiresAt:     model.ExpiresAt,
		RevokedAt:     model.RevokedAt,
		RevokeReason:  model.RevokeReason,
		Version:       model.Version,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	})
}

func (m EntitlementMapper) ToEntities(list []*models.EntitlementModel) ([]*entitlement.Entitlement, error) {
	entities := make([]*entitlement.Entitlement, 0, len(list))
	for _, model := range list {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
