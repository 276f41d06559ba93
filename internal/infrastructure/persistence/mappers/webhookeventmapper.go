package mappers

import (
	"fmt"

	"gorm.io/datatypes"

	"github.com/seatwise-io/seatwise/internal/domain/webhook"
	"github.com/seatwise-io/seatwise/internal/infrastructure/persistence/models"
)

type WebhookEventMapper struct{}

func NewWebhookEventMapper() WebhookEventMapper {
	return WebhookEventMapper{}
}

func (m WebhookEventMapper) ToModel(entity *webhook.Event) (*models.WebhookEventModel, error) {
	if entity == nil {
		return nil, fmt.Errorf("webhook event entity is nil")
	}

	return &models.WebhookEventModel{
		ID:              entity.ID(),
		SID:             entity.SID(),
		Provider:        entity.Provider(),
		ProviderEventID: entity.ProviderEventID(),
		EventType:       string(entity.EventType()),
		SubscriptionID:  entity.SubscriptionID(),
		RawPayload:      datatypes.JSON(entity.RawPayload()),
		SignatureValid:  entity.SignatureValid(),
		ReceivedAt:      entity.ReceivedAt(),
		ProcessedAt:     entity.ProcessedAt(),
		ProcessError:    entity.ProcessError(),
		Attempts:        entity.Attempts(),
		CreatedAt:       entity.CreatedAt(),
		UpdatedAt:       entity.UpdatedAt(),
	}, nil
}

func (m WebhookEventMapper) ToEntity(model *models.WebhookEventModel) (*webhook.Event, error) {
	if model == nil {
		return nil, fmt.Errorf("webhook event model is nil")
	}

	return webhook.ReconstructEvent(webhook.EventReconstructParams{
		ID:              model.ID,
		SID:             model.SID,
		Provider:        model.Provider,
		ProviderEventID: model.ProviderEventID,
		EventType:       webhook.EventType(model.EventType),
		SubscriptionID:  model.SubscriptionID,
		RawPayload:      []byte(model.RawPayload),
		SignatureValid:  model.SignatureValid,
		ReceivedAt:      model.ReceivedAt,
		ProcessedAt:     model.ProcessedAt,
		ProcessError:    model.ProcessError,
		Attempts:        model.Attempts,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	})
}

func (m WebhookEventMapper) ToEntities(list []*models.WebhookEventModel) ([]*webhook.Event, error) {
	entities := make([]*webhook.Event, 0, len(list))
	for _, model := range list {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
