package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/seatwise-io/seatwise/internal/domain/webhook"
	"github.com/seatwise-io/seatwise/internal/infrastructure/persistence/mappers"
	"github.com/seatwise-io/seatwise/internal/infrastructure/persistence/models"
	"github.com/seatwise-io/seatwise/internal/shared/db"
	apperrors "github.com/seatwise-io/seatwise/internal/shared/errors"
	"github.com/seatwise-io/seatwise/internal/shared/logger"
)

type WebhookEventRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.WebhookEventMapper
	logger logger.Interface
}

func NewWebhookEventRepository(gormDB *gorm.DB, logger logger.Interface) webhook.Repository {
	return &WebhookEventRepositoryImpl{
		db:     gormDB,
		mapper: mappers.NewWebhookEventMapper(),
		logger: logger,
	}
}

// RecordIfNew attempts the insert and lets the unique
// (provider, provider_event_id) index arbitrate races: whichever delivery
// inserts first wins, every other one reads the stored row back. There is no
// select-then-insert window.
func (r *WebhookEventRepositoryImpl) RecordIfNew(ctx context.Context, event *webhook.Event) (*webhook.Event, bool, error) {
	model, err := r.mapper.ToModel(event)
	if err != nil {
		return nil, false, fmt.Errorf("failed to map webhook event: %w", err)
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			stored, getErr := r.GetByProviderEventID(ctx, event.Provider(), event.ProviderEventID())
			if getErr != nil {
				return nil, false, fmt.Errorf("failed to load stored duplicate event: %w", getErr)
			}
			return stored, false, nil
		}
		r.logger.Errorw("failed to record webhook event",
			"provider", event.Provider(),
			"provider_event_id", event.ProviderEventID(),
			"error", err,
		)
		return nil, false, fmt.Errorf("failed to record webhook event: %w", err)
	}

	if err := event.SetID(model.ID); err != nil {
		return nil, false, fmt.Errorf("failed to set event ID: %w", err)
	}
	return event, true, nil
}

func (r *WebhookEventRepositoryImpl) Update(ctx context.Context, event *webhook.Event) error {
	model, err := r.mapper.ToModel(event)
	if err != nil {
		return fmt.Errorf("failed to map webhook event: %w", err)
	}

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.WebhookEventModel{}).
		Where("id = ?", model.ID).
		Select("*").
		Updates(model)
	if result.Error != nil {
		return fmt.Errorf("failed to update webhook event: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return webhook.ErrNotFound
	}
	return nil
}

func (r *WebhookEventRepositoryImpl) GetByProviderEventID(ctx context.Context, provider, providerEventID string) (*webhook.Event, error) {
	var model models.WebhookEventModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("provider = ? AND provider_event_id = ?", provider, providerEventID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, webhook.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get webhook event: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *WebhookEventRepositoryImpl) FindUnprocessed(ctx context.Context, cutoff time.Time, maxAttempts, limit int) ([]*webhook.Event, error) {
	var list []*models.WebhookEventModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("processed_at IS NULL AND signature_valid = ? AND attempts < ? AND received_at < ?", true, maxAttempts, cutoff).
		Order("received_at ASC").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find unprocessed events: %w", err)
	}
	return r.mapper.ToEntities(list)
}
