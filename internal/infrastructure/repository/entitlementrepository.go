package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/seatwise-io/seatwise/internal/domain/entitlement"
	"github.com/seatwise-io/seatwise/internal/infrastructure/persistence/mappers"
	"github.com/seatwise-io/seatwise/internal/infrastructure/persistence/models"
	"github.com/seatwise-io/seatwise/internal/shared/db"
	"github.com/seatwise-io/seatwise/internal/shared/logger"
)

type EntitlementRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.EntitlementMapper
	logger logger.Interface
}

func NewEntitlementRepository(gormDB *gorm.DB, logger logger.Interface) entitlement.Repository {
	return &EntitlementRepositoryImpl{
		db:     gormDB,
		mapper: mappers.NewEntitlementMapper(),
		logger: logger,
	}
}

func (r *EntitlementRepositoryImpl) Create(ctx context.Context, entity *entitlement.Entitlement) error {
	model, err := r.mapper.ToModel(entity)
	if err != nil {
		return fmt.Errorf("failed to map entitlement entity: %w", err)
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create entitlement",
			"user_id", model.UserID,
			"name", model.Name,
			"error", err,
		)
		return fmt.Errorf("failed to create entitlement: %w", err)
	}

	if err := entity.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set entitlement ID: %w", err)
	}
	return nil
}

func (r *EntitlementRepositoryImpl) Update(ctx context.Context, entity *entitlement.Entitlement) error {
	model, err := r.mapper.ToModel(entity)
	if err != nil {
		return fmt.Errorf("failed to map entitlement entity: %w", err)
	}

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.EntitlementModel{}).
		Where("id = ?", model.ID).
		Select("*").
		Updates(model)
	if result.Error != nil {
		return fmt.Errorf("failed to update entitlement: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return entitlement.ErrNotFound
	}
	return nil
}

func (r *EntitlementRepositoryImpl) GetByID(ctx context.Context, id uint) (*entitlement.Entitlement, error) {
	var model models.EntitlementModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entitlement.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get entitlement: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *EntitlementRepositoryImpl) GetBySourceEventID(ctx context.Context, sourceEventID string) (*entitlement.Entitlement, error) {
	var model models.EntitlementModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("source_event_id = ?", sourceEventID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entitlement.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get entitlement: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

// GetByUserAndName returns the live grant for the pair. Revoked rows stay in
// the table for audit but are never returned here, so a grant after a
// revocation creates a fresh row instead of resurrecting the old one.
func (r *EntitlementRepositoryImpl) GetByUserAndName(ctx context.Context, userID uint, name string) (*entitlement.Entitlement, error) {
	var model models.EntitlementModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("user_id = ? AND name = ? AND revoked_at IS NULL", userID, name).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entitlement.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get entitlement: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *EntitlementRepositoryImpl) ListByUser(ctx context.Context, userID uint) ([]*entitlement.Entitlement, error) {
	var list []*models.EntitlementModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("user_id = ?", userID).
		Order("granted_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list entitlements: %w", err)
	}
	return r.mapper.ToEntities(list)
}

func (r *EntitlementRepositoryImpl) FindExpiring(ctx context.Context, cutoff time.Time, limit int) ([]*entitlement.Entitlement, error) {
	var list []*models.EntitlementModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("revoked_at IS NULL AND expires_at IS NOT NULL AND expires_at < ?", cutoff).
		Order("expires_at ASC").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find expiring entitlements: %w", err)
	}
	return r.mapper.ToEntities(list)
}
