package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/seatwise-io/seatwise/internal/domain/subscription"
	"github.com/seatwise-io/seatwise/internal/infrastructure/persistence/mappers"
	"github.com/seatwise-io/seatwise/internal/infrastructure/persistence/models"
	"github.com/seatwise-io/seatwise/internal/shared/db"
	"github.com/seatwise-io/seatwise/internal/shared/logger"
)

type SeatAssignmentRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.SeatAssignmentMapper
	logger logger.Interface
}

func NewSeatAssignmentRepository(gormDB *gorm.DB, logger logger.Interface) subscription.SeatAssignmentRepository {
	return &SeatAssignmentRepositoryImpl{
		db:     gormDB,
		mapper: mappers.NewSeatAssignmentMapper(),
		logger: logger,
	}
}

func (r *SeatAssignmentRepositoryImpl) Create(ctx context.Context, entity *subscription.SeatAssignment) error {
	model, err := r.mapper.ToModel(entity)
	if err != nil {
		return fmt.Errorf("failed to map seat assignment entity: %w", err)
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create seat assignment",
			"subscription_id", model.SubscriptionID,
			"user_id", model.UserID,
			"error", err,
		)
		return fmt.Errorf("failed to create seat assignment: %w", err)
	}

	if err := entity.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set seat assignment ID: %w", err)
	}
	return nil
}

func (r *SeatAssignmentRepositoryImpl) Update(ctx context.Context, entity *subscription.SeatAssignment) error {
	model, err := r.mapper.ToModel(entity)
	if err != nil {
		return fmt.Errorf("failed to map seat assignment entity: %w", err)
	}

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.SeatAssignmentModel{}).
		Where("id = ?", model.ID).
		Select("*").
		Updates(model)
	if result.Error != nil {
		return fmt.Errorf("failed to update seat assignment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return subscription.ErrAssignmentNotFound
	}
	return nil
}

// ReactivateIfInactive and DeactivateIfActive both write the full row but
// predicate on the stored active flag, so of any number of racing writers
// exactly one sees rows affected.

func (r *SeatAssignmentRepositoryImpl) ReactivateIfInactive(ctx context.Context, entity *subscription.SeatAssignment) (bool, error) {
	return r.updateIfActiveIs(ctx, entity, false)
}

func (r *SeatAssignmentRepositoryImpl) DeactivateIfActive(ctx context.Context, entity *subscription.SeatAssignment) (bool, error) {
	return r.updateIfActiveIs(ctx, entity, true)
}

func (r *SeatAssignmentRepositoryImpl) updateIfActiveIs(ctx context.Context, entity *subscription.SeatAssignment, active bool) (bool, error) {
	model, err := r.mapper.ToModel(entity)
	if err != nil {
		return false, fmt.Errorf("failed to map seat assignment entity: %w", err)
	}

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.SeatAssignmentModel{}).
		Where("id = ? AND active = ?", model.ID, active).
		Select("*").
		Updates(model)
	if result.Error != nil {
		return false, fmt.Errorf("failed to update seat assignment: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *SeatAssignmentRepositoryImpl) GetBySubscriptionAndUser(ctx context.Context, subscriptionID, userID uint) (*subscription.SeatAssignment, error) {
	var model models.SeatAssignmentModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("subscription_id = ? AND user_id = ?", subscriptionID, userID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, subscription.ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to get seat assignment: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *SeatAssignmentRepositoryImpl) ListActiveBySubscription(ctx context.Context, subscriptionID uint, offset, limit int) ([]*subscription.SeatAssignment, int64, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	var total int64
	err := tx.Model(&models.SeatAssignmentModel{}).
		Where("subscription_id = ? AND active = ?", subscriptionID, true).
		Count(&total).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count seat assignments: %w", err)
	}

	var list []*models.SeatAssignmentModel
	err = tx.Where("subscription_id = ? AND active = ?", subscriptionID, true).
		Order("assigned_at ASC").
		Offset(offset).Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list seat assignments: %w", err)
	}

	entities, err := r.mapper.ToEntities(list)
	if err != nil {
		return nil, 0, err
	}
	return entities, total, nil
}

func (r *SeatAssignmentRepositoryImpl) CountActiveBySubscription(ctx context.Context, subscriptionID uint) (int64, error) {
	var total int64
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.SeatAssignmentModel{}).
		Where("subscription_id = ? AND active = ?", subscriptionID, true).
		Count(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count seat assignments: %w", err)
	}
	return total, nil
}
