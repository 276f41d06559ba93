package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/seatwise-io/seatwise/internal/domain/subscription"
	vo "github.com/seatwise-io/seatwise/internal/domain/subscription/valueobjects"
	"github.com/seatwise-io/seatwise/internal/infrastructure/persistence/mappers"
	"github.com/seatwise-io/seatwise/internal/infrastructure/persistence/models"
	"github.com/seatwise-io/seatwise/internal/shared/db"
	"github.com/seatwise-io/seatwise/internal/shared/logger"
)

type SubscriptionRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.SubscriptionMapper
	logger logger.Interface
}

func NewSubscriptionRepository(gormDB *gorm.DB, logger logger.Interface) subscription.Repository {
	return &SubscriptionRepositoryImpl{
		db:     gormDB,
		mapper: mappers.NewSubscriptionMapper(),
		logger: logger,
	}
}

func (r *SubscriptionRepositoryImpl) Create(ctx context.Context, entity *subscription.Subscription) error {
	model, err := r.mapper.ToModel(entity)
	if err != nil {
		return fmt.Errorf("failed to map subscription entity: %w", err)
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create subscription", "error", err)
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	if err := entity.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set subscription ID: %w", err)
	}
	return nil
}

func (r *SubscriptionRepositoryImpl) Update(ctx context.Context, entity *subscription.Subscription) error {
	model, err := r.mapper.ToModel(entity)
	if err != nil {
		return fmt.Errorf("failed to map subscription entity: %w", err)
	}

	// seats_used is owned by the atomic increment/decrement paths; a full
	// row update must never clobber a concurrent seat operation.
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.SubscriptionModel{}).
		Where("id = ?", model.ID).
		Omit("seats_used").
		Select("*").
		Updates(model)
	if result.Error != nil {
		r.logger.Errorw("failed to update subscription", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update subscription: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return subscription.ErrNotFound
	}
	return nil
}

func (r *SubscriptionRepositoryImpl) GetByID(ctx context.Context, id uint) (*subscription.Subscription, error) {
	var model models.SubscriptionModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, subscription.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *SubscriptionRepositoryImpl) GetBySID(ctx context.Context, sid string) (*subscription.Subscription, error) {
	var model models.SubscriptionModel
	if err := db.GetTxFromContext(ctx, r.db).Where("sid = ?", sid).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, subscription.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *SubscriptionRepositoryImpl) GetActiveByOrgID(ctx context.Context, orgID uint) (*subscription.Subscription, error) {
	var model models.SubscriptionModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("org_id = ? AND status = ?", orgID, vo.StatusActive.String()).
		Order("created_at DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, subscription.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get active subscription: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *SubscriptionRepositoryImpl) GetActiveByOwnerUserID(ctx context.Context, userID uint) (*subscription.Subscription, error) {
	var model models.SubscriptionModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("owner_user_id = ? AND status = ?", userID, vo.StatusActive.String()).
		Order("created_at DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, subscription.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get active subscription: %w", err)
	}
	return r.mapper.ToEntity(&model)
}

func (r *SubscriptionRepositoryImpl) List(ctx context.Context, offset, limit int) ([]*subscription.Subscription, int64, error) {
	var total int64
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Model(&models.SubscriptionModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	var list []*models.SubscriptionModel
	if err := tx.Order("created_at DESC").Offset(offset).Limit(limit).Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	entities, err := r.mapper.ToEntities(list)
	if err != nil {
		return nil, 0, err
	}
	return entities, total, nil
}

func (r *SubscriptionRepositoryImpl) FindExpired(ctx context.Context, limit int) ([]*subscription.Subscription, error) {
	var list []*models.SubscriptionModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("status = ? AND period_end < ?", vo.StatusActive.String(), time.Now().UTC()).
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find expired subscriptions: %w", err)
	}
	return r.mapper.ToEntities(list)
}

// IncrementSeatsUsedIfAvailable does the capacity check and the increment in
// one conditional UPDATE. The database evaluates the predicate and applies
// the increment atomically, so concurrent callers serialize on the row and
// seats_used can never pass seats_total. RowsAffected == 0 means no seat was
// taken: full, frozen over-limit, or not active.
func (r *SubscriptionRepositoryImpl) IncrementSeatsUsedIfAvailable(ctx context.Context, subscriptionID uint) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.SubscriptionModel{}).
		Where("id = ? AND status = ? AND (seats_total IS NULL OR seats_used < seats_total)",
			subscriptionID, vo.StatusActive.String()).
		UpdateColumn("seats_used", gorm.Expr("seats_used + 1"))
	if result.Error != nil {
		r.logger.Errorw("failed to increment seats used", "subscription_id", subscriptionID, "error", result.Error)
		return fmt.Errorf("failed to increment seats used: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return subscription.ErrSeatCapacityExceeded
	}
	return nil
}

// DecrementSeatsUsed is guarded so a duplicate revoke can never push the
// counter below zero.
func (r *SubscriptionRepositoryImpl) DecrementSeatsUsed(ctx context.Context, subscriptionID uint) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.SubscriptionModel{}).
		Where("id = ? AND seats_used > 0", subscriptionID).
		UpdateColumn("seats_used", gorm.Expr("seats_used - 1"))
	if result.Error != nil {
		r.logger.Errorw("failed to decrement seats used", "subscription_id", subscriptionID, "error", result.Error)
		return fmt.Errorf("failed to decrement seats used: %w", result.Error)
	}
	return nil
}
