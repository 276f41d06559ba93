package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/seatwise-io/seatwise/internal/domain/org"
	"github.com/seatwise-io/seatwise/internal/domain/tier"
	"github.com/seatwise-io/seatwise/internal/infrastructure/persistence/models"
	"github.com/seatwise-io/seatwise/internal/shared/db"
	"github.com/seatwise-io/seatwise/internal/shared/logger"
)

type OrgMemberRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewOrgMemberRepository(gormDB *gorm.DB, logger logger.Interface) org.MembershipRepository {
	return &OrgMemberRepositoryImpl{db: gormDB, logger: logger}
}

func (r *OrgMemberRepositoryImpl) GetByOrgAndUser(ctx context.Context, orgID, userID uint) (*org.Membership, error) {
	var model models.OrgMemberModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("org_id = ? AND user_id = ?", orgID, userID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, org.ErrMembershipNotFound
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return toMembership(&model)
}

func (r *OrgMemberRepositoryImpl) ListByOrg(ctx context.Context, orgID uint) ([]*org.Membership, error) {
	var list []*models.OrgMemberModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("org_id = ?", orgID).
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}

	memberships := make([]*org.Membership, 0, len(list))
	for _, model := range list {
		m, err := toMembership(model)
		if err != nil {
			return nil, err
		}
		memberships = append(memberships, m)
	}
	return memberships, nil
}

func toMembership(model *models.OrgMemberModel) (*org.Membership, error) {
	return org.ReconstructMembership(org.MembershipReconstructParams{
		ID:        model.ID,
		OrgID:     model.OrgID,
		UserID:    model.UserID,
		Role:      tier.Role(model.Role),
		Active:    model.Active,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	})
}
