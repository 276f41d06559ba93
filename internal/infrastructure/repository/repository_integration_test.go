package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/seatwise-io/seatwise/internal/domain/entitlement"
	"github.com/seatwise-io/seatwise/internal/domain/org"
	"github.com/seatwise-io/seatwise/internal/domain/subscription"
	vo "github.com/seatwise-io/seatwise/internal/domain/subscription/valueobjects"
	"github.com/seatwise-io/seatwise/internal/domain/tier"
	"github.com/seatwise-io/seatwise/internal/domain/webhook"
	"github.com/seatwise-io/seatwise/internal/infrastructure/persistence/models"
	apperrors "github.com/seatwise-io/seatwise/internal/shared/errors"
	"github.com/seatwise-io/seatwise/internal/shared/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.SubscriptionModel{},
		&models.SeatAssignmentModel{},
		&models.WebhookEventModel{},
		&models.EntitlementModel{},
		&models.OrgMemberModel{},
	)
	require.NoError(t, err)

	return db
}

func createActiveSubscription(t *testing.T, repo subscription.Repository, orgID uint, seatsTotal *int) *subscription.Subscription {
	sub, err := subscription.NewOrganizationSubscription(
		orgID,
		tier.OrgCategoryPreschool,
		"premium",
		seatsTotal,
		vo.BillingCycleMonthly,
		49900,
		"ZAR",
		time.Now().UTC().Add(30*24*time.Hour),
	)
	require.NoError(t, err)
	require.NoError(t, sub.Activate(sub.PeriodEnd()))

	err = repo.Create(context.Background(), sub)
	require.NoError(t, err)
	require.NotZero(t, sub.ID())
	return sub
}

func TestSubscriptionRepository_IncrementSeatsUsedIfAvailable(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubscriptionRepository(db, logger.NewLogger())
	ctx := context.Background()

	t.Run("stops exactly at capacity", func(t *testing.T) {
		three := 3
		sub := createActiveSubscription(t, repo, 1, &three)

		var taken, rejected int
		for i := 0; i < 10; i++ {
			err := repo.IncrementSeatsUsedIfAvailable(ctx, sub.ID())
			if err == nil {
				taken++
				continue
			}
			require.ErrorIs(t, err, subscription.ErrSeatCapacityExceeded)
			rejected++
		}

		assert.Equal(t, 3, taken)
		assert.Equal(t, 7, rejected)

		found, err := repo.GetByID(ctx, sub.ID())
		require.NoError(t, err)
		assert.Equal(t, 3, found.SeatsUsed())
	})

	t.Run("unlimited seats never reject", func(t *testing.T) {
		sub := createActiveSubscription(t, repo, 2, nil)

		for i := 0; i < 5; i++ {
			require.NoError(t, repo.IncrementSeatsUsedIfAvailable(ctx, sub.ID()))
		}

		found, err := repo.GetByID(ctx, sub.ID())
		require.NoError(t, err)
		assert.Equal(t, 5, found.SeatsUsed())
	})

	t.Run("inactive subscription takes no seat", func(t *testing.T) {
		five := 5
		sub, err := subscription.NewOrganizationSubscription(
			3, tier.OrgCategoryPreschool, "premium", &five,
			vo.BillingCycleMonthly, 49900, "ZAR",
			time.Now().UTC().Add(30*24*time.Hour),
		)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, sub))

		err = repo.IncrementSeatsUsedIfAvailable(ctx, sub.ID())
		assert.ErrorIs(t, err, subscription.ErrSeatCapacityExceeded)
	})
}

func TestSubscriptionRepository_DecrementSeatsUsed(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubscriptionRepository(db, logger.NewLogger())
	ctx := context.Background()

	two := 2
	sub := createActiveSubscription(t, repo, 1, &two)
	require.NoError(t, repo.IncrementSeatsUsedIfAvailable(ctx, sub.ID()))

	t.Run("releases a taken seat", func(t *testing.T) {
		require.NoError(t, repo.DecrementSeatsUsed(ctx, sub.ID()))

		found, err := repo.GetByID(ctx, sub.ID())
		require.NoError(t, err)
		assert.Equal(t, 0, found.SeatsUsed())
	})

	t.Run("never goes below zero", func(t *testing.T) {
		require.NoError(t, repo.DecrementSeatsUsed(ctx, sub.ID()))
		require.NoError(t, repo.DecrementSeatsUsed(ctx, sub.ID()))

		found, err := repo.GetByID(ctx, sub.ID())
		require.NoError(t, err)
		assert.Equal(t, 0, found.SeatsUsed())
	})
}

func TestSubscriptionRepository_UpdatePreservesSeatCounter(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubscriptionRepository(db, logger.NewLogger())
	ctx := context.Background()

	ten := 10
	sub := createActiveSubscription(t, repo, 1, &ten)

	// Snapshot loaded before any seats are taken.
	stale, err := repo.GetByID(ctx, sub.ID())
	require.NoError(t, err)

	require.NoError(t, repo.IncrementSeatsUsedIfAvailable(ctx, sub.ID()))
	require.NoError(t, repo.IncrementSeatsUsedIfAvailable(ctx, sub.ID()))

	require.NoError(t, stale.Renew(stale.PeriodEnd().Add(30*24*time.Hour)))
	require.NoError(t, repo.Update(ctx, stale))

	found, err := repo.GetByID(ctx, sub.ID())
	require.NoError(t, err)
	assert.Equal(t, 2, found.SeatsUsed(), "full row update must not clobber the seat counter")
	assert.True(t, found.PeriodEnd().After(sub.PeriodEnd()))
}

func TestSubscriptionRepository_GetBySID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubscriptionRepository(db, logger.NewLogger())
	ctx := context.Background()

	sub := createActiveSubscription(t, repo, 1, nil)

	found, err := repo.GetBySID(ctx, sub.SID())
	require.NoError(t, err)
	assert.Equal(t, sub.ID(), found.ID())

	_, err = repo.GetBySID(ctx, "sub_doesnotexist")
	assert.ErrorIs(t, err, subscription.ErrNotFound)
}

func TestSubscriptionRepository_FindExpired(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubscriptionRepository(db, logger.NewLogger())
	ctx := context.Background()

	lapsed, err := subscription.NewOrganizationSubscription(
		1, tier.OrgCategoryPreschool, "premium", nil,
		vo.BillingCycleMonthly, 49900, "ZAR",
		time.Now().UTC().Add(time.Hour),
	)
	require.NoError(t, err)
	require.NoError(t, lapsed.Activate(lapsed.PeriodEnd()))
	require.NoError(t, repo.Create(ctx, lapsed))
	// Backdate the period end past the sweep cutoff.
	require.NoError(t, db.Model(&models.SubscriptionModel{}).
		Where("id = ?", lapsed.ID()).
		UpdateColumn("period_end", time.Now().UTC().Add(-time.Hour)).Error)

	current := createActiveSubscription(t, repo, 2, nil)

	expired, err := repo.FindExpired(ctx, 10)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, lapsed.ID(), expired[0].ID())
	assert.NotEqual(t, current.ID(), expired[0].ID())
}

func TestSeatAssignmentRepository_UniquePair(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSeatAssignmentRepository(db, logger.NewLogger())
	ctx := context.Background()

	seat, err := subscription.NewSeatAssignment(1, 42, 7)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, seat))

	dup, err := subscription.NewSeatAssignment(1, 42, 7)
	require.NoError(t, err)
	err = repo.Create(ctx, dup)
	require.Error(t, err)
	assert.True(t, apperrors.IsDuplicateError(err))

	found, err := repo.GetBySubscriptionAndUser(ctx, 1, 42)
	require.NoError(t, err)
	assert.Equal(t, seat.ID(), found.ID())

	_, err = repo.GetBySubscriptionAndUser(ctx, 1, 999)
	assert.ErrorIs(t, err, subscription.ErrAssignmentNotFound)
}

func TestSeatAssignmentRepository_ConditionalFlips(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSeatAssignmentRepository(db, logger.NewLogger())
	ctx := context.Background()

	seat, err := subscription.NewSeatAssignment(1, 42, 7)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, seat))

	// Deactivation only lands on a row that is still active.
	seat.Revoke()
	won, err := repo.DeactivateIfActive(ctx, seat)
	require.NoError(t, err)
	assert.True(t, won)

	won, err = repo.DeactivateIfActive(ctx, seat)
	require.NoError(t, err)
	assert.False(t, won, "second deactivation loses the conditional update")

	// Reactivation only lands on a row that is still inactive.
	seat.Reactivate(7)
	won, err = repo.ReactivateIfInactive(ctx, seat)
	require.NoError(t, err)
	assert.True(t, won)

	won, err = repo.ReactivateIfInactive(ctx, seat)
	require.NoError(t, err)
	assert.False(t, won, "second reactivation loses the conditional update")

	found, err := repo.GetBySubscriptionAndUser(ctx, 1, 42)
	require.NoError(t, err)
	assert.True(t, found.IsActive())
}

func TestSeatAssignmentRepository_ListActiveBySubscription(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSeatAssignmentRepository(db, logger.NewLogger())
	ctx := context.Background()

	for _, userID := range []uint{10, 11, 12} {
		seat, err := subscription.NewSeatAssignment(1, userID, 7)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, seat))
	}

	revoked, err := repo.GetBySubscriptionAndUser(ctx, 1, 12)
	require.NoError(t, err)
	revoked.Revoke()
	require.NoError(t, repo.Update(ctx, revoked))

	list, total, err := repo.ListActiveBySubscription(ctx, 1, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, list, 2)

	count, err := repo.CountActiveBySubscription(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestWebhookEventRepository_RecordIfNew(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWebhookEventRepository(db, logger.NewLogger())
	ctx := context.Background()

	payload := []byte(`{"event":"charge.success","data":{"id":900011}}`)

	t.Run("first delivery inserts", func(t *testing.T) {
		event, err := webhook.NewEvent("paystack", "900011", webhook.EventPaymentSucceeded, 1, payload)
		require.NoError(t, err)

		stored, isNew, err := repo.RecordIfNew(ctx, event)
		require.NoError(t, err)
		assert.True(t, isNew)
		assert.NotZero(t, stored.ID())
	})

	t.Run("redelivery returns the stored row", func(t *testing.T) {
		event, err := webhook.NewEvent("paystack", "900011", webhook.EventPaymentSucceeded, 1, payload)
		require.NoError(t, err)

		stored, isNew, err := repo.RecordIfNew(ctx, event)
		require.NoError(t, err)
		assert.False(t, isNew)
		assert.Equal(t, "900011", stored.ProviderEventID())

		var count int64
		require.NoError(t, db.Model(&models.WebhookEventModel{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("same event ID under another provider is distinct", func(t *testing.T) {
		event, err := webhook.NewEvent("payfast", "900011", webhook.EventPaymentSucceeded, 1, payload)
		require.NoError(t, err)

		_, isNew, err := repo.RecordIfNew(ctx, event)
		require.NoError(t, err)
		assert.True(t, isNew)
	})
}

func TestWebhookEventRepository_FindUnprocessed(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWebhookEventRepository(db, logger.NewLogger())
	ctx := context.Background()

	payload := []byte(`{"event":"charge.success"}`)

	pending, err := webhook.NewEvent("paystack", "evt-pending", webhook.EventPaymentSucceeded, 1, payload)
	require.NoError(t, err)
	_, _, err = repo.RecordIfNew(ctx, pending)
	require.NoError(t, err)

	done, err := webhook.NewEvent("paystack", "evt-done", webhook.EventPaymentSucceeded, 1, payload)
	require.NoError(t, err)
	_, _, err = repo.RecordIfNew(ctx, done)
	require.NoError(t, err)
	done.MarkProcessed()
	require.NoError(t, repo.Update(ctx, done))

	exhausted, err := webhook.NewEvent("paystack", "evt-exhausted", webhook.EventPaymentSucceeded, 1, payload)
	require.NoError(t, err)
	_, _, err = repo.RecordIfNew(ctx, exhausted)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		exhausted.MarkFailed("subscription not found")
	}
	require.NoError(t, repo.Update(ctx, exhausted))

	// An archived rejected delivery is audit only, never retried.
	unverified, err := webhook.NewUnverifiedEvent("paystack", []byte(`{"event":"charge.success","data":{"id":666}}`))
	require.NoError(t, err)
	unverified.MarkFailed("signature verification failed")
	_, _, err = repo.RecordIfNew(ctx, unverified)
	require.NoError(t, err)

	list, err := repo.FindUnprocessed(ctx, time.Now().UTC().Add(time.Minute), 10, 50)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "evt-pending", list[0].ProviderEventID())
}

func TestEntitlementRepository_UniqueUserAndName(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEntitlementRepository(db, logger.NewLogger())
	ctx := context.Background()

	ent, err := entitlement.NewEntitlement(5, "premium", "prod_1", "web", entitlement.SourceSubscription, "evt-1", nil)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, ent))

	dup, err := entitlement.NewEntitlement(5, "premium", "prod_1", "web", entitlement.SourceSubscription, "evt-2", nil)
	require.NoError(t, err)
	err = repo.Create(ctx, dup)
	require.Error(t, err)
	assert.True(t, apperrors.IsDuplicateError(err))

	found, err := repo.GetByUserAndName(ctx, 5, "premium")
	require.NoError(t, err)
	assert.Equal(t, ent.ID(), found.ID())

	_, err = repo.GetByUserAndName(ctx, 5, "missing")
	assert.ErrorIs(t, err, entitlement.ErrNotFound)

	// Revoking frees the pair for a fresh grant while the revoked row stays
	// behind as audit history.
	ent.Revoke("refund", time.Now().UTC())
	require.NoError(t, repo.Update(ctx, ent))

	fresh, err := entitlement.NewEntitlement(5, "premium", "prod_1", "web", entitlement.SourceSubscription, "evt-3", nil)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, fresh))

	live, err := repo.GetByUserAndName(ctx, 5, "premium")
	require.NoError(t, err)
	assert.Equal(t, fresh.ID(), live.ID())

	audit, err := repo.GetBySourceEventID(ctx, "evt-1")
	require.NoError(t, err)
	require.NotNil(t, audit.RevokedAt())
	assert.Equal(t, "refund", *audit.RevokeReason())
}

func TestEntitlementRepository_FindExpiring(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEntitlementRepository(db, logger.NewLogger())
	ctx := context.Background()

	past := time.Now().UTC().Add(-time.Hour)
	future := time.Now().UTC().Add(24 * time.Hour)

	lapsed, err := entitlement.NewEntitlement(1, "seat_licenses", "prod_1", "web", entitlement.SourceSubscription, "evt-a", &past)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, lapsed))

	current, err := entitlement.NewEntitlement(2, "seat_licenses", "prod_1", "web", entitlement.SourceSubscription, "evt-b", &future)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, current))

	perpetual, err := entitlement.NewEntitlement(3, "seat_licenses", "prod_1", "web", entitlement.SourceSubscription, "evt-c", nil)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, perpetual))

	revoked, err := entitlement.NewEntitlement(4, "seat_licenses", "prod_1", "web", entitlement.SourceSubscription, "evt-d", &past)
	require.NoError(t, err)
	revoked.Revoke("refund", time.Now().UTC())
	require.NoError(t, repo.Create(ctx, revoked))

	list, err := repo.FindExpiring(ctx, time.Now().UTC(), 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, lapsed.ID(), list[0].ID())
}

func TestOrgMemberRepository_GetByOrgAndUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrgMemberRepository(db, logger.NewLogger())
	ctx := context.Background()

	require.NoError(t, db.Create(&models.OrgMemberModel{
		OrgID:  1,
		UserID: 42,
		Role:   "admin",
		Active: true,
	}).Error)

	m, err := repo.GetByOrgAndUser(ctx, 1, 42)
	require.NoError(t, err)
	assert.Equal(t, tier.RoleAdmin, m.Role())
	assert.True(t, m.CanManageSeats())

	_, err = repo.GetByOrgAndUser(ctx, 1, 999)
	assert.ErrorIs(t, err, org.ErrMembershipNotFound)
}
