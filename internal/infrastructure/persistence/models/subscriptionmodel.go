package models

import (
	"time"
)

type SubscriptionModel struct {
	ID           uint   `gorm:"primaryKey"`
	SID          string `gorm:"uniqueIndex;size:32;not null"`
	OwnerType    string `gorm:"size:20;not null"`
	OrgID        uint   `gorm:"index"`
	OwnerUserID  uint   `gorm:"index"`
	OrgCategory  string `gorm:"size:20;not null"`
	Tier         string `gorm:"size:20;not null"`
	Status       string `gorm:"size:20;not null;index"`
	SeatsTotal   *int
	SeatsUsed    int    `gorm:"not null;default:0"`
	BillingCycle string `gorm:"size:10;not null"`
	PriceCents   int64  `gorm:"not null"`
	Currency     string `gorm:"size:10;not null;default:'ZAR'"`
	PeriodEnd    time.Time `gorm:"not null;index"`
	CancelledAt  *time.Time
	CancelReason *string `gorm:"size:255"`
	Version      int     `gorm:"default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (SubscriptionModel) TableName() string {
	return "subscriptions"
}
