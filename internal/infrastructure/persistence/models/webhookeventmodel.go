package models

import (
	"time"

	"gorm.io/datatypes"
)

// WebhookEventModel archives every delivery, rejected ones included. The
// composite unique index on (provider, provider_event_id) is the exactly-once
// gate; rows with signature_valid false are audit records the retry sweep
// never touches.
type WebhookEventModel struct {
	ID              uint   `gorm:"primaryKey"`
	SID             string `gorm:"uniqueIndex;size:32;not null"`
	Provider        string `gorm:"uniqueIndex:idx_event_provider_id;size:20;not null"`
	ProviderEventID string `gorm:"uniqueIndex:idx_event_provider_id;size:128;not null"`
	EventType       string `gorm:"size:40;not null"`
	SubscriptionID  uint   `gorm:"index"`
	RawPayload      datatypes.JSON `gorm:"type:json"`
	SignatureValid  bool           `gorm:"not null;default:true"`
	ReceivedAt      time.Time      `gorm:"not null;index"`
	ProcessedAt     *time.Time     `gorm:"index"`
	ProcessError    *string        `gorm:"type:text"`
	Attempts        int            `gorm:"not null;default:0"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (WebhookEventModel) TableName() string {
	return "webhook_events"
}
