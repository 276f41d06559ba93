package models

import "time"

// EntitlementModel stores grants. Status is derived from the timestamp
// columns at read time; there is deliberately no status column.
//
// RevokeKey is '' while the grant is live and the row's SID once revoked, so
// idx_ent_user_name allows exactly one live row per (user, name) while every
// revoked row stays behind for audit.
type EntitlementModel struct {
	ID            uint   `gorm:"primaryKey"`
	SID           string `gorm:"uniqueIndex;size:32;not null"`
	UserID        uint   `gorm:"uniqueIndex:idx_ent_user_name;not null"`
	Name          string `gorm:"uniqueIndex:idx_ent_user_name;size:64;not null"`
	RevokeKey     string `gorm:"uniqueIndex:idx_ent_user_name;size:32;not null;default:''"`
	ProductID     string `gorm:"size:64"`
	Platform      string `gorm:"size:20"`
	Source        string `gorm:"size:20;not null"`
	SourceEventID string `gorm:"size:160;index"`
	GrantedAt     time.Time `gorm:"not null"`
	ExpiresAt     *time.Time `gorm:"index"`
	RevokedAt     *time.Time
	RevokeReason  *string `gorm:"size:255"`
	Version       int     `gorm:"default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (EntitlementModel) TableName() string {
	return "entitlements"
}
