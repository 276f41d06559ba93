package models

import "time"

// SeatAssignmentModel holds one seat per (subscription, user); the composite
// unique index makes duplicate assignment a constraint violation rather than
// a race.
type SeatAssignmentModel struct {
	ID             uint   `gorm:"primaryKey"`
	SID            string `gorm:"uniqueIndex;size:32;not null"`
	SubscriptionID uint   `gorm:"uniqueIndex:idx_seat_sub_user;not null"`
	UserID         uint   `gorm:"uniqueIndex:idx_seat_sub_user;not null;index"`
	AssignedBy     uint   `gorm:"not null"`
	Active         bool   `gorm:"not null;default:true;index"`
	AssignedAt     time.Time `gorm:"not null"`
	RevokedAt      *time.Time
	Version        int `gorm:"default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (SeatAssignmentModel) TableName() string {
	return "seat_assignments"
}
