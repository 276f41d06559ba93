package models

import "time"

type OrgMemberModel struct {
	ID        uint   `gorm:"primaryKey"`
	OrgID     uint   `gorm:"uniqueIndex:idx_member_org_user;not null"`
	UserID    uint   `gorm:"uniqueIndex:idx_member_org_user;not null;index"`
	Role      string `gorm:"size:20;not null"`
	Active    bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (OrgMemberModel) TableName() string {
	return "org_members"
}
