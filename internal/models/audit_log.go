package models

import (
	"time"

	"gorm.io/datatypes"
)

type AuditLog struct {
	ID             string         `gorm:"primaryKey;size:26" json:"id"`
	OrganizationID string         `gorm:"index;size:26;not null" json:"organizationId"`
	UserID         string         `gorm:"index;size:26" json:"userId"` // empty for system actions
	Action         string         `gorm:"size:200;not null" json:"action"` // e.g. "clients.create", "access.denied"
	ResourceType   string         `gorm:"size:100" json:"resourceType"`
	ResourceID     string         `gorm:"index;size:26" json:"resourceId"`
	Metadata       datatypes.JSON `gorm:"type:json" json:"metadata"`
	RequestID      string         `gorm:"size:36" json:"requestId"`
	IP             string         `gorm:"size:64" json:"ip"`
	UserAgent      string         `gorm:"size:255" json:"userAgent"`
	CreatedAt      time.Time      `json:"createdAt"`

	// Relations
	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"-"`
}
