package models

import "time"

type File struct {
	ID             string    `gorm:"primaryKey;size:26" json:"id"`
	OrganizationID string    `gorm:"index;size:26;not null" json:"organizationId"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	Path           string    `gorm:"size:500" json:"path"`
	MimeType       string    `gorm:"size:100" json:"mimeType"`
	Size           int64     `json:"size"`
	ClientID       *string   `gorm:"index;size:26" json:"clientId"`
	BriefID        *string   `gorm:"index;size:26" json:"briefId"`
	CreatedByID    string    `gorm:"index;size:26" json:"createdById"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
