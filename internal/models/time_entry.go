package models

import "time"

type TimeEntry struct {
	ID             string    `gorm:"primaryKey;size:26" json:"id"`
	OrganizationID string    `gorm:"index;size:26;not null" json:"organizationId"`
	BriefID        *string   `gorm:"index;size:26" json:"briefId"`
	ClientID       *string   `gorm:"index;size:26" json:"clientId"`
	Date           time.Time `gorm:"index" json:"date"`
	Hours          float64   `json:"hours"`
	Notes          string    `gorm:"type:text" json:"notes"`
	CreatedByID    string    `gorm:"index;size:26" json:"createdById"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
