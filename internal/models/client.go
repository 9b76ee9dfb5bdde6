package models

import "time"

type Client struct {
	ID             string `gorm:"primaryKey;size:26" json:"id"`
	OrganizationID string `gorm:"index;size:26;not null" json:"organizationId"`
	Name           string `gorm:"size:200;not null" json:"name"`
	Code           string `gorm:"size:20" json:"code"`
	Industry       string `gorm:"size:100" json:"industry"`
	IsRetainer     bool   `gorm:"default:false" json:"isRetainer"`
	RetainerHours  int    `json:"retainerHours"`
	Notes          string `gorm:"type:text" json:"notes"`
	LinkedIn       string `gorm:"size:255" json:"linkedIn"`
	CreatedByID    string `gorm:"index;size:26" json:"createdById"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
