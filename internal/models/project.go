package models

import "time"

type Project struct {
	ID             string     `gorm:"primaryKey;size:26" json:"id"`
	OrganizationID string     `gorm:"index;size:26;not null" json:"organizationId"`
	ClientID       string     `gorm:"index;size:26;not null" json:"clientId"`
	Name           string     `gorm:"size:200;not null" json:"name"`
	Status         string     `gorm:"size:50;default:ACTIVE" json:"status"`
	AssigneeID     *string    `gorm:"index;size:26" json:"assigneeId"`
	CreatedByID    string     `gorm:"index;size:26" json:"createdById"`
	StartDate      *time.Time `json:"startDate"`
	EndDate        *time.Time `json:"endDate"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`

	Client *Client `gorm:"foreignKey:ClientID" json:"-"`
}
