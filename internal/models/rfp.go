package models

import "time"

type RFP struct {
	ID             string     `gorm:"primaryKey;size:26" json:"id"`
	OrganizationID string     `gorm:"index;size:26;not null" json:"organizationId"`
	Title          string     `gorm:"size:255;not null" json:"title"`
	ClientName     string     `gorm:"size:200" json:"clientName"`
	Status         string     `gorm:"size:50;default:OPEN" json:"status"` // OPEN, SUBMITTED, WON, LOST
	Value          float64    `json:"value"`
	DueDate        *time.Time `json:"dueDate"`
	AssigneeID     *string    `gorm:"index;size:26" json:"assigneeId"`
	CreatedByID    string     `gorm:"index;size:26" json:"createdById"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}
