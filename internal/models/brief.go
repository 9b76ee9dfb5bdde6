package models

import "time"

type Brief struct {
	ID             string     `gorm:"primaryKey;size:26" json:"id"`
	OrganizationID string     `gorm:"index;size:26;not null" json:"organizationId"`
	ClientID       string     `gorm:"index;size:26;not null" json:"clientId"`
	ProjectID      *string    `gorm:"index;size:26" json:"projectId"`
	Title          string     `gorm:"size:255;not null" json:"title"`
	Description    string     `gorm:"type:text" json:"description"`
	Status         string     `gorm:"size:50;default:OPEN" json:"status"`
	DueDate        *time.Time `json:"dueDate"`
	AssigneeID     *string    `gorm:"index;size:26" json:"assigneeId"`
	CreatedByID    string     `gorm:"index;size:26" json:"createdById"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`

	Client  *Client  `gorm:"foreignKey:ClientID" json:"-"`
	Project *Project `gorm:"foreignKey:ProjectID" json:"-"`
}
