package models

import "time"

type Organization struct {
	ID        string    `gorm:"primaryKey;size:26" json:"id"`
	Name      string    `gorm:"size:200;not null" json:"name"`
	Slug      string    `gorm:"size:200;uniqueIndex;not null" json:"slug"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Relations
	Users    []User         `gorm:"foreignKey:OrganizationID" json:"-"`
	Clients  []Client       `gorm:"foreignKey:OrganizationID" json:"-"`
	Policies []AccessPolicy `gorm:"foreignKey:OrganizationID" json:"-"`
}
