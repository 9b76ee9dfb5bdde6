package models

import (
	"time"

	"gorm.io/datatypes"
)

// AccessPolicy is a named, organization-scoped bundle of access rules.
// Policies apply to users either through defaultLevel matching or through
// an explicit, optionally time-bounded assignment. Higher priority policies
// are evaluated first.
type AccessPolicy struct {
	ID             string          `gorm:"primaryKey;size:26" json:"id"`
	OrganizationID string          `gorm:"index;size:26;not null" json:"organizationId"`
	Name           string          `gorm:"size:200;not null" json:"name"`
	Description    string          `gorm:"size:500" json:"description"`
	DefaultLevel   PermissionLevel `gorm:"size:20;index" json:"defaultLevel"`
	Priority       int             `gorm:"index;default:0" json:"priority"`
	IsActive       bool            `gorm:"default:true" json:"isActive"`
	CreatedByID    string          `gorm:"size:26" json:"createdById"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`

	// Relations
	Rules       []AccessRule       `gorm:"foreignKey:PolicyID" json:"rules,omitempty"`
	Assignments []PolicyAssignment `gorm:"foreignKey:PolicyID" json:"assignments,omitempty"`
}

// AccessRule is a single (resource, action, effect, condition) tuple within
// a policy. Resource/action/effect/condition values are validated against the
// closed enums in internal/accesscontrol at authoring time.
type AccessRule struct {
	ID              string                      `gorm:"primaryKey;size:26" json:"id"`
	PolicyID        string                      `gorm:"index;size:26;not null" json:"policyId"`
	Resource        string                      `gorm:"size:50;not null" json:"resource"`
	Action          string                      `gorm:"size:20;not null" json:"action"`
	Effect          string                      `gorm:"size:10;not null" json:"effect"`
	ConditionType   string                      `gorm:"size:20;default:ALL" json:"conditionType"`
	ConditionParams datatypes.JSON              `gorm:"type:json" json:"conditionParams"`
	AllowedFields   datatypes.JSONSlice[string] `gorm:"type:json" json:"allowedFields"`
	DeniedFields    datatypes.JSONSlice[string] `gorm:"type:json" json:"deniedFields"`
	IsActive        bool                        `gorm:"default:true" json:"isActive"`
	CreatedAt       time.Time                   `json:"createdAt"`
	UpdatedAt       time.Time                   `json:"updatedAt"`
}

// PolicyAssignment grants a policy to a specific user, overriding
// default-level matching. A nil ExpiresAt never expires.
type PolicyAssignment struct {
	ID          string     `gorm:"primaryKey;size:26" json:"id"`
	PolicyID    string     `gorm:"index;size:26;not null" json:"policyId"`
	UserID      string     `gorm:"index;size:26;not null" json:"userId"`
	ExpiresAt   *time.Time `gorm:"index" json:"expiresAt"`
	CreatedByID string     `gorm:"size:26" json:"createdById"`
	CreatedAt   time.Time  `json:"createdAt"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}
