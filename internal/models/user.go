package models

import "time"

// PermissionLevel is a user's default role. Policies with a matching
// defaultLevel apply to the user without an explicit assignment.
type PermissionLevel string

const (
	LevelAdmin      PermissionLevel = "ADMIN"
	LevelLeadership PermissionLevel = "LEADERSHIP"
	LevelTeamLead   PermissionLevel = "TEAM_LEAD"
	LevelStaff      PermissionLevel = "STAFF"
	LevelFreelancer PermissionLevel = "FREELANCER"
)

func (l PermissionLevel) Valid() bool {
	switch l {
	case LevelAdmin, LevelLeadership, LevelTeamLead, LevelStaff, LevelFreelancer:
		return true
	}
	return false
}

type User struct {
	ID              string          `gorm:"primaryKey;size:26" json:"id"`
	OrganizationID  string          `gorm:"index;size:26;not null" json:"organizationId"`
	Email           string          `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name            string          `gorm:"size:200" json:"name"`
	Role            string          `gorm:"size:100" json:"role"` // job title, e.g. "Account Director"
	Department      string          `gorm:"size:100" json:"department"`
	PermissionLevel PermissionLevel `gorm:"size:20;index;default:STAFF" json:"permissionLevel"`
	TeamLeadID      *string         `gorm:"index;size:26" json:"teamLeadId"`
	PasswordHash    string          `gorm:"size:255" json:"-"`
	IsActive        bool            `gorm:"default:true" json:"isActive"`
	IsFreelancer    bool            `gorm:"default:false" json:"isFreelancer"`
	ContractEnd     *time.Time      `json:"contractEnd"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`

	// Relations
	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"-"`
	TeamLead     *User         `gorm:"foreignKey:TeamLeadID" json:"-"`
}
