package accesscontrol

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"spokestack/internal/ids"
	"spokestack/internal/models"
)

type seedRule struct {
	Resource     Resource
	Action       Action
	Effect       Effect
	Condition    ConditionType
	DeniedFields []string
}

type seedPolicy struct {
	Name        string
	Description string
	Level       models.PermissionLevel
	Priority    int
	Rules       []seedRule
}

// defaultPolicies is the literal rule content every new organization starts
// with. Admins edit from here through the policy admin API.
var defaultPolicies = []seedPolicy{
	{
		Name:        "Admin Full Access",
		Description: "Full access to all resources",
		Level:       models.LevelAdmin,
		Priority:    100,
		Rules: []seedRule{
			{ResourceUsers, ActionList, EffectAllow, ConditionAll, nil},
			{ResourceUsers, ActionView, EffectAllow, ConditionAll, nil},
			{ResourceUsers, ActionCreate, EffectAllow, ConditionAll, nil},
			{ResourceUsers, ActionUpdate, EffectAllow, ConditionAll, nil},
			{ResourceUsers, ActionDelete, EffectAllow, ConditionAll, nil},
			{ResourceClients, ActionList, EffectAllow, ConditionAll, nil},
			{ResourceClients, ActionView, EffectAllow, ConditionAll, nil},
			{ResourceClients, ActionCreate, EffectAllow, ConditionAll, nil},
			{ResourceClients, ActionUpdate, EffectAllow, ConditionAll, nil},
			{ResourceClients, ActionDelete, EffectAllow, ConditionAll, nil},
			{ResourceProjects, ActionList, EffectAllow, ConditionAll, nil},
			{ResourceProjects, ActionView, EffectAllow, ConditionAll, nil},
			{ResourceProjects, ActionCreate, EffectAllow, ConditionAll, nil},
			{ResourceProjects, ActionUpdate, EffectAllow, ConditionAll, nil},
			{ResourceProjects, ActionDelete, EffectAllow, ConditionAll, nil},
			{ResourceBriefs, ActionList, EffectAllow, ConditionAll, nil},
			{ResourceBriefs, ActionView, EffectAllow, ConditionAll, nil},
			{ResourceBriefs, ActionCreate, EffectAllow, ConditionAll, nil},
			{ResourceBriefs, ActionUpdate, EffectAllow, ConditionAll, nil},
			{ResourceBriefs, ActionDelete, EffectAllow, ConditionAll, nil},
			{ResourceBriefs, ActionAssign, EffectAllow, ConditionAll, nil},
		},
	},
	{
		Name:        "Leadership Access",
		Description: "Full view access, limited write access",
		Level:       models.LevelLeadership,
		Priority:    90,
		Rules: []seedRule{
			{ResourceUsers, ActionList, EffectAllow, ConditionAll, nil},
			{ResourceUsers, ActionView, EffectAllow, ConditionAll, nil},
			{ResourceClients, ActionList, EffectAllow, ConditionAll, nil},
			{ResourceClients, ActionView, EffectAllow, ConditionAll, nil},
			{ResourceClients, ActionCreate, EffectAllow, ConditionAll, nil},
			{ResourceClients, ActionUpdate, EffectAllow, ConditionAll, nil},
			{ResourceProjects, ActionList, EffectAllow, ConditionAll, nil},
			{ResourceProjects, ActionView, EffectAllow, ConditionAll, nil},
			{ResourceProjects, ActionCreate, EffectAllow, ConditionAll, nil},
			{ResourceProjects, ActionUpdate, EffectAllow, ConditionAll, nil},
			{ResourceBriefs, ActionList, EffectAllow, ConditionAll, nil},
			{ResourceBriefs, ActionView, EffectAllow, ConditionAll, nil},
			{ResourceBriefs, ActionCreate, EffectAllow, ConditionAll, nil},
			{ResourceBriefs, ActionUpdate, EffectAllow, ConditionAll, nil},
			{ResourceBriefs, ActionAssign, EffectAllow, ConditionAll, nil},
		},
	},
	{
		Name:        "Team Lead Access",
		Description: "Team-scoped access with assignment capabilities",
		Level:       models.LevelTeamLead,
		Priority:    80,
		Rules: []seedRule{
			{ResourceUsers, ActionList, EffectAllow, ConditionTeam, nil},
			{ResourceUsers, ActionView, EffectAllow, ConditionTeam, nil},
			{ResourceClients, ActionList, EffectAllow, ConditionAll, nil},
			{ResourceClients, ActionView, EffectAllow, ConditionAll, nil},
			{ResourceProjects, ActionList, EffectAllow, ConditionAll, nil},
			{ResourceProjects, ActionView, EffectAllow, ConditionAll, nil},
			{ResourceProjects, ActionCreate, EffectAllow, ConditionAll, nil},
			{ResourceProjects, ActionUpdate, EffectAllow, ConditionAll, nil},
			{ResourceBriefs, ActionList, EffectAllow, ConditionAll, nil},
			{ResourceBriefs, ActionView, EffectAllow, ConditionAll, nil},
			{ResourceBriefs, ActionCreate, EffectAllow, ConditionAll, nil},
			{ResourceBriefs, ActionUpdate, EffectAllow, ConditionAll, nil},
			{ResourceBriefs, ActionAssign, EffectAllow, ConditionTeam, nil},
		},
	},
	{
		Name:        "Staff Access",
		Description: "View all, edit assigned",
		Level:       models.LevelStaff,
		Priority:    70,
		Rules: []seedRule{
			{ResourceClients, ActionList, EffectAllow, ConditionAll, nil},
			{ResourceClients, ActionView, EffectAllow, ConditionAll, nil},
			{ResourceProjects, ActionList, EffectAllow, ConditionAll, nil},
			{ResourceProjects, ActionView, EffectAllow, ConditionAll, nil},
			{ResourceBriefs, ActionList, EffectAllow, ConditionAll, nil},
			{ResourceBriefs, ActionView, EffectAllow, ConditionAll, nil},
			{ResourceBriefs, ActionUpdate, EffectAllow, ConditionAssigned, nil},
		},
	},
	{
		Name:        "Freelancer Access",
		Description: "Access only to assigned work and related clients",
		Level:       models.LevelFreelancer,
		Priority:    60,
		Rules: []seedRule{
			// Only see clients they have briefs for
			{ResourceClients, ActionList, EffectAllow, ConditionClient, nil},
			{ResourceClients, ActionView, EffectAllow, ConditionClient, nil},
			// Only see projects and briefs they are assigned to
			{ResourceProjects, ActionList, EffectAllow, ConditionAssigned, nil},
			{ResourceProjects, ActionView, EffectAllow, ConditionAssigned, nil},
			{ResourceBriefs, ActionList, EffectAllow, ConditionAssigned, nil},
			{ResourceBriefs, ActionView, EffectAllow, ConditionAssigned, nil},
			{ResourceBriefs, ActionUpdate, EffectAllow, ConditionAssigned, nil},
			// Hide sensitive client data
			{ResourceClients, ActionView, EffectAllow, ConditionClient, []string{"retainerHours", "notes", "linkedIn"}},
		},
	},
}

// CreateDefaultPolicies provisions the five built-in policies for a new
// organization. Called once when the organization is set up; it does not
// guard against duplicate invocation.
func CreateDefaultPolicies(db *gorm.DB, organizationID, createdByID string) error {
	for _, sp := range defaultPolicies {
		policy := models.AccessPolicy{
			ID:             ids.New(),
			OrganizationID: organizationID,
			Name:           sp.Name,
			Description:    sp.Description,
			DefaultLevel:   sp.Level,
			Priority:       sp.Priority,
			IsActive:       true,
			CreatedByID:    createdByID,
		}
		policy.Rules = make([]models.AccessRule, len(sp.Rules))
		for i, sr := range sp.Rules {
			policy.Rules[i] = models.AccessRule{
				ID:            ids.New(),
				Resource:      string(sr.Resource),
				Action:        string(sr.Action),
				Effect:        string(sr.Effect),
				ConditionType: string(sr.Condition),
				DeniedFields:  datatypes.JSONSlice[string](sr.DeniedFields),
				IsActive:      true,
			}
		}
		if err := db.Create(&policy).Error; err != nil {
			return err
		}
	}
	return nil
}
