package accesscontrol

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"spokestack/internal/models"
)

func TestDefaultPolicyTable(t *testing.T) {
	require.Len(t, defaultPolicies, 5)

	var levels []models.PermissionLevel
	var priorities []int
	for _, p := range defaultPolicies {
		levels = append(levels, p.Level)
		priorities = append(priorities, p.Priority)
		require.NotEmpty(t, p.Name)
		require.NotEmpty(t, p.Rules, "policy %q has no rules", p.Name)

		for _, r := range p.Rules {
			require.True(t, r.Resource.Valid(), "policy %q: resource %q", p.Name, r.Resource)
			require.True(t, r.Action.Valid(), "policy %q: action %q", p.Name, r.Action)
			require.True(t, r.Condition.Valid(), "policy %q: condition %q", p.Name, r.Condition)
			// The built-in set is allow-only; admins add denies themselves.
			require.Equal(t, EffectAllow, r.Effect)
		}
	}

	require.Equal(t, []models.PermissionLevel{
		models.LevelAdmin,
		models.LevelLeadership,
		models.LevelTeamLead,
		models.LevelStaff,
		models.LevelFreelancer,
	}, levels)
	require.Equal(t, []int{100, 90, 80, 70, 60}, priorities)
}

func TestDefaultPolicyScoping(t *testing.T) {
	byLevel := make(map[models.PermissionLevel]seedPolicy)
	for _, p := range defaultPolicies {
		byLevel[p.Level] = p
	}

	hasRule := func(p seedPolicy, resource Resource, action Action, condition ConditionType) bool {
		for _, r := range p.Rules {
			if r.Resource == resource && r.Action == action && r.Condition == condition {
				return true
			}
		}
		return false
	}

	admin := byLevel[models.LevelAdmin]
	require.Len(t, admin.Rules, 21)
	require.True(t, hasRule(admin, ResourceUsers, ActionDelete, ConditionAll))
	require.True(t, hasRule(admin, ResourceBriefs, ActionAssign, ConditionAll))

	leadership := byLevel[models.LevelLeadership]
	require.True(t, hasRule(leadership, ResourceClients, ActionUpdate, ConditionAll))
	require.False(t, hasRule(leadership, ResourceClients, ActionDelete, ConditionAll))
	require.False(t, hasRule(leadership, ResourceUsers, ActionCreate, ConditionAll))

	teamLead := byLevel[models.LevelTeamLead]
	require.True(t, hasRule(teamLead, ResourceUsers, ActionList, ConditionTeam))
	require.True(t, hasRule(teamLead, ResourceUsers, ActionView, ConditionTeam))
	require.True(t, hasRule(teamLead, ResourceBriefs, ActionAssign, ConditionTeam))

	staff := byLevel[models.LevelStaff]
	require.True(t, hasRule(staff, ResourceBriefs, ActionUpdate, ConditionAssigned))
	require.False(t, hasRule(staff, ResourceBriefs, ActionAssign, ConditionAll))
	require.False(t, hasRule(staff, ResourceUsers, ActionList, ConditionAll))

	freelancer := byLevel[models.LevelFreelancer]
	require.True(t, hasRule(freelancer, ResourceClients, ActionList, ConditionClient))
	require.True(t, hasRule(freelancer, ResourceBriefs, ActionView, ConditionAssigned))

	var deniedFields []string
	for _, r := range freelancer.Rules {
		if len(r.DeniedFields) > 0 {
			require.Equal(t, ResourceClients, r.Resource)
			require.Equal(t, ActionView, r.Action)
			deniedFields = r.DeniedFields
		}
	}
	require.Equal(t, []string{"retainerHours", "notes", "linkedIn"}, deniedFields)
}

func TestCreateDefaultPolicies(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	// One policy insert plus its rules insert per built-in policy.
	for _, p := range defaultPolicies {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO `access_policies`").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("INSERT INTO `access_rules`").
			WillReturnResult(sqlmock.NewResult(1, int64(len(p.Rules))))
		mock.ExpectCommit()
	}

	require.NoError(t, CreateDefaultPolicies(gdb, "org1", "admin1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
