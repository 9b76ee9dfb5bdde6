package accesscontrol

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"spokestack/internal/models"
)

type fakeStore struct {
	rules     []PolicyRule
	loads     int
	teamIDs   []string
	clientIDs []string
}

func (f *fakeStore) ApplicableRules(ctx context.Context, orgID, userID string, level models.PermissionLevel) ([]PolicyRule, error) {
	f.loads++
	return f.rules, nil
}

func (f *fakeStore) TeamMemberIDs(ctx context.Context, orgID, userID string) ([]string, error) {
	return f.teamIDs, nil
}

func (f *fakeStore) AssignedClientIDs(ctx context.Context, orgID, userID string) ([]string, error) {
	return f.clientIDs, nil
}

func subjectCtx(level models.PermissionLevel) Context {
	return Context{OrganizationID: "org1", UserID: "u1", PermissionLevel: level}
}

func rule(policyID string, priority int, resource Resource, action Action, effect Effect, condition ConditionType) PolicyRule {
	return PolicyRule{
		ID:             "rule-" + policyID,
		PolicyID:       policyID,
		PolicyName:     "policy " + policyID,
		PolicyPriority: priority,
		Resource:       resource,
		Action:         action,
		Effect:         effect,
		ConditionType:  condition,
	}
}

func TestDefaultDecisionWithoutRules(t *testing.T) {
	tests := []struct {
		level   models.PermissionLevel
		allowed bool
	}{
		{models.LevelAdmin, true},
		{models.LevelLeadership, true},
		{models.LevelTeamLead, false},
		{models.LevelStaff, false},
		{models.LevelFreelancer, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			ac := NewWithStore(&fakeStore{}, subjectCtx(tt.level))
			decision, err := ac.Evaluate(context.Background(), ResourceClients, ActionList)
			require.NoError(t, err)
			require.Equal(t, tt.allowed, decision.Allowed)
			if tt.allowed {
				require.Equal(t, EffectAllow, decision.Effect)
			} else {
				require.Equal(t, EffectDeny, decision.Effect)
			}
			require.Nil(t, decision.Rule)
		})
	}
}

func TestAnyDenyWinsRegardlessOfPriority(t *testing.T) {
	// The higher-priority ALLOW comes first in scan order, but the DENY from
	// the lower-priority policy still wins: any deny in the matched set
	// denies.
	store := &fakeStore{rules: []PolicyRule{
		rule("p1", 100, ResourceBriefs, ActionView, EffectAllow, ConditionAll),
		rule("p2", 50, ResourceBriefs, ActionView, EffectDeny, ConditionAll),
	}}
	ac := NewWithStore(store, subjectCtx(models.LevelStaff))

	decision, err := ac.Evaluate(context.Background(), ResourceBriefs, ActionView)
	require.NoError(t, err)
	require.False(t, decision.Allowed)
	require.Equal(t, EffectDeny, decision.Effect)
	require.NotNil(t, decision.Rule)
	require.Equal(t, "p2", decision.Rule.PolicyID)
	require.Equal(t, "policy p2", decision.Rule.PolicyName)
}

func TestMatchingIsExactOnResourceAndAction(t *testing.T) {
	// A DENY on a different action must not leak into the evaluated pair.
	store := &fakeStore{rules: []PolicyRule{
		rule("p1", 100, ResourceBriefs, ActionDelete, EffectDeny, ConditionAll),
		rule("p2", 50, ResourceBriefs, ActionView, EffectAllow, ConditionAll),
	}}
	ac := NewWithStore(store, subjectCtx(models.LevelStaff))

	decision, err := ac.Evaluate(context.Background(), ResourceBriefs, ActionView)
	require.NoError(t, err)
	require.True(t, decision.Allowed)
	require.Equal(t, "p2", decision.Rule.PolicyID)

	decision, err = ac.Evaluate(context.Background(), ResourceBriefs, ActionDelete)
	require.NoError(t, err)
	require.False(t, decision.Allowed)
}

func TestFirstAllowInPriorityOrderWins(t *testing.T) {
	first := rule("p1", 100, ResourceClients, ActionView, EffectAllow, ConditionAll)
	second := rule("p2", 50, ResourceClients, ActionView, EffectAllow, ConditionClient)
	second.DeniedFields = []string{"notes"}

	store := &fakeStore{rules: []PolicyRule{first, second}}
	ac := NewWithStore(store, subjectCtx(models.LevelFreelancer))

	decision, err := ac.Evaluate(context.Background(), ResourceClients, ActionView)
	require.NoError(t, err)
	require.True(t, decision.Allowed)
	require.Equal(t, "p1", decision.Rule.PolicyID)
	require.Empty(t, decision.DeniedFields)
}

func TestRulesLoadedOncePerInstance(t *testing.T) {
	store := &fakeStore{}
	ac := NewWithStore(store, subjectCtx(models.LevelAdmin))

	for i := 0; i < 3; i++ {
		_, err := ac.Evaluate(context.Background(), ResourceUsers, ActionList)
		require.NoError(t, err)
	}
	_, err := ac.BuildFilter(context.Background(), ResourceUsers, ActionList)
	require.NoError(t, err)

	require.Equal(t, 1, store.loads)
}

func TestBuildFilterOwn(t *testing.T) {
	store := &fakeStore{rules: []PolicyRule{
		rule("p1", 100, ResourceBriefs, ActionView, EffectAllow, ConditionOwn),
	}}
	ac := NewWithStore(store, subjectCtx(models.LevelStaff))

	filter, err := ac.BuildFilter(context.Background(), ResourceBriefs, ActionView)
	require.NoError(t, err)
	require.Equal(t, Equals{Column: "created_by_id", Value: "u1"}, filter)
}

func TestBuildFilterAssigned(t *testing.T) {
	store := &fakeStore{rules: []PolicyRule{
		rule("p1", 100, ResourceBriefs, ActionList, EffectAllow, ConditionAssigned),
	}}
	ac := NewWithStore(store, subjectCtx(models.LevelFreelancer))

	filter, err := ac.BuildFilter(context.Background(), ResourceBriefs, ActionList)
	require.NoError(t, err)
	require.Equal(t, Equals{Column: "assignee_id", Value: "u1"}, filter)
}

func TestBuildFilterWithoutAllowRuleIsSentinel(t *testing.T) {
	store := &fakeStore{rules: []PolicyRule{
		rule("p1", 100, ResourceBriefs, ActionView, EffectDeny, ConditionAll),
	}}
	ac := NewWithStore(store, subjectCtx(models.LevelStaff))

	filter, err := ac.BuildFilter(context.Background(), ResourceBriefs, ActionView)
	require.NoError(t, err)
	require.Equal(t, Equals{Column: "id", Value: "__ACCESS_DENIED__"}, filter)
	require.Equal(t, MatchNone(), filter)
}

func TestBuildFilterTeam(t *testing.T) {
	store := &fakeStore{
		rules: []PolicyRule{
			rule("p1", 80, ResourceBriefs, ActionList, EffectAllow, ConditionTeam),
		},
		teamIDs: []string{"u1", "u2", "u3"},
	}
	ac := NewWithStore(store, subjectCtx(models.LevelTeamLead))

	filter, err := ac.BuildFilter(context.Background(), ResourceBriefs, ActionList)
	require.NoError(t, err)
	require.Equal(t, AnyOf{Filters: []Filter{
		In{Column: "created_by_id", Values: []any{"u1", "u2", "u3"}},
		In{Column: "assignee_id", Values: []any{"u1", "u2", "u3"}},
	}}, filter)
}

func TestBuildFilterTeamForNonLeadIsJustSelf(t *testing.T) {
	// A regular member is nobody's team lead, so the member list collapses
	// to the user themselves.
	store := &fakeStore{
		rules: []PolicyRule{
			rule("p1", 80, ResourceBriefs, ActionList, EffectAllow, ConditionTeam),
		},
		teamIDs: []string{"u1"},
	}
	ac := NewWithStore(store, subjectCtx(models.LevelStaff))

	filter, err := ac.BuildFilter(context.Background(), ResourceBriefs, ActionList)
	require.NoError(t, err)
	require.Equal(t, AnyOf{Filters: []Filter{
		In{Column: "created_by_id", Values: []any{"u1"}},
		In{Column: "assignee_id", Values: []any{"u1"}},
	}}, filter)
}

func TestBuildFilterClient(t *testing.T) {
	store := &fakeStore{
		rules: []PolicyRule{
			rule("p1", 60, ResourceClients, ActionList, EffectAllow, ConditionClient),
		},
		clientIDs: []string{"c1", "c2"},
	}
	ac := NewWithStore(store, subjectCtx(models.LevelFreelancer))

	filter, err := ac.BuildFilter(context.Background(), ResourceClients, ActionList)
	require.NoError(t, err)
	require.Equal(t, In{Column: "client_id", Values: []any{"c1", "c2"}}, filter)
}

func TestBuildFilterCustomRoundTrip(t *testing.T) {
	inRule := rule("p1", 100, ResourceRFPs, ActionList, EffectAllow, ConditionCustom)
	inRule.ConditionParams = datatypes.JSON(`{"field":"status","operator":"in","value":["WON","LOST"]}`)

	eqRule := rule("p2", 90, ResourceRFPs, ActionView, EffectAllow, ConditionCustom)
	eqRule.ConditionParams = datatypes.JSON(`{"field":"createdById","operator":"eq","value":"$userId"}`)

	store := &fakeStore{rules: []PolicyRule{inRule, eqRule}}
	ac := NewWithStore(store, subjectCtx(models.LevelStaff))

	filter, err := ac.BuildFilter(context.Background(), ResourceRFPs, ActionList)
	require.NoError(t, err)
	require.Equal(t, In{Column: "status", Values: []any{"WON", "LOST"}}, filter)

	filter, err = ac.BuildFilter(context.Background(), ResourceRFPs, ActionView)
	require.NoError(t, err)
	require.Equal(t, Equals{Column: "created_by_id", Value: "u1"}, filter)
}

func TestFilterFields(t *testing.T) {
	record := map[string]any{"a": 1, "b": 2, "c": 3}

	t.Run("denied list drops fields", func(t *testing.T) {
		r := rule("p1", 100, ResourceClients, ActionView, EffectAllow, ConditionAll)
		r.DeniedFields = []string{"b"}
		ac := NewWithStore(&fakeStore{rules: []PolicyRule{r}}, subjectCtx(models.LevelStaff))

		out, err := ac.FilterFields(context.Background(), ResourceClients, ActionView, record)
		require.NoError(t, err)
		require.Equal(t, map[string]any{"a": 1, "c": 3}, out)
	})

	t.Run("denied beats allowed on conflict", func(t *testing.T) {
		r := rule("p1", 100, ResourceClients, ActionView, EffectAllow, ConditionAll)
		r.AllowedFields = []string{"a"}
		r.DeniedFields = []string{"a"}
		ac := NewWithStore(&fakeStore{rules: []PolicyRule{r}}, subjectCtx(models.LevelStaff))

		out, err := ac.FilterFields(context.Background(), ResourceClients, ActionView, record)
		require.NoError(t, err)
		require.Empty(t, out)
	})

	t.Run("no field lists passes record through", func(t *testing.T) {
		r := rule("p1", 100, ResourceClients, ActionView, EffectAllow, ConditionAll)
		ac := NewWithStore(&fakeStore{rules: []PolicyRule{r}}, subjectCtx(models.LevelStaff))

		out, err := ac.FilterFields(context.Background(), ResourceClients, ActionView, record)
		require.NoError(t, err)
		require.Equal(t, record, out)
	})

	t.Run("denied access yields empty record", func(t *testing.T) {
		ac := NewWithStore(&fakeStore{}, subjectCtx(models.LevelStaff))

		out, err := ac.FilterFields(context.Background(), ResourceClients, ActionView, record)
		require.NoError(t, err)
		require.Empty(t, out)
	})
}

func TestCanMirrorsEvaluate(t *testing.T) {
	store := &fakeStore{rules: []PolicyRule{
		rule("p1", 100, ResourceClients, ActionList, EffectAllow, ConditionAll),
	}}
	ac := NewWithStore(store, subjectCtx(models.LevelStaff))

	ok, err := ac.Can(context.Background(), ResourceClients, ActionList)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = ac.Can(context.Background(), ResourceClients, ActionDelete)
	require.NoError(t, err)
	require.False(t, ok)
}
