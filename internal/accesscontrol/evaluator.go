package accesscontrol

import (
	"context"
	"encoding/json"
	"slices"

	"gorm.io/gorm"

	"spokestack/internal/models"
)

// AccessControl evaluates policy rules for one subject. Instances are built
// per request; the resolved rule list is loaded once and reused across calls
// on the same instance.
type AccessControl struct {
	store  Store
	ctx    Context
	rules  []PolicyRule
	loaded bool
}

// New builds an evaluator over the GORM-backed store.
func New(db *gorm.DB, ctx Context) *AccessControl {
	return &AccessControl{store: NewStore(db), ctx: ctx}
}

// NewWithStore builds an evaluator over a custom store.
func NewWithStore(store Store, ctx Context) *AccessControl {
	return &AccessControl{store: store, ctx: ctx}
}

func (a *AccessControl) loadRules(ctx context.Context) ([]PolicyRule, error) {
	if a.loaded {
		return a.rules, nil
	}
	rules, err := a.store.ApplicableRules(ctx, a.ctx.OrganizationID, a.ctx.UserID, a.ctx.PermissionLevel)
	if err != nil {
		return nil, err
	}
	a.rules = rules
	a.loaded = true
	return rules, nil
}

// Can reports whether the user may perform action on resource.
func (a *AccessControl) Can(ctx context.Context, resource Resource, action Action) (bool, error) {
	decision, err := a.Evaluate(ctx, resource, action)
	if err != nil {
		return false, err
	}
	return decision.Allowed, nil
}

// Evaluate resolves the full decision for (resource, action).
//
// With no matching rules, ADMIN and LEADERSHIP default to allow and every
// other level to deny. Otherwise any DENY anywhere in the priority-ordered
// matching set wins; failing that, the first ALLOW decides.
func (a *AccessControl) Evaluate(ctx context.Context, resource Resource, action Action) (Decision, error) {
	rules, err := a.loadRules(ctx)
	if err != nil {
		return Decision{}, err
	}

	var matching []PolicyRule
	for _, r := range rules {
		if r.Resource == resource && r.Action == action {
			matching = append(matching, r)
		}
	}

	if len(matching) == 0 {
		defaultAllow := a.ctx.PermissionLevel == models.LevelAdmin ||
			a.ctx.PermissionLevel == models.LevelLeadership
		if defaultAllow {
			return Decision{Allowed: true, Effect: EffectAllow}, nil
		}
		return Decision{Allowed: false, Effect: EffectDeny}, nil
	}

	for _, r := range matching {
		if r.Effect == EffectDeny {
			return Decision{
				Allowed: false,
				Effect:  EffectDeny,
				Rule:    ruleRef(r),
			}, nil
		}
	}

	for _, r := range matching {
		if r.Effect == EffectAllow {
			return Decision{
				Allowed:       true,
				Effect:        EffectAllow,
				Rule:          ruleRef(r),
				AllowedFields: r.AllowedFields,
				DeniedFields:  r.DeniedFields,
			}, nil
		}
	}

	// Matching rules carried neither effect; fail safe.
	return Decision{Allowed: false, Effect: EffectDeny}, nil
}

func ruleRef(r PolicyRule) *RuleRef {
	return &RuleRef{
		ID:            r.ID,
		PolicyID:      r.PolicyID,
		PolicyName:    r.PolicyName,
		ConditionType: r.ConditionType,
	}
}

// BuildFilter derives the record filter from the first matching ALLOW rule.
// Without one it returns the impossible sentinel filter: absence of an ALLOW
// rule means zero visibility, not "no restriction".
func (a *AccessControl) BuildFilter(ctx context.Context, resource Resource, action Action) (Filter, error) {
	rules, err := a.loadRules(ctx)
	if err != nil {
		return nil, err
	}

	var allowRule *PolicyRule
	for i, r := range rules {
		if r.Resource == resource && r.Action == action && r.Effect == EffectAllow {
			allowRule = &rules[i]
			break
		}
	}
	if allowRule == nil {
		return MatchNone(), nil
	}

	switch allowRule.ConditionType {
	case ConditionAll:
		return All{}, nil

	case ConditionOwn:
		return Equals{Column: "created_by_id", Value: a.ctx.UserID}, nil

	case ConditionAssigned:
		return Equals{Column: "assignee_id", Value: a.ctx.UserID}, nil

	case ConditionTeam:
		memberIDs, err := a.store.TeamMemberIDs(ctx, a.ctx.OrganizationID, a.ctx.UserID)
		if err != nil {
			return nil, err
		}
		return AnyOf{Filters: []Filter{
			StringsIn("created_by_id", memberIDs),
			StringsIn("assignee_id", memberIDs),
		}}, nil

	case ConditionClient:
		clientIDs, err := a.store.AssignedClientIDs(ctx, a.ctx.OrganizationID, a.ctx.UserID)
		if err != nil {
			return nil, err
		}
		return StringsIn("client_id", clientIDs), nil

	case ConditionCustom:
		return parseCustomCondition(allowRule.ConditionParams, a.ctx), nil

	default:
		return All{}, nil
	}
}

// FilterFields redacts a record per the winning rule's field lists. Denied
// access yields an empty record; a rule without field lists passes the record
// through unchanged. The denied list takes precedence over the allowed list.
func (a *AccessControl) FilterFields(ctx context.Context, resource Resource, action Action, record map[string]any) (map[string]any, error) {
	decision, err := a.Evaluate(ctx, resource, action)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return map[string]any{}, nil
	}
	if len(decision.AllowedFields) == 0 && len(decision.DeniedFields) == 0 {
		return record, nil
	}

	result := make(map[string]any, len(record))
	for key, value := range record {
		if slices.Contains(decision.DeniedFields, key) {
			continue
		}
		if len(decision.AllowedFields) > 0 && !slices.Contains(decision.AllowedFields, key) {
			continue
		}
		result[key] = value
	}
	return result, nil
}

// RecordOf flattens a model into the field map FilterFields operates on,
// keyed by the struct's JSON field names.
func RecordOf(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var record map[string]any
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return record, nil
}

// CheckResult is the combined outcome of an access check plus the record
// filter to merge into the caller's query.
type CheckResult struct {
	Allowed bool
	Filter  Filter
}

// CheckAccess is the request-handler convenience: evaluate, and on allow also
// build the record filter.
func CheckAccess(ctx context.Context, db *gorm.DB, subject Context, resource Resource, action Action) (CheckResult, error) {
	ac := New(db, subject)
	allowed, err := ac.Can(ctx, resource, action)
	if err != nil {
		return CheckResult{}, err
	}
	if !allowed {
		return CheckResult{}, nil
	}
	filter, err := ac.BuildFilter(ctx, resource, action)
	if err != nil {
		return CheckResult{}, err
	}
	return CheckResult{Allowed: true, Filter: filter}, nil
}
