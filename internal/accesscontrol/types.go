// Package accesscontrol implements configurable, policy-based access control.
//
// Policies are named, prioritized bundles of rules scoped to an organization.
// A user's effective rule set is the union of rules from every active policy
// whose default level matches the user's permission level plus every active
// policy with a non-expired assignment to that user, ordered by policy
// priority descending. For a given (resource, action) pair any matching DENY
// rule wins; otherwise the first matching ALLOW rule decides and contributes
// a record filter and optional field restrictions.
package accesscontrol

import (
	"gorm.io/datatypes"

	"spokestack/internal/models"
)

// Resource identifies a protected record collection.
type Resource string

const (
	ResourceUsers       Resource = "users"
	ResourceClients     Resource = "clients"
	ResourceProjects    Resource = "projects"
	ResourceBriefs      Resource = "briefs"
	ResourceTimeEntries Resource = "time_entries"
	ResourceRFPs        Resource = "rfps"
	ResourceFiles       Resource = "files"
)

func (r Resource) Valid() bool {
	switch r {
	case ResourceUsers, ResourceClients, ResourceProjects, ResourceBriefs,
		ResourceTimeEntries, ResourceRFPs, ResourceFiles:
		return true
	}
	return false
}

// Action is the operation being attempted on a resource.
type Action string

const (
	ActionList   Action = "LIST"
	ActionView   Action = "VIEW"
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
	ActionAssign Action = "ASSIGN"
)

func (a Action) Valid() bool {
	switch a {
	case ActionList, ActionView, ActionCreate, ActionUpdate, ActionDelete, ActionAssign:
		return true
	}
	return false
}

// Effect is the outcome of a matched rule.
type Effect string

const (
	EffectAllow Effect = "ALLOW"
	EffectDeny  Effect = "DENY"
)

func (e Effect) Valid() bool { return e == EffectAllow || e == EffectDeny }

// ConditionType is the record-scoping strategy used to derive a query filter
// from an ALLOW rule.
type ConditionType string

const (
	ConditionAll      ConditionType = "ALL"
	ConditionOwn      ConditionType = "OWN"
	ConditionAssigned ConditionType = "ASSIGNED"
	ConditionTeam     ConditionType = "TEAM"
	ConditionClient   ConditionType = "CLIENT"
	ConditionCustom   ConditionType = "CUSTOM"
)

func (c ConditionType) Valid() bool {
	switch c {
	case ConditionAll, ConditionOwn, ConditionAssigned, ConditionTeam, ConditionClient, ConditionCustom:
		return true
	}
	return false
}

// Context identifies the subject of an evaluation. One AccessControl instance
// is built per request from the authenticated user's claims.
type Context struct {
	OrganizationID  string
	UserID          string
	PermissionLevel models.PermissionLevel
}

// PolicyRule is a rule flattened out of its policy, annotated with the policy
// metadata needed for precedence and auditability.
type PolicyRule struct {
	ID              string
	PolicyID        string
	PolicyName      string
	PolicyPriority  int
	Resource        Resource
	Action          Action
	Effect          Effect
	ConditionType   ConditionType
	ConditionParams datatypes.JSON
	AllowedFields   []string
	DeniedFields    []string
}

// RuleRef carries the winning rule's identity on a Decision.
type RuleRef struct {
	ID            string        `json:"id"`
	PolicyID      string        `json:"policyId"`
	PolicyName    string        `json:"policyName"`
	ConditionType ConditionType `json:"conditionType"`
}

// Decision is the outcome of evaluating (resource, action) for a user.
// Denial is a value, never an error.
type Decision struct {
	Allowed       bool     `json:"allowed"`
	Effect        Effect   `json:"effect"`
	Rule          *RuleRef `json:"rule,omitempty"`
	AllowedFields []string `json:"allowedFields,omitempty"`
	DeniedFields  []string `json:"deniedFields,omitempty"`
}
