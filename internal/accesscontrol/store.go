package accesscontrol

import (
	"context"
	"time"

	"gorm.io/gorm"

	"spokestack/internal/models"
)

// Store loads the policy data an evaluation needs. The GORM implementation
// is the production path; tests substitute an in-memory one.
type Store interface {
	// ApplicableRules returns the flattened rules of every active policy that
	// applies to the user, ordered by policy priority descending. All rules of
	// a higher-priority policy precede all rules of a lower-priority policy.
	ApplicableRules(ctx context.Context, orgID, userID string, level models.PermissionLevel) ([]PolicyRule, error)

	// TeamMemberIDs returns the user plus all active users whose team lead is
	// this user. A user who is not anyone's team lead gets just themselves.
	TeamMemberIDs(ctx context.Context, orgID, userID string) ([]string, error)

	// AssignedClientIDs returns the distinct client ids of briefs assigned to
	// the user.
	AssignedClientIDs(ctx context.Context, orgID, userID string) ([]string, error)
}

type gormStore struct {
	db *gorm.DB
}

// NewStore returns the GORM-backed rule store.
func NewStore(db *gorm.DB) Store { return gormStore{db: db} }

func (s gormStore) ApplicableRules(ctx context.Context, orgID, userID string, level models.PermissionLevel) ([]PolicyRule, error) {
	assigned := s.db.Model(&models.PolicyAssignment{}).
		Select("policy_id").
		Where("user_id = ? AND (expires_at IS NULL OR expires_at > ?)", userID, time.Now())

	var policies []models.AccessPolicy
	err := s.db.WithContext(ctx).
		Where("organization_id = ? AND is_active = ?", orgID, true).
		Where(s.db.Where("default_level = ?", level).Or("id IN (?)", assigned)).
		Order("priority DESC").
		Find(&policies).Error
	if err != nil {
		return nil, err
	}
	if len(policies) == 0 {
		return nil, nil
	}

	policyIDs := make([]string, len(policies))
	for i, p := range policies {
		policyIDs[i] = p.ID
	}

	var rules []models.AccessRule
	err = s.db.WithContext(ctx).
		Where("policy_id IN ? AND is_active = ?", policyIDs, true).
		Find(&rules).Error
	if err != nil {
		return nil, err
	}

	byPolicy := make(map[string][]models.AccessRule, len(policies))
	for _, r := range rules {
		byPolicy[r.PolicyID] = append(byPolicy[r.PolicyID], r)
	}

	flat := make([]PolicyRule, 0, len(rules))
	for _, p := range policies {
		for _, r := range byPolicy[p.ID] {
			flat = append(flat, PolicyRule{
				ID:              r.ID,
				PolicyID:        p.ID,
				PolicyName:      p.Name,
				PolicyPriority:  p.Priority,
				Resource:        Resource(r.Resource),
				Action:          Action(r.Action),
				Effect:          Effect(r.Effect),
				ConditionType:   ConditionType(r.ConditionType),
				ConditionParams: r.ConditionParams,
				AllowedFields:   []string(r.AllowedFields),
				DeniedFields:    []string(r.DeniedFields),
			})
		}
	}
	return flat, nil
}

func (s gormStore) TeamMemberIDs(ctx context.Context, orgID, userID string) ([]string, error) {
	var memberIDs []string
	err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("organization_id = ? AND team_lead_id = ? AND is_active = ?", orgID, userID, true).
		Pluck("id", &memberIDs).Error
	if err != nil {
		return nil, err
	}
	return append([]string{userID}, memberIDs...), nil
}

func (s gormStore) AssignedClientIDs(ctx context.Context, orgID, userID string) ([]string, error) {
	var clientIDs []string
	err := s.db.WithContext(ctx).
		Model(&models.Brief{}).
		Distinct().
		Where("organization_id = ? AND assignee_id = ?", orgID, userID).
		Pluck("client_id", &clientIDs).Error
	if err != nil {
		return nil, err
	}
	return clientIDs, nil
}
