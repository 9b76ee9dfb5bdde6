package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"spokestack/internal/accesscontrol"
	"spokestack/internal/audit"
	"spokestack/internal/auth"
	"spokestack/internal/obs"
)

const evaluatorKey = "accessControl"

// Require guards a route with an access control evaluation. On allow the
// per-request evaluator is stored in the Gin context so the handler reuses
// the already-loaded rule set for filters and redaction.
func Require(db *gorm.DB, resource accesscontrol.Resource, action accesscontrol.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, ok := auth.FromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		ac := accesscontrol.New(db, subject(cl))
		decision, err := ac.Evaluate(c.Request.Context(), resource, action)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		obs.RecordAccessDecision(string(resource), string(action), string(decision.Effect))

		if !decision.Allowed {
			meta := map[string]any{"resource": resource, "action": action}
			if decision.Rule != nil {
				meta["policyId"] = decision.Rule.PolicyID
				meta["policyName"] = decision.Rule.PolicyName
			}
			audit.Record(db, audit.Entry{
				OrganizationID: cl.OrganizationID,
				UserID:         cl.UserID,
				Action:         "access.denied",
				ResourceType:   string(resource),
				RequestID:      RequestIDFrom(c),
				IP:             c.ClientIP(),
				UserAgent:      c.Request.UserAgent(),
				Metadata:       meta,
			})
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":    "forbidden",
				"resource": resource,
				"action":   action,
			})
			return
		}

		c.Set(evaluatorKey, ac)
		c.Next()
	}
}

func subject(cl *auth.Claims) accesscontrol.Context {
	return accesscontrol.Context{
		OrganizationID:  cl.OrganizationID,
		UserID:          cl.UserID,
		PermissionLevel: cl.PermissionLevel,
	}
}

// evaluatorFrom returns the evaluator stored by Require, or builds a fresh
// one when the route was not guarded.
func evaluatorFrom(c *gin.Context, db *gorm.DB, cl *auth.Claims) *accesscontrol.AccessControl {
	if v, ok := c.Get(evaluatorKey); ok {
		if ac, ok := v.(*accesscontrol.AccessControl); ok {
			return ac
		}
	}
	return accesscontrol.New(db, subject(cl))
}

// redactAll applies field-level redaction to a list response.
func redactAll[T any](c *gin.Context, ac *accesscontrol.AccessControl, resource accesscontrol.Resource, action accesscontrol.Action, items []T) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		record, err := accesscontrol.RecordOf(item)
		if err != nil {
			return nil, err
		}
		redacted, err := ac.FilterFields(c.Request.Context(), resource, action, record)
		if err != nil {
			return nil, err
		}
		out = append(out, redacted)
	}
	return out, nil
}

func redactOne(c *gin.Context, ac *accesscontrol.AccessControl, resource accesscontrol.Resource, action accesscontrol.Action, item any) (map[string]any, error) {
	record, err := accesscontrol.RecordOf(item)
	if err != nil {
		return nil, err
	}
	return ac.FilterFields(c.Request.Context(), resource, action, record)
}
