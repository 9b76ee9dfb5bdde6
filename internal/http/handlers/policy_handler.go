package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"spokestack/internal/accesscontrol"
	"spokestack/internal/auth"
	"spokestack/internal/ids"
	"spokestack/internal/models"
)

// RequireAdmin restricts policy administration to ADMIN users.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, ok := auth.FromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if cl.PermissionLevel != models.LevelAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

func ListPolicies(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, _ := auth.FromContext(c)

		var policies []models.AccessPolicy
		err := db.Preload("Rules").Preload("Assignments").
			Where("organization_id = ?", cl.OrganizationID).
			Order("priority DESC").
			Find(&policies).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"policies": policies})
	}
}

func CreatePolicy(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, _ := auth.FromContext(c)

		var input struct {
			Name         string `json:"name" binding:"required"`
			Description  string `json:"description"`
			DefaultLevel string `json:"defaultLevel"`
			Priority     int    `json:"priority"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		level := models.PermissionLevel(input.DefaultLevel)
		if input.DefaultLevel != "" && !level.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid default level"})
			return
		}

		policy := models.AccessPolicy{
			ID:             ids.New(),
			OrganizationID: cl.OrganizationID,
			Name:           input.Name,
			Description:    input.Description,
			DefaultLevel:   level,
			Priority:       input.Priority,
			IsActive:       true,
			CreatedByID:    cl.UserID,
		}
		if err := db.Create(&policy).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		recordAudit(c, db, cl, "policies.create", "access_policy", policy.ID)
		c.JSON(http.StatusCreated, gin.H{"policy": policy})
	}
}

func UpdatePolicy(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, _ := auth.FromContext(c)

		var input struct {
			Name        *string `json:"name"`
			Description *string `json:"description"`
			Priority    *int    `json:"priority"`
			IsActive    *bool   `json:"isActive"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		updates := map[string]any{}
		setIf(updates, "name", input.Name)
		setIf(updates, "description", input.Description)
		setIf(updates, "priority", input.Priority)
		setIf(updates, "is_active", input.IsActive)
		if len(updates) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
			return
		}

		res := db.Model(&models.AccessPolicy{}).
			Where("organization_id = ? AND id = ?", cl.OrganizationID, c.Param("id")).
			Updates(updates)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "policy not found"})
			return
		}

		recordAudit(c, db, cl, "policies.update", "access_policy", c.Param("id"))
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func DeletePolicy(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, _ := auth.FromContext(c)

		err := db.Transaction(func(tx *gorm.DB) error {
			res := tx.Where("organization_id = ? AND id = ?", cl.OrganizationID, c.Param("id")).
				Delete(&models.AccessPolicy{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
			if err := tx.Where("policy_id = ?", c.Param("id")).Delete(&models.AccessRule{}).Error; err != nil {
				return err
			}
			return tx.Where("policy_id = ?", c.Param("id")).Delete(&models.PolicyAssignment{}).Error
		})
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "policy not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		recordAudit(c, db, cl, "policies.delete", "access_policy", c.Param("id"))
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// AddRule appends a rule to a policy. Enum values and CUSTOM condition params
// are validated here, at authoring time, so evaluation never sees garbage.
func AddRule(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, _ := auth.FromContext(c)

		var input struct {
			Resource        string          `json:"resource" binding:"required"`
			Action          string          `json:"action" binding:"required"`
			Effect          string          `json:"effect" binding:"required"`
			ConditionType   string          `json:"conditionType"`
			ConditionParams json.RawMessage `json:"conditionParams"`
			AllowedFields   []string        `json:"allowedFields"`
			DeniedFields    []string        `json:"deniedFields"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if !accesscontrol.Resource(input.Resource).Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid resource"})
			return
		}
		if !accesscontrol.Action(input.Action).Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid action"})
			return
		}
		if !accesscontrol.Effect(input.Effect).Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid effect"})
			return
		}
		condition := accesscontrol.ConditionType(input.ConditionType)
		if input.ConditionType == "" {
			condition = accesscontrol.ConditionAll
		}
		if !condition.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid condition type"})
			return
		}
		if condition == accesscontrol.ConditionCustom {
			if err := accesscontrol.ValidateCustomParams(input.ConditionParams); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}

		var policy models.AccessPolicy
		if err := db.Where("organization_id = ? AND id = ?", cl.OrganizationID, c.Param("id")).
			First(&policy).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "policy not found"})
			return
		}

		rule := models.AccessRule{
			ID:              ids.New(),
			PolicyID:        policy.ID,
			Resource:        input.Resource,
			Action:          input.Action,
			Effect:          input.Effect,
			ConditionType:   string(condition),
			ConditionParams: datatypes.JSON(input.ConditionParams),
			AllowedFields:   datatypes.JSONSlice[string](input.AllowedFields),
			DeniedFields:    datatypes.JSONSlice[string](input.DeniedFields),
			IsActive:        true,
		}
		if err := db.Create(&rule).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		recordAudit(c, db, cl, "policies.rule_add", "access_rule", rule.ID)
		c.JSON(http.StatusCreated, gin.H{"rule": rule})
	}
}

func DeleteRule(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, _ := auth.FromContext(c)

		// Scope the delete through the owning policy's organization.
		res := db.Where("id = ? AND policy_id IN (?)",
			c.Param("ruleId"),
			db.Model(&models.AccessPolicy{}).Select("id").Where("organization_id = ?", cl.OrganizationID),
		).Delete(&models.AccessRule{})
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "rule not found"})
			return
		}

		recordAudit(c, db, cl, "policies.rule_delete", "access_rule", c.Param("ruleId"))
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// CreateAssignment grants a policy to a user, optionally time-bounded.
func CreateAssignment(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, _ := auth.FromContext(c)

		var input struct {
			UserID    string     `json:"userId" binding:"required"`
			ExpiresAt *time.Time `json:"expiresAt"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var policy models.AccessPolicy
		if err := db.Where("organization_id = ? AND id = ?", cl.OrganizationID, c.Param("id")).
			First(&policy).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "policy not found"})
			return
		}

		var userCount int64
		if err := db.Model(&models.User{}).
			Where("organization_id = ? AND id = ?", cl.OrganizationID, input.UserID).
			Count(&userCount).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if userCount == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown user"})
			return
		}

		assignment := models.PolicyAssignment{
			ID:          ids.New(),
			PolicyID:    policy.ID,
			UserID:      input.UserID,
			ExpiresAt:   input.ExpiresAt,
			CreatedByID: cl.UserID,
		}
		if err := db.Create(&assignment).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		recordAudit(c, db, cl, "policies.assign", "policy_assignment", assignment.ID)
		c.JSON(http.StatusCreated, gin.H{"assignment": assignment})
	}
}

// DeleteAssignment revokes a policy grant.
func DeleteAssignment(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, _ := auth.FromContext(c)

		res := db.Where("id = ? AND policy_id IN (?)",
			c.Param("assignmentId"),
			db.Model(&models.AccessPolicy{}).Select("id").Where("organization_id = ?", cl.OrganizationID),
		).Delete(&models.PolicyAssignment{})
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "assignment not found"})
			return
		}

		recordAudit(c, db, cl, "policies.unassign", "policy_assignment", c.Param("assignmentId"))
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
