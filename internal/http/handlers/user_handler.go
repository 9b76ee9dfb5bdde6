package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"spokestack/internal/accesscontrol"
	"spokestack/internal/auth"
	"spokestack/internal/ids"
	"spokestack/internal/models"
)

// ListUsers returns the organization's users visible to the caller. Under a
// TEAM condition a team lead sees themselves plus their direct reports.
func ListUsers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, _ := auth.FromContext(c)
		ac := evaluatorFrom(c, db, cl)

		filter, err := ac.BuildFilter(c.Request.Context(), accesscontrol.ResourceUsers, accesscontrol.ActionList)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		q := db.WithContext(c.Request.Context()).
			Where("organization_id = ?", cl.OrganizationID)
		q = applyUserFilter(q, filter, cl.UserID)

		var users []models.User
		if err := q.Order("name").Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		out, err := redactAll(c, ac, accesscontrol.ResourceUsers, accesscontrol.ActionList, users)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"users": out})
	}
}

// applyUserFilter translates record-ownership filters onto the users table,
// where "created by" and "assigned to" have no meaning: ownership conditions
// resolve to the user's own row, team conditions to the team member rows.
func applyUserFilter(q *gorm.DB, filter accesscontrol.Filter, userID string) *gorm.DB {
	switch f := filter.(type) {
	case accesscontrol.All:
		return q
	case accesscontrol.Equals:
		if f.Column == "created_by_id" || f.Column == "assignee_id" {
			return q.Where("id = ?", userID)
		}
		return f.Apply(q)
	case accesscontrol.AnyOf:
		// TEAM filter: member ids appear in each inner In clause.
		for _, inner := range f.Filters {
			if in, ok := inner.(accesscontrol.In); ok {
				return accesscontrol.In{Column: "id", Values: in.Values}.Apply(q)
			}
		}
		return f.Apply(q)
	default:
		return filter.Apply(q)
	}
}

func GetUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, _ := auth.FromContext(c)
		ac := evaluatorFrom(c, db, cl)

		filter, err := ac.BuildFilter(c.Request.Context(), accesscontrol.ResourceUsers, accesscontrol.ActionView)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		q := db.WithContext(c.Request.Context()).
			Where("organization_id = ? AND id = ?", cl.OrganizationID, c.Param("id"))
		q = applyUserFilter(q, filter, cl.UserID)

		var user models.User
		if err := q.First(&user).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}

		out, err := redactOne(c, ac, accesscontrol.ResourceUsers, accesscontrol.ActionView, user)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": out})
	}
}

func CreateUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, _ := auth.FromContext(c)

		var input struct {
			Email           string     `json:"email" binding:"required,email"`
			Name            string     `json:"name" binding:"required"`
			Password        string     `json:"password" binding:"required,min=8"`
			Role            string     `json:"role"`
			Department      string     `json:"department"`
			PermissionLevel string     `json:"permissionLevel"`
			TeamLeadID      *string    `json:"teamLeadId"`
			IsFreelancer    bool       `json:"isFreelancer"`
			ContractEnd     *time.Time `json:"contractEnd"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		input.Email = strings.TrimSpace(strings.ToLower(input.Email))
		input.Name = strings.TrimSpace(input.Name)

		level := models.PermissionLevel(input.PermissionLevel)
		if input.PermissionLevel == "" {
			level = models.LevelStaff
		}
		if !level.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid permission level"})
			return
		}

		var existing int64
		if err := db.Model(&models.User{}).
			Where("organization_id = ? AND email = ?", cl.OrganizationID, input.Email).
			Count(&existing).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if existing > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "email already exists in this organization"})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
			return
		}

		user := models.User{
			ID:              ids.New(),
			OrganizationID:  cl.OrganizationID,
			Email:           input.Email,
			Name:            input.Name,
			Role:            input.Role,
			Department:      input.Department,
			PermissionLevel: level,
			TeamLeadID:      input.TeamLeadID,
			PasswordHash:    string(hash),
			IsActive:        true,
			IsFreelancer:    input.IsFreelancer,
			ContractEnd:     input.ContractEnd,
		}
		if err := db.Create(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		recordAudit(c, db, cl, "users.create", "user", user.ID)
		c.JSON(http.StatusCreated, gin.H{"user": user})
	}
}

func UpdateUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, _ := auth.FromContext(c)

		var input struct {
			Name            *string    `json:"name"`
			Role            *string    `json:"role"`
			Department      *string    `json:"department"`
			PermissionLevel *string    `json:"permissionLevel"`
			TeamLeadID      *string    `json:"teamLeadId"`
			ContractEnd     *time.Time `json:"contractEnd"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		updates := map[string]any{}
		setIf(updates, "name", input.Name)
		setIf(updates, "role", input.Role)
		setIf(updates, "department", input.Department)
		setIf(updates, "team_lead_id", input.TeamLeadID)
		setIf(updates, "contract_end", input.ContractEnd)
		if input.PermissionLevel != nil {
			level := models.PermissionLevel(*input.PermissionLevel)
			if !level.Valid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid permission level"})
				return
			}
			updates["permission_level"] = level
		}
		if len(updates) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
			return
		}

		res := db.Model(&models.User{}).
			Where("organization_id = ? AND id = ?", cl.OrganizationID, c.Param("id")).
			Updates(updates)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}

		recordAudit(c, db, cl, "users.update", "user", c.Param("id"))
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func DeactivateUser(db *gorm.DB) gin.HandlerFunc {
	return setUserActive(db, false, "users.deactivate")
}

func ActivateUser(db *gorm.DB) gin.HandlerFunc {
	return setUserActive(db, true, "users.activate")
}

func setUserActive(db *gorm.DB, active bool, auditAction string) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, _ := auth.FromContext(c)

		if !active && c.Param("id") == cl.UserID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot deactivate yourself"})
			return
		}

		res := db.Model(&models.User{}).
			Where("organization_id = ? AND id = ?", cl.OrganizationID, c.Param("id")).
			Update("is_active", active)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}

		recordAudit(c, db, cl, auditAction, "user", c.Param("id"))
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
