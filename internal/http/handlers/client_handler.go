package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"spokestack/internal/accesscontrol"
	"spokestack/internal/audit"
	"spokestack/internal/auth"
	"spokestack/internal/ids"
	"spokestack/internal/models"
)

// ListClients returns the clients visible to the caller, with field-level
// redaction applied per the winning rule.
func ListClients(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, _ := auth.FromContext(c)
		ac := evaluatorFrom(c, db, cl)

		filter, err := ac.BuildFilter(c.Request.Context(), accesscontrol.ResourceClients, accesscontrol.ActionList)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		q := db.WithContext(c.Request.Context()).
			Where("organization_id = ?", cl.OrganizationID)
		q = filter.Apply(q)

		var clients []models.Client
		if err := q.Order("name").Find(&clients).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		out, err := redactAll(c, ac, accesscontrol.ResourceClients, accesscontrol.ActionList, clients)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"clients": out})
	}
}

func GetClient(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, _ := auth.FromContext(c)
		ac := evaluatorFrom(c, db, cl)

		filter, err := ac.BuildFilter(c.Request.Context(), accesscontrol.ResourceClients, accesscontrol.ActionView)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		q := db.WithContext(c.Request.Context()).
			Where("organization_id = ? AND id = ?", cl.OrganizationID, c.Param("id"))
		q = filter.Apply(q)

		var client models.Client
		if err := q.First(&client).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
			return
		}

		out, err := redactOne(c, ac, accesscontrol.ResourceClients, accesscontrol.ActionView, client)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"client": out})
	}
}

func CreateClient(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, _ := auth.FromContext(c)

		var input struct {
			Name          string `json:"name" binding:"required"`
			Code          string `json:"code"`
			Industry      string `json:"industry"`
			IsRetainer    bool   `json:"isRetainer"`
			RetainerHours int    `json:"retainerHours"`
			Notes         string `json:"notes"`
			LinkedIn      string `json:"linkedIn"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		client := models.Client{
			ID:             ids.New(),
			OrganizationID: cl.OrganizationID,
			Name:           input.Name,
			Code:           input.Code,
			Industry:       input.Industry,
			IsRetainer:     input.IsRetainer,
			RetainerHours:  input.RetainerHours,
			Notes:          input.Notes,
			LinkedIn:       input.LinkedIn,
			CreatedByID:    cl.UserID,
		}
		if err := db.Create(&client).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		recordAudit(c, db, cl, "clients.create", "client", client.ID)
		c.JSON(http.StatusCreated, gin.H{"client": client})
	}
}

func UpdateClient(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, _ := auth.FromContext(c)
		ac := evaluatorFrom(c, db, cl)

		var input struct {
			Name          *string `json:"name"`
			Code          *string `json:"code"`
			Industry      *string `json:"industry"`
			IsRetainer    *bool   `json:"isRetainer"`
			RetainerHours *int    `json:"retainerHours"`
			Notes         *string `json:"notes"`
			LinkedIn      *string `json:"linkedIn"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		updates := map[string]any{}
		setIf(updates, "name", input.Name)
		setIf(updates, "code", input.Code)
		setIf(updates, "industry", input.Industry)
		setIf(updates, "is_retainer", input.IsRetainer)
		setIf(updates, "retainer_hours", input.RetainerHours)
		setIf(updates, "notes", input.Notes)
		setIf(updates, "linked_in", input.LinkedIn)
		if len(updates) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
			return
		}

		filter, err := ac.BuildFilter(c.Request.Context(), accesscontrol.ResourceClients, accesscontrol.ActionUpdate)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		q := db.WithContext(c.Request.Context()).
			Model(&models.Client{}).
			Where("organization_id = ? AND id = ?", cl.OrganizationID, c.Param("id"))
		q = filter.Apply(q)

		res := q.Updates(updates)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
			return
		}

		recordAudit(c, db, cl, "clients.update", "client", c.Param("id"))
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func DeleteClient(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, _ := auth.FromContext(c)
		ac := evaluatorFrom(c, db, cl)

		filter, err := ac.BuildFilter(c.Request.Context(), accesscontrol.ResourceClients, accesscontrol.ActionDelete)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		q := db.WithContext(c.Request.Context()).
			Where("organization_id = ? AND id = ?", cl.OrganizationID, c.Param("id"))
		q = filter.Apply(q)

		res := q.Delete(&models.Client{})
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
			return
		}

		recordAudit(c, db, cl, "clients.delete", "client", c.Param("id"))
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// setIf adds a column update when the optional input field was provided.
func setIf[T any](updates map[string]any, column string, v *T) {
	if v != nil {
		updates[column] = *v
	}
}

func recordAudit(c *gin.Context, db *gorm.DB, cl *auth.Claims, action, resourceType, resourceID string) {
	audit.Record(db, audit.Entry{
		OrganizationID: cl.OrganizationID,
		UserID:         cl.UserID,
		Action:         action,
		ResourceType:   resourceType,
		ResourceID:     resourceID,
		RequestID:      RequestIDFrom(c),
		IP:             c.ClientIP(),
		UserAgent:      c.Request.UserAgent(),
	})
}
