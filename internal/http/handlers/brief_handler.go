package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"spokestack/internal/accesscontrol"
	"spokestack/internal/auth"
	"spokestack/internal/ids"
	"spokestack/internal/models"
)

func ListBriefs(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, _ := auth.FromContext(c)
		ac := evaluatorFrom(c, db, cl)

		filter, err := ac.BuildFilter(c.Request.Context(), accesscontrol.ResourceBriefs, accesscontrol.ActionList)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		q := db.WithContext(c.Request.Context()).
			Where("organization_id = ?", cl.OrganizationID)
		if clientID := c.Query("client_id"); clientID != "" {
			q = q.Where("client_id = ?", clientID)
		}
		if status := c.Query("status"); status != "" {
			q = q.Where("status = ?", status)
		}
		q = filter.Apply(q)

		var briefs []models.Brief
		if err := q.Order("created_at DESC").Find(&briefs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		out, err := redactAll(c, ac, accesscontrol.ResourceBriefs, accesscontrol.ActionList, briefs)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"briefs": out})
	}
}

func GetBrief(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, _ := auth.FromContext(c)
		ac := evaluatorFrom(c, db, cl)

		filter, err := ac.BuildFilter(c.Request.Context(), accesscontrol.ResourceBriefs, accesscontrol.ActionView)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		q := db.WithContext(c.Request.Context()).
			Where("organization_id = ? AND id = ?", cl.OrganizationID, c.Param("id"))
		q = filter.Apply(q)

		var brief models.Brief
		if err := q.First(&brief).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "brief not found"})
			return
		}

		out, err := redactOne(c, ac, accesscontrol.ResourceBriefs, accesscontrol.ActionView, brief)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"brief": out})
	}
}

func CreateBrief(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, _ := auth.FromContext(c)

		var input struct {
			ClientID    string     `json:"clientId" binding:"required"`
			ProjectID   *string    `json:"projectId"`
			Title       string     `json:"title" binding:"required"`
			Description string     `json:"description"`
			Status      string     `json:"status"`
			DueDate     *time.Time `json:"dueDate"`
			AssigneeID  *string    `json:"assigneeId"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		brief := models.Brief{
			ID:             ids.New(),
			OrganizationID: cl.OrganizationID,
			ClientID:       input.ClientID,
			ProjectID:      input.ProjectID,
			Title:          input.Title,
			Description:    input.Description,
			Status:         input.Status,
			DueDate:        input.DueDate,
			AssigneeID:     input.AssigneeID,
			CreatedByID:    cl.UserID,
		}
		if brief.Status == "" {
			brief.Status = "OPEN"
		}
		if err := db.Create(&brief).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		recordAudit(c, db, cl, "briefs.create", "brief", brief.ID)
		c.JSON(http.StatusCreated, gin.H{"brief": brief})
	}
}

func UpdateBrief(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, _ := auth.FromContext(c)
		ac := evaluatorFrom(c, db, cl)

		var input struct {
			Title       *string    `json:"title"`
			Description *string    `json:"description"`
			Status      *string    `json:"status"`
			DueDate     *time.Time `json:"dueDate"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		updates := map[string]any{}
		setIf(updates, "title", input.Title)
		setIf(updates, "description", input.Description)
		setIf(updates, "status", input.Status)
		setIf(updates, "due_date", input.DueDate)
		if len(updates) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
			return
		}

		filter, err := ac.BuildFilter(c.Request.Context(), accesscontrol.ResourceBriefs, accesscontrol.ActionUpdate)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		q := db.WithContext(c.Request.Context()).
			Model(&models.Brief{}).
			Where("organization_id = ? AND id = ?", cl.OrganizationID, c.Param("id"))
		q = filter.Apply(q)

		res := q.Updates(updates)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "brief not found"})
			return
		}

		recordAudit(c, db, cl, "briefs.update", "brief", c.Param("id"))
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// AssignBrief sets the brief's assignee. Guarded by the briefs ASSIGN action;
// the ASSIGN rule's condition (e.g. TEAM for team leads) scopes which briefs
// may be reassigned.
func AssignBrief(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, _ := auth.FromContext(c)
		ac := evaluatorFrom(c, db, cl)

		var input struct {
			AssigneeID *string `json:"assigneeId"` // nil unassigns
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if input.AssigneeID != nil {
			var count int64
			if err := db.Model(&models.User{}).
				Where("organization_id = ? AND id = ? AND is_active = ?", cl.OrganizationID, *input.AssigneeID, true).
				Count(&count).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			if count == 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unknown assignee"})
				return
			}
		}

		filter, err := ac.BuildFilter(c.Request.Context(), accesscontrol.ResourceBriefs, accesscontrol.ActionAssign)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		q := db.WithContext(c.Request.Context()).
			Model(&models.Brief{}).
			Where("organization_id = ? AND id = ?", cl.OrganizationID, c.Param("id"))
		q = filter.Apply(q)

		res := q.Update("assignee_id", input.AssigneeID)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "brief not found"})
			return
		}

		recordAudit(c, db, cl, "briefs.assign", "brief", c.Param("id"))
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func DeleteBrief(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, _ := auth.FromContext(c)
		ac := evaluatorFrom(c, db, cl)

		filter, err := ac.BuildFilter(c.Request.Context(), accesscontrol.ResourceBriefs, accesscontrol.ActionDelete)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		q := db.WithContext(c.Request.Context()).
			Where("organization_id = ? AND id = ?", cl.OrganizationID, c.Param("id"))
		q = filter.Apply(q)

		res := q.Delete(&models.Brief{})
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "brief not found"})
			return
		}

		recordAudit(c, db, cl, "briefs.delete", "brief", c.Param("id"))
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
