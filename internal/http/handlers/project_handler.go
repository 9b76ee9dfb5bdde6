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

func ListProjects(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, _ := auth.FromContext(c)
		ac := evaluatorFrom(c, db, cl)

		filter, err := ac.BuildFilter(c.Request.Context(), accesscontrol.ResourceProjects, accesscontrol.ActionList)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		q := db.WithContext(c.Request.Context()).
			Where("organization_id = ?", cl.OrganizationID)
		q = filter.Apply(q)

		var projects []models.Project
		if err := q.Order("created_at DESC").Find(&projects).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		out, err := redactAll(c, ac, accesscontrol.ResourceProjects, accesscontrol.ActionList, projects)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"projects": out})
	}
}

func GetProject(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, _ := auth.FromContext(c)
		ac := evaluatorFrom(c, db, cl)

		filter, err := ac.BuildFilter(c.Request.Context(), accesscontrol.ResourceProjects, accesscontrol.ActionView)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		q := db.WithContext(c.Request.Context()).
			Where("organization_id = ? AND id = ?", cl.OrganizationID, c.Param("id"))
		q = filter.Apply(q)

		var project models.Project
		if err := q.First(&project).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}

		out, err := redactOne(c, ac, accesscontrol.ResourceProjects, accesscontrol.ActionView, project)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"project": out})
	}
}

func CreateProject(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, _ := auth.FromContext(c)

		var input struct {
			ClientID   string     `json:"clientId" binding:"required"`
			Name       string     `json:"name" binding:"required"`
			Status     string     `json:"status"`
			AssigneeID *string    `json:"assigneeId"`
			StartDate  *time.Time `json:"startDate"`
			EndDate    *time.Time `json:"endDate"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var clientCount int64
		if err := db.Model(&models.Client{}).
			Where("organization_id = ? AND id = ?", cl.OrganizationID, input.ClientID).
			Count(&clientCount).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if clientCount == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown client"})
			return
		}

		project := models.Project{
			ID:             ids.New(),
			OrganizationID: cl.OrganizationID,
			ClientID:       input.ClientID,
			Name:           input.Name,
			Status:         input.Status,
			AssigneeID:     input.AssigneeID,
			CreatedByID:    cl.UserID,
			StartDate:      input.StartDate,
			EndDate:        input.EndDate,
		}
		if project.Status == "" {
			project.Status = "ACTIVE"
		}
		if err := db.Create(&project).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		recordAudit(c, db, cl, "projects.create", "project", project.ID)
		c.JSON(http.StatusCreated, gin.H{"project": project})
	}
}

func UpdateProject(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, _ := auth.FromContext(c)
		ac := evaluatorFrom(c, db, cl)

		var input struct {
			Name       *string    `json:"name"`
			Status     *string    `json:"status"`
			AssigneeID *string    `json:"assigneeId"`
			StartDate  *time.Time `json:"startDate"`
			EndDate    *time.Time `json:"endDate"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		updates := map[string]any{}
		setIf(updates, "name", input.Name)
		setIf(updates, "status", input.Status)
		setIf(updates, "assignee_id", input.AssigneeID)
		setIf(updates, "start_date", input.StartDate)
		setIf(updates, "end_date", input.EndDate)
		if len(updates) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
			return
		}

		filter, err := ac.BuildFilter(c.Request.Context(), accesscontrol.ResourceProjects, accesscontrol.ActionUpdate)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		q := db.WithContext(c.Request.Context()).
			Model(&models.Project{}).
			Where("organization_id = ? AND id = ?", cl.OrganizationID, c.Param("id"))
		q = filter.Apply(q)

		res := q.Updates(updates)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}

		recordAudit(c, db, cl, "projects.update", "project", c.Param("id"))
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func DeleteProject(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, _ := auth.FromContext(c)
		ac := evaluatorFrom(c, db, cl)

		filter, err := ac.BuildFilter(c.Request.Context(), accesscontrol.ResourceProjects, accesscontrol.ActionDelete)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		q := db.WithContext(c.Request.Context()).
			Where("organization_id = ? AND id = ?", cl.OrganizationID, c.Param("id"))
		q = filter.Apply(q)

		res := q.Delete(&models.Project{})
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}

		recordAudit(c, db, cl, "projects.delete", "project", c.Param("id"))
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
