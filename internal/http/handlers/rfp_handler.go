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

func ListRFPs(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, _ := auth.FromContext(c)
		ac := evaluatorFrom(c, db, cl)

		filter, err := ac.BuildFilter(c.Request.Context(), accesscontrol.ResourceRFPs, accesscontrol.ActionList)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		q := db.WithContext(c.Request.Context()).
			Where("organization_id = ?", cl.OrganizationID)
		if status := c.Query("status"); status != "" {
			q = q.Where("status = ?", status)
		}
		q = filter.Apply(q)

		var rfps []models.RFP
		if err := q.Order("created_at DESC").Find(&rfps).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		out, err := redactAll(c, ac, accesscontrol.ResourceRFPs, accesscontrol.ActionList, rfps)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"rfps": out})
	}
}

func CreateRFP(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, _ := auth.FromContext(c)

		var input struct {
			Title      string     `json:"title" binding:"required"`
			ClientName string     `json:"clientName"`
			Status     string     `json:"status"`
			Value      float64    `json:"value"`
			DueDate    *time.Time `json:"dueDate"`
			AssigneeID *string    `json:"assigneeId"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		rfp := models.RFP{
			ID:             ids.New(),
			OrganizationID: cl.OrganizationID,
			Title:          input.Title,
			ClientName:     input.ClientName,
			Status:         input.Status,
			Value:          input.Value,
			DueDate:        input.DueDate,
			AssigneeID:     input.AssigneeID,
			CreatedByID:    cl.UserID,
		}
		if rfp.Status == "" {
			rfp.Status = "OPEN"
		}
		if err := db.Create(&rfp).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		recordAudit(c, db, cl, "rfps.create", "rfp", rfp.ID)
		c.JSON(http.StatusCreated, gin.H{"rfp": rfp})
	}
}

func UpdateRFP(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, _ := auth.FromContext(c)
		ac := evaluatorFrom(c, db, cl)

		var input struct {
			Title      *string    `json:"title"`
			ClientName *string    `json:"clientName"`
			Status     *string    `json:"status"`
			Value      *float64   `json:"value"`
			DueDate    *time.Time `json:"dueDate"`
			AssigneeID *string    `json:"assigneeId"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		updates := map[string]any{}
		setIf(updates, "title", input.Title)
		setIf(updates, "client_name", input.ClientName)
		setIf(updates, "status", input.Status)
		setIf(updates, "value", input.Value)
		setIf(updates, "due_date", input.DueDate)
		setIf(updates, "assignee_id", input.AssigneeID)
		if len(updates) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
			return
		}

		filter, err := ac.BuildFilter(c.Request.Context(), accesscontrol.ResourceRFPs, accesscontrol.ActionUpdate)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		q := db.WithContext(c.Request.Context()).
			Model(&models.RFP{}).
			Where("organization_id = ? AND id = ?", cl.OrganizationID, c.Param("id"))
		q = filter.Apply(q)

		res := q.Updates(updates)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "rfp not found"})
			return
		}

		recordAudit(c, db, cl, "rfps.update", "rfp", c.Param("id"))
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
