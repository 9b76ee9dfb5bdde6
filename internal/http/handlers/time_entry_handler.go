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

func ListTimeEntries(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, _ := auth.FromContext(c)
		ac := evaluatorFrom(c, db, cl)

		filter, err := ac.BuildFilter(c.Request.Context(), accesscontrol.ResourceTimeEntries, accesscontrol.ActionList)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		q := db.WithContext(c.Request.Context()).
			Where("organization_id = ?", cl.OrganizationID)
		if briefID := c.Query("brief_id"); briefID != "" {
			q = q.Where("brief_id = ?", briefID)
		}
		q = filter.Apply(q)

		var entries []models.TimeEntry
		if err := q.Order("date DESC").Find(&entries).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		out, err := redactAll(c, ac, accesscontrol.ResourceTimeEntries, accesscontrol.ActionList, entries)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"timeEntries": out})
	}
}

func CreateTimeEntry(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, _ := auth.FromContext(c)

		var input struct {
			BriefID  *string   `json:"briefId"`
			ClientID *string   `json:"clientId"`
			Date     time.Time `json:"date" binding:"required"`
			Hours    float64   `json:"hours" binding:"required,gt=0"`
			Notes    string    `json:"notes"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		entry := models.TimeEntry{
			ID:             ids.New(),
			OrganizationID: cl.OrganizationID,
			BriefID:        input.BriefID,
			ClientID:       input.ClientID,
			Date:           input.Date,
			Hours:          input.Hours,
			Notes:          input.Notes,
			CreatedByID:    cl.UserID,
		}
		if err := db.Create(&entry).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		recordAudit(c, db, cl, "time_entries.create", "time_entry", entry.ID)
		c.JSON(http.StatusCreated, gin.H{"timeEntry": entry})
	}
}

func DeleteTimeEntry(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, _ := auth.FromContext(c)
		ac := evaluatorFrom(c, db, cl)

		filter, err := ac.BuildFilter(c.Request.Context(), accesscontrol.ResourceTimeEntries, accesscontrol.ActionDelete)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		q := db.WithContext(c.Request.Context()).
			Where("organization_id = ? AND id = ?", cl.OrganizationID, c.Param("id"))
		q = filter.Apply(q)

		res := q.Delete(&models.TimeEntry{})
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "time entry not found"})
			return
		}

		recordAudit(c, db, cl, "time_entries.delete", "time_entry", c.Param("id"))
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
