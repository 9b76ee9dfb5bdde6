package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"spokestack/internal/accesscontrol"
	"spokestack/internal/auth"
	"spokestack/internal/ids"
	"spokestack/internal/models"
)

func ListFiles(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, _ := auth.FromContext(c)
		ac := evaluatorFrom(c, db, cl)

		filter, err := ac.BuildFilter(c.Request.Context(), accesscontrol.ResourceFiles, accesscontrol.ActionList)
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

		var files []models.File
		if err := q.Order("created_at DESC").Find(&files).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		out, err := redactAll(c, ac, accesscontrol.ResourceFiles, accesscontrol.ActionList, files)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"files": out})
	}
}

// CreateFile registers file metadata. Byte storage lives elsewhere; this
// service tracks ownership and visibility.
func CreateFile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, _ := auth.FromContext(c)

		var input struct {
			Name     string  `json:"name" binding:"required"`
			Path     string  `json:"path" binding:"required"`
			MimeType string  `json:"mimeType"`
			Size     int64   `json:"size"`
			ClientID *string `json:"clientId"`
			BriefID  *string `json:"briefId"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		file := models.File{
			ID:             ids.New(),
			OrganizationID: cl.OrganizationID,
			Name:           input.Name,
			Path:           input.Path,
			MimeType:       input.MimeType,
			Size:           input.Size,
			ClientID:       input.ClientID,
			BriefID:        input.BriefID,
			CreatedByID:    cl.UserID,
		}
		if err := db.Create(&file).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		recordAudit(c, db, cl, "files.create", "file", file.ID)
		c.JSON(http.StatusCreated, gin.H{"file": file})
	}
}

func DeleteFile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, _ := auth.FromContext(c)
		ac := evaluatorFrom(c, db, cl)

		filter, err := ac.BuildFilter(c.Request.Context(), accesscontrol.ResourceFiles, accesscontrol.ActionDelete)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		q := db.WithContext(c.Request.Context()).
			Where("organization_id = ? AND id = ?", cl.OrganizationID, c.Param("id"))
		q = filter.Apply(q)

		res := q.Delete(&models.File{})
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
			return
		}

		recordAudit(c, db, cl, "files.delete", "file", c.Param("id"))
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
