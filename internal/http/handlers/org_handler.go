package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"spokestack/internal/accesscontrol"
	"spokestack/internal/audit"
	"spokestack/internal/ids"
	"spokestack/internal/models"
)

// ProvisionOrganization creates an organization, its admin user and the
// default access policies in one step.
func ProvisionOrganization(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Name          string `json:"name" binding:"required"`
			Slug          string `json:"slug" binding:"required"`
			AdminName     string `json:"adminName" binding:"required"`
			AdminEmail    string `json:"adminEmail" binding:"required,email"`
			AdminPassword string `json:"adminPassword" binding:"required,min=8"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		input.Slug = strings.ToLower(strings.TrimSpace(input.Slug))
		input.AdminEmail = strings.ToLower(strings.TrimSpace(input.AdminEmail))

		var existing int64
		if err := db.Model(&models.Organization{}).Where("slug = ?", input.Slug).Count(&existing).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if existing > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "slug already in use"})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(input.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
			return
		}

		org := models.Organization{ID: ids.New(), Name: input.Name, Slug: input.Slug}
		admin := models.User{
			ID:              ids.New(),
			OrganizationID:  org.ID,
			Email:           input.AdminEmail,
			Name:            input.AdminName,
			PermissionLevel: models.LevelAdmin,
			PasswordHash:    string(hash),
			IsActive:        true,
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&org).Error; err != nil {
				return err
			}
			if err := tx.Create(&admin).Error; err != nil {
				return err
			}
			return accesscontrol.CreateDefaultPolicies(tx, org.ID, admin.ID)
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		audit.Record(db, audit.Entry{
			OrganizationID: org.ID,
			UserID:         admin.ID,
			Action:         "orgs.provision",
			ResourceType:   "organization",
			ResourceID:     org.ID,
			RequestID:      RequestIDFrom(c),
			IP:             c.ClientIP(),
			UserAgent:      c.Request.UserAgent(),
		})

		c.JSON(http.StatusCreated, gin.H{
			"organization": org,
			"admin": gin.H{
				"id":    admin.ID,
				"email": admin.Email,
				"name":  admin.Name,
			},
		})
	}
}
