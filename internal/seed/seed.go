package seed

import (
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"spokestack/internal/accesscontrol"
	"spokestack/internal/ids"
	"spokestack/internal/models"
)

// FirstSetup provisions a demo organization with users at every permission
// level, a few clients/projects/briefs and the default access policies.
// Safe to run repeatedly.
func FirstSetup(db *gorm.DB) error {
	org := models.Organization{Name: "Spoke Agency", Slug: "spoke-agency"}
	if err := db.Where("slug = ?", org.Slug).
		Attrs(models.Organization{ID: ids.New()}).
		FirstOrCreate(&org).Error; err != nil {
		return err
	}

	const adminEmail = "admin@spoke.test"
	const adminPass = "admin123" // change after first login
	passHash, _ := bcrypt.GenerateFromPassword([]byte(adminPass), bcrypt.DefaultCost)

	ensureUser := func(email, name, title, dept string, level models.PermissionLevel, teamLeadID *string) (models.User, error) {
		user := models.User{
			OrganizationID:  org.ID,
			Email:           email,
			Name:            name,
			Role:            title,
			Department:      dept,
			PermissionLevel: level,
			TeamLeadID:      teamLeadID,
			PasswordHash:    string(passHash),
			IsActive:        true,
		}
		err := db.Where("organization_id = ? AND email = ?", org.ID, email).
			Attrs(models.User{ID: ids.New()}).
			FirstOrCreate(&user).Error
		return user, err
	}

	admin, err := ensureUser(adminEmail, "Ava Admin", "Managing Director", "Management", models.LevelAdmin, nil)
	if err != nil {
		return err
	}
	if _, err := ensureUser("lead@spoke.test", "Liam Leadership", "Creative Director", "Creative", models.LevelLeadership, nil); err != nil {
		return err
	}
	teamLead, err := ensureUser("tl@spoke.test", "Tara Teamlead", "Account Director", "Client Servicing", models.LevelTeamLead, nil)
	if err != nil {
		return err
	}
	staff, err := ensureUser("staff@spoke.test", "Sam Staff", "Account Manager", "Client Servicing", models.LevelStaff, &teamLead.ID)
	if err != nil {
		return err
	}
	freelancer, err := ensureUser("free@spoke.test", "Finn Freelancer", "Designer", "Creative", models.LevelFreelancer, nil)
	if err != nil {
		return err
	}
	contractEnd := time.Now().AddDate(0, 6, 0)
	if err := db.Model(&models.User{}).Where("id = ?", freelancer.ID).
		Updates(map[string]any{"is_freelancer": true, "contract_end": contractEnd}).Error; err != nil {
		return err
	}

	ensureClient := func(name, code, industry string, retainerHours int) (models.Client, error) {
		client := models.Client{
			OrganizationID: org.ID,
			Name:           name,
			Code:           code,
			Industry:       industry,
			IsRetainer:     retainerHours > 0,
			RetainerHours:  retainerHours,
			CreatedByID:    admin.ID,
		}
		err := db.Where("organization_id = ? AND code = ?", org.ID, code).
			Attrs(models.Client{ID: ids.New()}).
			FirstOrCreate(&client).Error
		return client, err
	}

	northwind, err := ensureClient("Northwind Tourism Board", "NTB", "Government", 160)
	if err != nil {
		return err
	}
	acme, err := ensureClient("Acme Retail Group", "ARG", "Retail", 0)
	if err != nil {
		return err
	}

	project := models.Project{
		OrganizationID: org.ID,
		ClientID:       northwind.ID,
		Name:           "Summer Campaign 2026",
		Status:         "ACTIVE",
		CreatedByID:    admin.ID,
	}
	if err := db.Where("organization_id = ? AND name = ?", org.ID, project.Name).
		Attrs(models.Project{ID: ids.New()}).
		FirstOrCreate(&project).Error; err != nil {
		return err
	}

	ensureBrief := func(title string, clientID string, assigneeID *string) error {
		brief := models.Brief{
			OrganizationID: org.ID,
			ClientID:       clientID,
			ProjectID:      &project.ID,
			Title:          title,
			Status:         "OPEN",
			AssigneeID:     assigneeID,
			CreatedByID:    teamLead.ID,
		}
		return db.Where("organization_id = ? AND title = ?", org.ID, title).
			Attrs(models.Brief{ID: ids.New()}).
			FirstOrCreate(&brief).Error
	}

	if err := ensureBrief("Launch teaser video", northwind.ID, &freelancer.ID); err != nil {
		return err
	}
	if err := ensureBrief("Social calendar refresh", acme.ID, &staff.ID); err != nil {
		return err
	}

	// Default policies, once per organization
	var policyCount int64
	if err := db.Model(&models.AccessPolicy{}).
		Where("organization_id = ?", org.ID).
		Count(&policyCount).Error; err != nil {
		return err
	}
	if policyCount == 0 {
		if err := accesscontrol.CreateDefaultPolicies(db, org.ID, admin.ID); err != nil {
			return err
		}
	}

	log.Printf("seed OK | admin=%s pass=%s | org=%s | levels=[admin,leadership,team_lead,staff,freelancer]",
		adminEmail, adminPass, org.Slug)
	return nil
}
