package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"spokestack/internal/accesscontrol"
	"spokestack/internal/auth"
	"spokestack/internal/http/handlers"
	"spokestack/internal/obs"
)

func NewRouter(db *gorm.DB, jwtSecret string) *gin.Engine {
	r := gin.Default()
	r.Use(RequestID(), Metrics())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(obs.Handler()))

	// Public routes
	r.POST("/api/v1/auth/login", LoginRateLimit(), handlers.LoginHandler(db, jwtSecret))
	r.GET("/api/v1/auth/logout", handlers.LogoutHandler())
	r.POST("/api/v1/orgs", handlers.ProvisionOrganization(db))

	authMW := auth.JWT(db, jwtSecret)
	api := r.Group("/api/v1", authMW)
	{
		api.GET("/me", handlers.MeHandler(db))

		// Users
		api.GET("/users", require(db, accesscontrol.ResourceUsers, accesscontrol.ActionList), handlers.ListUsers(db))
		api.GET("/users/:id", require(db, accesscontrol.ResourceUsers, accesscontrol.ActionView), handlers.GetUser(db))
		api.POST("/users", require(db, accesscontrol.ResourceUsers, accesscontrol.ActionCreate), handlers.CreateUser(db))
		api.PATCH("/users/:id", require(db, accesscontrol.ResourceUsers, accesscontrol.ActionUpdate), handlers.UpdateUser(db))
		api.POST("/users/:id/deactivate", require(db, accesscontrol.ResourceUsers, accesscontrol.ActionUpdate), handlers.DeactivateUser(db))
		api.POST("/users/:id/activate", require(db, accesscontrol.ResourceUsers, accesscontrol.ActionUpdate), handlers.ActivateUser(db))

		// Clients
		api.GET("/clients", require(db, accesscontrol.ResourceClients, accesscontrol.ActionList), handlers.ListClients(db))
		api.GET("/clients/:id", require(db, accesscontrol.ResourceClients, accesscontrol.ActionView), handlers.GetClient(db))
		api.POST("/clients", require(db, accesscontrol.ResourceClients, accesscontrol.ActionCreate), handlers.CreateClient(db))
		api.PATCH("/clients/:id", require(db, accesscontrol.ResourceClients, accesscontrol.ActionUpdate), handlers.UpdateClient(db))
		api.DELETE("/clients/:id", require(db, accesscontrol.ResourceClients, accesscontrol.ActionDelete), handlers.DeleteClient(db))

		// Projects
		api.GET("/projects", require(db, accesscontrol.ResourceProjects, accesscontrol.ActionList), handlers.ListProjects(db))
		api.GET("/projects/:id", require(db, accesscontrol.ResourceProjects, accesscontrol.ActionView), handlers.GetProject(db))
		api.POST("/projects", require(db, accesscontrol.ResourceProjects, accesscontrol.ActionCreate), handlers.CreateProject(db))
		api.PATCH("/projects/:id", require(db, accesscontrol.ResourceProjects, accesscontrol.ActionUpdate), handlers.UpdateProject(db))
		api.DELETE("/projects/:id", require(db, accesscontrol.ResourceProjects, accesscontrol.ActionDelete), handlers.DeleteProject(db))

		// Briefs
		api.GET("/briefs", require(db, accesscontrol.ResourceBriefs, accesscontrol.ActionList), handlers.ListBriefs(db))
		api.GET("/briefs/:id", require(db, accesscontrol.ResourceBriefs, accesscontrol.ActionView), handlers.GetBrief(db))
		api.POST("/briefs", require(db, accesscontrol.ResourceBriefs, accesscontrol.ActionCreate), handlers.CreateBrief(db))
		api.PATCH("/briefs/:id", require(db, accesscontrol.ResourceBriefs, accesscontrol.ActionUpdate), handlers.UpdateBrief(db))
		api.POST("/briefs/:id/assign", require(db, accesscontrol.ResourceBriefs, accesscontrol.ActionAssign), handlers.AssignBrief(db))
		api.DELETE("/briefs/:id", require(db, accesscontrol.ResourceBriefs, accesscontrol.ActionDelete), handlers.DeleteBrief(db))

		// Time entries
		api.GET("/time-entries", require(db, accesscontrol.ResourceTimeEntries, accesscontrol.ActionList), handlers.ListTimeEntries(db))
		api.POST("/time-entries", require(db, accesscontrol.ResourceTimeEntries, accesscontrol.ActionCreate), handlers.CreateTimeEntry(db))
		api.DELETE("/time-entries/:id", require(db, accesscontrol.ResourceTimeEntries, accesscontrol.ActionDelete), handlers.DeleteTimeEntry(db))

		// RFPs
		api.GET("/rfps", require(db, accesscontrol.ResourceRFPs, accesscontrol.ActionList), handlers.ListRFPs(db))
		api.POST("/rfps", require(db, accesscontrol.ResourceRFPs, accesscontrol.ActionCreate), handlers.CreateRFP(db))
		api.PATCH("/rfps/:id", require(db, accesscontrol.ResourceRFPs, accesscontrol.ActionUpdate), handlers.UpdateRFP(db))

		// Files
		api.GET("/files", require(db, accesscontrol.ResourceFiles, accesscontrol.ActionList), handlers.ListFiles(db))
		api.POST("/files", require(db, accesscontrol.ResourceFiles, accesscontrol.ActionCreate), handlers.CreateFile(db))
		api.DELETE("/files/:id", require(db, accesscontrol.ResourceFiles, accesscontrol.ActionDelete), handlers.DeleteFile(db))

		// Policy administration (admin only)
		admin := api.Group("/access", handlers.RequireAdmin())
		{
			admin.GET("/policies", handlers.ListPolicies(db))
			admin.POST("/policies", handlers.CreatePolicy(db))
			admin.PATCH("/policies/:id", handlers.UpdatePolicy(db))
			admin.DELETE("/policies/:id", handlers.DeletePolicy(db))
			admin.POST("/policies/:id/rules", handlers.AddRule(db))
			admin.DELETE("/rules/:ruleId", handlers.DeleteRule(db))
			admin.POST("/policies/:id/assignments", handlers.CreateAssignment(db))
			admin.DELETE("/assignments/:assignmentId", handlers.DeleteAssignment(db))
		}

		// Audit trail (admin only)
		api.GET("/audit", handlers.RequireAdmin(), handlers.ListAudit(db))
	}

	return r
}

func require(db *gorm.DB, resource accesscontrol.Resource, action accesscontrol.Action) gin.HandlerFunc {
	return handlers.Require(db, resource, action)
}
