package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"access_review/internal/auth"
	"access_review/internal/events"
	"access_review/internal/http/handlers"
	"access_review/internal/review"
	"access_review/internal/store"
)

// Deps are the collaborators shared by all routes.
type Deps struct {
	Store          store.Store
	Service        *review.Service
	Hub            *events.Hub
	JWTSecret      string
	AvatarBaseURL  string
	AllowedOrigins []string
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), auth.Identify(d.JWTSecret))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Routes consumed by the existing browser client.
	r.GET("/dashboard/app-manager/users", handlers.ListDashboardUsers(d.Service, d.AvatarBaseURL))
	r.POST("/dashboard/app-manager/users", handlers.OnboardUser(d.Service, d.Store))
	r.GET("/applications/", handlers.ListApplicationsPlain(d.Store))
	r.POST("/applications/", handlers.CreateApplication(d.Store, d.Store, true))
	r.GET("/roles/", handlers.ListRoles(d.Store))
	r.POST("/roles/", handlers.CreateRole(d.Store, d.Store))
	r.DELETE("/users/:id", handlers.DeleteDashboardUser(d.Service, d.Store))

	api := r.Group("/api/v1")
	{
		api.POST("/auth/login", handlers.LoginHandler(d.Store, d.JWTSecret))
		api.GET("/me", auth.Required(), handlers.MeHandler(d.Store))

		// Access records and the review workflow
		api.GET("/records", handlers.ListRecords(d.Service))
		api.POST("/records", handlers.CreateRecord(d.Service, d.Store))
		api.GET("/records/summary", handlers.RecordSummary(d.Service))
		api.POST("/records/actions", handlers.BulkReviewAction(d.Service, d.Store))
		api.GET("/records/:id", handlers.GetRecord(d.Service))
		api.PUT("/records/:id", handlers.UpdateRecord(d.Service, d.Store))
		api.DELETE("/records/:id", handlers.DeleteRecord(d.Service, d.Store))
		api.POST("/records/:id/actions", handlers.ReviewAction(d.Service, d.Store))

		// Registries
		api.GET("/system-users", handlers.ListSystemUsers(d.Store))
		api.POST("/system-users", handlers.CreateSystemUser(d.Store, d.Store))
		api.PUT("/system-users/:id", handlers.UpdateSystemUser(d.Store, d.Store))
		api.DELETE("/system-users/:id", handlers.DeleteSystemUser(d.Store, d.Store))

		api.GET("/applications", handlers.ListApplications(d.Store))
		api.POST("/applications", handlers.CreateApplication(d.Store, d.Store, false))
		api.PUT("/applications/:id", handlers.UpdateApplication(d.Store, d.Store))
		api.DELETE("/applications/:id", handlers.DeleteApplication(d.Store, d.Store))

		api.GET("/cycles", handlers.ListCycles(d.Store))
		api.POST("/cycles", handlers.CreateCycle(d.Store, d.Store))
		api.PUT("/cycles/:id", handlers.UpdateCycle(d.Store, d.Store))
		api.DELETE("/cycles/:id", handlers.DeleteCycle(d.Store, d.Store))

		// Audit trail
		api.GET("/audit", handlers.ListAudit(d.Store))

		// Live record events
		api.GET("/ws/events", handlers.EventStream(d.Hub, d.AllowedOrigins))
	}

	return r
}
