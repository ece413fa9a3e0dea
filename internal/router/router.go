package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/dance-studio-api/internal/handler"
	"github.com/noah-isme/dance-studio-api/internal/middleware"
	"github.com/noah-isme/dance-studio-api/internal/models"
	"github.com/noah-isme/dance-studio-api/internal/service"
	"github.com/noah-isme/dance-studio-api/pkg/config"
	"github.com/noah-isme/dance-studio-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/dance-studio-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/dance-studio-api/pkg/middleware/requestid"
)

// Handlers bundles the HTTP handlers wired into the route table.
type Handlers struct {
	Auth       *handler.AuthHandler
	Class      *handler.ClassHandler
	Student    *handler.StudentHandler
	Enrollment *handler.EnrollmentHandler
	Contact    *handler.ContactHandler
	Export     *handler.ExportHandler
	Metrics    *handler.MetricsHandler
}

// New assembles the gin engine with middleware and the full route table.
func New(cfg *config.Config, logr *zap.Logger, handlers Handlers, authService *service.AuthService, metricsService *service.MetricsService) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", handlers.Metrics.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", handlers.Metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	// Public surface: catalog browsing, contact form, auth entry points.
	api.GET("/classes", handlers.Class.List)
	api.GET("/classes/:id", handlers.Class.Get)
	api.GET("/courses", handlers.Class.Courses)
	api.POST("/contact", handlers.Contact.Submit)

	auth := api.Group("/auth")
	auth.POST("/register", handlers.Auth.Register)
	auth.POST("/login", handlers.Auth.Login)
	auth.POST("/refresh", handlers.Auth.Refresh)

	// Authenticated surface.
	authed := api.Group("")
	authed.Use(middleware.JWT(authService))

	authed.POST("/auth/logout", handlers.Auth.Logout)
	authed.GET("/auth/me", handlers.Auth.Me)

	authed.GET("/profile", handlers.Student.Profile)
	authed.PUT("/profile", handlers.Student.UpdateProfile)

	authed.POST("/enrollments", handlers.Enrollment.Enroll)
	authed.GET("/enrollments", handlers.Enrollment.My)
	authed.GET("/enrollments/available", handlers.Enrollment.Available)
	authed.DELETE("/enrollments/:id", handlers.Enrollment.Cancel)

	// Staff surface.
	staff := authed.Group("")
	staff.Use(middleware.RequireRoles(models.RoleStaff))

	staff.POST("/classes", handlers.Class.Create)
	staff.GET("/students", handlers.Student.List)
	staff.GET("/enrollments/all", handlers.Enrollment.ListAll)
	staff.GET("/classes/:id/roster", handlers.Export.Roster)

	return r
}
