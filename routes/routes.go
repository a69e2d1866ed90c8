package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"

	"mediafolder/config"
	"mediafolder/controllers"
	"mediafolder/metrics"
	"mediafolder/middleware"
	"mediafolder/services"
	"mediafolder/store"
	"mediafolder/utils"
)

const codeRouteNotFound = "FRAMEWORK__ROUTE_NOT_FOUND"

// ServiceContainer holds the services and settings the router is built from.
type ServiceContainer struct {
	Store              store.Store
	MediaFolderService *services.MediaFolderService
	Config             *config.Config
}

func NewServiceContainer(s store.Store, clock clockwork.Clock, cfg *config.Config) *ServiceContainer {
	return &ServiceContainer{
		Store:              s,
		MediaFolderService: services.NewMediaFolderService(s, clock),
		Config:             cfg,
	}
}

// NewRouter builds the gin engine with global middleware, health, metrics
// and the versioned API.
func NewRouter(container *ServiceContainer) *gin.Engine {
	cfg := container.Config

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	router.NoRoute(func(c *gin.Context) {
		utils.NotFoundResponse(c, codeRouteNotFound, "no route for "+c.Request.Method+" "+c.Request.URL.Path)
	})

	router.GET("/health", healthHandler(container.Store))
	if cfg.MetricsEnabled {
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	api := router.Group("/api/:version")
	api.Use(middleware.APIVersion(cfg.APIVersions))
	SetupRoutesWithContainer(api, container)

	return router
}

// SetupRoutesWithContainer registers every API route group on api.
func SetupRoutesWithContainer(api *gin.RouterGroup, container *ServiceContainer) {
	cfg := container.Config

	var read, write []gin.HandlerFunc
	if cfg.AuthEnabled() {
		auth := middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer)
		read = []gin.HandlerFunc{auth}
		write = []gin.HandlerFunc{auth, middleware.RequireRole(cfg.WriteRoles...)}
	}

	folderController := controllers.NewMediaFolderController(container.MediaFolderService)
	RegisterMediaFolderRoutes(api, folderController, read, write)
}

func healthHandler(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := s.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unavailable",
				"time":   time.Now().UTC(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().UTC(),
		})
	}
}
