package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/ecovision/internal/http/handlers"
	"github.com/phambaophuc/ecovision/internal/http/middleware"
	"github.com/phambaophuc/ecovision/internal/metrics"
	"go.uber.org/zap"
)

// bodyOverhead covers the JSON envelope and credential around the image.
const bodyOverhead = 16 * 1024

type Router struct {
	identifyHandler *handlers.IdentifyHandler
	logger          *zap.Logger
	maxFileSize     int64
}

func NewRouter(
	identifyHandler *handlers.IdentifyHandler,
	logger *zap.Logger,
	maxFileSize int64,
) *Router {
	return &Router{
		identifyHandler: identifyHandler,
		logger:          logger,
		maxFileSize:     maxFileSize,
	}
}

// maxBodySize allows a base64 encoded image of maxFileSize bytes.
func (r *Router) maxBodySize() int64 {
	return (r.maxFileSize+2)/3*4 + bodyOverhead
}

func (r *Router) SetupRoutes() *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(r.logger))
	router.Use(middleware.ErrorHandler(r.logger))
	router.Use(middleware.CORS())
	router.Use(middleware.SecurityHeaders())

	api := router.Group("/api")
	{
		api.GET("/health", r.identifyHandler.HealthCheck)
		api.POST("/token", r.identifyHandler.IssueToken)
		api.POST("/identify", middleware.RequireJSON(r.maxBodySize()), r.identifyHandler.Identify)
	}

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"message": "EcoVision identification service is running",
		})
	})

	return router
}
