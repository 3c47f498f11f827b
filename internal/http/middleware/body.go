package middleware

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/ecovision/internal/models"
)

// RequireJSON rejects bodies that are not application/json and caps their size.
func RequireJSON(maxBytes int64) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		mediaType, _, err := mime.ParseMediaType(ctx.GetHeader("Content-Type"))
		if err != nil || mediaType != "application/json" {
			ctx.AbortWithStatusJSON(http.StatusUnsupportedMediaType, models.APIResponse{
				Success: false,
				Error:   "Content-Type must be application/json",
			})
			return
		}

		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxBytes)
		ctx.Next()
	}
}
