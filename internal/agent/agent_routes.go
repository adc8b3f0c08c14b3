package agent

import (
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	agents := r.Group("/agents")
	agents.Use(middleware.AuthMiddleware())
	{
		agents.GET("", handler.GetAll)
		agents.GET("/:id", handler.GetById)
		agents.POST("", handler.Create)
		agents.PUT("/:id", handler.Update)
		agents.POST("/:id/deactivate", handler.Deactivate)
	}
}
