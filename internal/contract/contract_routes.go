package contract

import (
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	contracts := r.Group("/contracts")
	contracts.Use(middleware.AuthMiddleware())
	{
		contracts.GET("", handler.GetAllByAgent)
		contracts.GET("/:id", handler.GetById)
		contracts.POST("", handler.Create)
		contracts.POST("/:id/activate", handler.Activate)
		contracts.POST("/:id/terminate", handler.Terminate)
	}
}
