package sursalaire

import (
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	sursalaires := r.Group("/sursalaires")
	sursalaires.Use(middleware.AuthMiddleware())
	{
		sursalaires.GET("", handler.GetAll)
		sursalaires.GET("/calculate", handler.CalculatePeriod)
		sursalaires.GET("/:id", handler.GetById)
		sursalaires.POST("", handler.Create)
		sursalaires.POST("/:id/credit", handler.Credit)
		sursalaires.POST("/:id/cancel", handler.Cancel)
	}
}
