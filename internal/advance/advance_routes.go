package advance

import (
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	advances := r.Group("/advances")
	advances.Use(middleware.AuthMiddleware())
	{
		advances.GET("", handler.GetAll)
		advances.GET("/:id", handler.GetById)
		advances.POST("", handler.Request)
		advances.POST("/:id/submit", handler.Submit)
		advances.POST("/:id/approve", handler.Approve)
		advances.POST("/:id/reject", handler.Reject)
		advances.POST("/:id/cancel", handler.Cancel)
		advances.POST("/:id/disburse", handler.Disburse)
		advances.POST("/:id/repayments", handler.AddRepayment)
	}
}
