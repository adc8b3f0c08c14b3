package payroll

import (
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rdb *redis.Client) {
	payrolls := r.Group("/payrolls")
	payrolls.Use(middleware.AuthMiddleware())
	{
		payrolls.GET("", handler.GetAll)
		payrolls.GET("/:id", handler.GetById)
		payrolls.POST("", middleware.Idempotency(rdb), handler.Generate)
		payrolls.PUT("/:id", handler.Update)
		payrolls.DELETE("/:id", handler.Delete)
		payrolls.POST("/:id/pay", middleware.Idempotency(rdb), handler.MarkAsPaid)
	}
}
