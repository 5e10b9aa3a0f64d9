package router

import (
	"b2bmarket/internal/adapter/api/handler"
	"b2bmarket/internal/adapter/api/middleware"
	"b2bmarket/internal/domain/entity"

	"github.com/labstack/echo/v4"
)

func SetupCreditRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware) {
	creditHandler := handler.GetCreditHandler()

	credits := e.Group("/api/supplier/credits")
	credits.Use(authMiddleware.Authenticate)
	credits.Use(adminMiddleware.RequireRole(entity.RoleSupplier))

	credits.GET("", creditHandler.GetCredits)
	credits.POST("", creditHandler.RequestCharge)
	credits.POST("/request", creditHandler.RequestCharge)
	credits.GET("/requests", creditHandler.ListChargeRequests)
}
