package router

import (
	"b2bmarket/internal/adapter/api/handler"
	"b2bmarket/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupAdminRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware) {
	adminHandler := handler.GetAdminHandler()

	admin := e.Group("/api/admin")
	admin.Use(authMiddleware.Authenticate)
	admin.Use(adminMiddleware.AdminOnly)

	admin.GET("/credit-requests", adminHandler.ListChargeRequests)
	admin.POST("/credit-requests/:id/approve", adminHandler.ApproveChargeRequest)
	admin.POST("/credit-requests/:id/reject", adminHandler.RejectChargeRequest)

	admin.GET("/chat/rooms", adminHandler.ListRooms)
	admin.POST("/chat/expiry-sweep", adminHandler.TriggerExpirySweep)
}
