package router

import (
	"b2bmarket/internal/adapter/api/handler"
	"b2bmarket/internal/adapter/api/middleware"
	"b2bmarket/internal/domain/entity"

	"github.com/labstack/echo/v4"
)

func SetupRFQRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware) {
	rfqHandler := handler.GetRFQHandler()
	buyerOnly := adminMiddleware.RequireRole(entity.RoleBuyer)
	supplierOnly := adminMiddleware.RequireRole(entity.RoleSupplier)

	rfqs := e.Group("/api/rfqs")
	rfqs.Use(authMiddleware.Authenticate)

	rfqs.POST("", rfqHandler.CreateRFQ, buyerOnly)
	rfqs.GET("", rfqHandler.ListMyRFQs, buyerOnly)
	rfqs.GET("/open", rfqHandler.ListOpenRFQs, supplierOnly)
	rfqs.GET("/:id", rfqHandler.GetRFQ)
	rfqs.POST("/:id/cancel", rfqHandler.CancelRFQ, buyerOnly)
}
