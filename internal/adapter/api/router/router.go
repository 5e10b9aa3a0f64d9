package router

import (
	"b2bmarket/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware) {
	SetupHealthRouter(e)
	SetupUserRouter(e, authMiddleware)
	SetupRFQRouter(e, authMiddleware, adminMiddleware)
	SetupQuoteRouter(e, authMiddleware, adminMiddleware)
	SetupChatRoomRouter(e, authMiddleware)
	SetupCreditRouter(e, authMiddleware, adminMiddleware)
	SetupAdminRouter(e, authMiddleware, adminMiddleware)
}
