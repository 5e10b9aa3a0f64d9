package router

import (
	"b2bmarket/internal/adapter/api/handler"
	"b2bmarket/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupChatRoomRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	chatRoomHandler := handler.GetChatRoomHandler()

	rooms := e.Group("/api/chat/rooms")
	rooms.Use(authMiddleware.Authenticate)

	rooms.GET("", chatRoomHandler.ListRooms)
	rooms.GET("/:id", chatRoomHandler.GetRoom)
	rooms.POST("/:id", chatRoomHandler.PerformAction)
	rooms.GET("/:id/messages", chatRoomHandler.GetMessages)
	rooms.POST("/:id/messages", chatRoomHandler.SendMessage)

	e.GET("/api/payment-methods", chatRoomHandler.GetPaymentMethods, authMiddleware.Authenticate)
}
