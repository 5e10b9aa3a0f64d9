package router

import (
	"b2bmarket/internal/adapter/api/handler"
	"b2bmarket/internal/adapter/api/middleware"
	"b2bmarket/internal/domain/entity"

	"github.com/labstack/echo/v4"
)

func SetupQuoteRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware) {
	quoteHandler := handler.GetQuoteHandler()
	buyerOnly := adminMiddleware.RequireRole(entity.RoleBuyer)
	supplierOnly := adminMiddleware.RequireRole(entity.RoleSupplier)

	rfqQuotes := e.Group("/api/rfqs/:id/quotes")
	rfqQuotes.Use(authMiddleware.Authenticate)

	rfqQuotes.POST("", quoteHandler.SubmitQuote, supplierOnly)
	rfqQuotes.GET("", quoteHandler.ListQuotesForRFQ, buyerOnly)

	// Ownership is checked against the quote's buyer, so accept and reject
	// need no role gate beyond authentication.
	quotes := e.Group("/api/quotes")
	quotes.Use(authMiddleware.Authenticate)

	quotes.POST("/:id/accept", quoteHandler.AcceptQuote)
	quotes.POST("/:id/reject", quoteHandler.RejectQuote)

	supplier := e.Group("/api/supplier/quotes")
	supplier.Use(authMiddleware.Authenticate)
	supplier.Use(supplierOnly)

	supplier.GET("", quoteHandler.ListMyQuotes)
}
