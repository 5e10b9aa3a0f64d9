package handler

import (
	"b2bmarket/internal/usecase"
)

var (
	userHandler     *UserHandler
	rfqHandler      *RFQHandler
	quoteHandler    *QuoteHandler
	chatRoomHandler *ChatRoomHandler
	creditHandler   *CreditHandler
	adminHandler    *AdminHandler
)

func Setup(
	userUseCase *usecase.UserUseCase,
	rfqUseCase *usecase.RFQUseCase,
	quoteUseCase *usecase.QuoteUseCase,
	chatRoomUseCase *usecase.ChatRoomUseCase,
	creditUseCase *usecase.CreditUseCase,
	expiryUseCase *usecase.ExpiryUseCase,
) {
	userHandler = NewUserHandler(userUseCase)
	rfqHandler = NewRFQHandler(rfqUseCase)
	quoteHandler = NewQuoteHandler(quoteUseCase)
	chatRoomHandler = NewChatRoomHandler(chatRoomUseCase)
	creditHandler = NewCreditHandler(creditUseCase)
	adminHandler = NewAdminHandler(creditUseCase, chatRoomUseCase, expiryUseCase)
}

func GetUserHandler() *UserHandler {
	return userHandler
}

func GetRFQHandler() *RFQHandler {
	return rfqHandler
}

func GetQuoteHandler() *QuoteHandler {
	return quoteHandler
}

func GetChatRoomHandler() *ChatRoomHandler {
	return chatRoomHandler
}

func GetCreditHandler() *CreditHandler {
	return creditHandler
}

func GetAdminHandler() *AdminHandler {
	return adminHandler
}
