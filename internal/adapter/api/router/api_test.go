package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"

	"b2bmarket/internal/adapter/api"
	"b2bmarket/internal/adapter/api/handler"
	"b2bmarket/internal/adapter/api/middleware"
	"b2bmarket/internal/adapter/repository"
	"b2bmarket/internal/domain/service"
	"b2bmarket/internal/infrastructure/jwt"
	"b2bmarket/internal/infrastructure/ratelimit"
	"b2bmarket/internal/usecase"
	"b2bmarket/pkg/response"
)

type apiServer struct {
	e      *echo.Echo
	tokens *jwt.TokenManager
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newAPIServer(t *testing.T) *apiServer {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := repository.OpenGorm(repository.DriverSQLite, dsn, gormlogger.Silent)
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	store := repository.NewGormDealStore(db)
	users := repository.NewGormUserRepository(db)
	rfqs := repository.NewGormRFQRepository(db)
	quotes := repository.NewGormQuoteRepository(db)
	rooms := repository.NewGormChatRoomRepository(db)
	orders := repository.NewGormOrderRepository(db)
	credit := repository.NewGormCreditRepository(db)

	fees, err := service.NewFeePolicy(300)
	require.NoError(t, err)
	publisher := usecase.NoopPublisher{}

	expiryUC := usecase.NewExpiryUseCase(store, rooms, usecase.ExpiryConfig{}, usecase.NewLocalLock(), publisher)
	userUC := usecase.NewUserUseCase(users, func(uid string) bool { return uid == "admin-1" })
	rfqUC := usecase.NewRFQUseCase(store, rfqs)
	quoteUC := usecase.NewQuoteUseCase(store, quotes, rfqs, fees, 72*time.Hour, publisher)
	roomUC := usecase.NewChatRoomUseCase(store, rooms, rfqs, quotes, users, orders,
		service.NewPaymentMethodRegistry(), expiryUC, ratelimit.NewRateLimiter(100), publisher)
	creditUC := usecase.NewCreditUseCase(store, credit, publisher)

	handler.Setup(userUC, rfqUC, quoteUC, roomUC, creditUC, expiryUC)
	handler.SetupHealthHandler(nil)

	tokens := jwt.NewTokenManager("test-secret", "b2bmarket-test", time.Hour)
	e := echo.New()
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = response.HTTPErrorHandler
	Setup(e, middleware.NewAuthMiddleware(tokens), middleware.NewAdminMiddleware(users))

	return &apiServer{e: e, tokens: tokens}
}

func (s *apiServer) do(t *testing.T, uid, method, path string, body interface{}) (int, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if uid != "" {
		token, err := s.tokens.Generate(uid)
		require.NoError(t, err)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func (s *apiServer) register(t *testing.T, uid, role string) {
	t.Helper()
	code, env := s.do(t, uid, http.MethodPost, "/api/users/register", map[string]string{
		"email":       uid + "@example.com",
		"name":        uid,
		"companyName": uid + " Co.",
		"role":        role,
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
}

func decode(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	require.True(t, env.Success, env.Error)
	require.NoError(t, json.Unmarshal(env.Data, v))
}

func TestHealthCheck(t *testing.T) {
	s := newAPIServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestAPI_RequiresAuthentication(t *testing.T) {
	s := newAPIServer(t)

	code, env := s.do(t, "", http.MethodGet, "/api/chat/rooms", nil)

	assert.Equal(t, http.StatusUnauthorized, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
}

func TestAPI_RoleGates(t *testing.T) {
	s := newAPIServer(t)
	s.register(t, "buyer-1", "buyer")
	s.register(t, "supplier-1", "supplier")

	code, env := s.do(t, "supplier-1", http.MethodPost, "/api/rfqs", map[string]interface{}{"title": "Bolts", "quantity": 10})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "NOT_AUTHORIZED", env.Error.Code)

	code, _ = s.do(t, "buyer-1", http.MethodGet, "/api/admin/chat/rooms", nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = s.do(t, "buyer-1", http.MethodPost, "/api/rfqs", map[string]interface{}{"title": "Bolts"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestAPI_DealFlow(t *testing.T) {
	s := newAPIServer(t)
	s.register(t, "buyer-1", "buyer")
	s.register(t, "supplier-1", "supplier")
	s.register(t, "admin-1", "buyer")

	// Top up credit through the manual bank-transfer flow.
	code, env := s.do(t, "supplier-1", http.MethodPost, "/api/supplier/credits/request", map[string]interface{}{
		"amount":        100000,
		"depositorName": "Supplier One",
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	var chargeReq struct {
		ID string `json:"id"`
	}
	decode(t, env, &chargeReq)

	code, env = s.do(t, "admin-1", http.MethodPost, "/api/admin/credit-requests/"+chargeReq.ID+"/approve", map[string]string{})
	require.Equal(t, http.StatusOK, code, env.Error)

	code, env = s.do(t, "buyer-1", http.MethodPost, "/api/rfqs", map[string]interface{}{
		"title":    "Stainless bolts M8",
		"quantity": 5000,
		"unit":     "pcs",
		"budget":   1500000,
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	var rfq struct {
		ID string `json:"id"`
	}
	decode(t, env, &rfq)

	code, env = s.do(t, "supplier-1", http.MethodPost, "/api/rfqs/"+rfq.ID+"/quotes", map[string]interface{}{
		"totalPrice": 1000000,
		"note":       "Ships in two weeks",
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	var submitted struct {
		Quote struct {
			ID string `json:"id"`
		} `json:"quote"`
		ChatRoom struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"chatRoom"`
	}
	decode(t, env, &submitted)
	assert.Equal(t, "active", submitted.ChatRoom.Status)

	code, env = s.do(t, "buyer-1", http.MethodPost, "/api/quotes/"+submitted.Quote.ID+"/accept", nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	var accepted struct {
		Fee          int64 `json:"fee"`
		BalanceAfter int64 `json:"balanceAfter"`
	}
	decode(t, env, &accepted)
	assert.Equal(t, int64(30000), accepted.Fee)
	assert.Equal(t, int64(70000), accepted.BalanceAfter)

	roomPath := "/api/chat/rooms/" + submitted.ChatRoom.ID
	code, env = s.do(t, "supplier-1", http.MethodPost, roomPath, map[string]string{"action": "request_payment"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "NOT_AUTHORIZED", env.Error.Code)

	code, env = s.do(t, "buyer-1", http.MethodPost, roomPath, map[string]string{"action": "request_payment", "paymentMethod": "card"})
	assert.Equal(t, http.StatusNotImplemented, code)
	assert.Equal(t, "NOT_IMPLEMENTED", env.Error.Code)

	code, env = s.do(t, "buyer-1", http.MethodPost, roomPath, map[string]string{"action": "request_payment"})
	require.Equal(t, http.StatusOK, code, env.Error)
	var detail struct {
		ChatRoom struct {
			Status        string `json:"status"`
			PaymentMethod string `json:"paymentMethod"`
		} `json:"chatRoom"`
		CurrentUserRole  string   `json:"currentUserRole"`
		AvailableActions []string `json:"availableActions"`
	}
	decode(t, env, &detail)
	assert.Equal(t, "payment_requested", detail.ChatRoom.Status)
	assert.Equal(t, "bank_transfer", detail.ChatRoom.PaymentMethod)
	assert.Equal(t, "buyer", detail.CurrentUserRole)
	assert.Empty(t, detail.AvailableActions)

	code, env = s.do(t, "buyer-1", http.MethodPost, roomPath, map[string]string{"action": "request_payment"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "INVALID_STATE_TRANSITION", env.Error.Code)

	code, env = s.do(t, "supplier-1", http.MethodPost, roomPath+"/messages", map[string]string{"content": "Payment received soon?"})
	require.Equal(t, http.StatusCreated, code, env.Error)

	code, env = s.do(t, "buyer-1", http.MethodGet, roomPath+"/messages", nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	var page struct {
		Items []struct {
			SenderType string `json:"senderType"`
		} `json:"items"`
		Total int64 `json:"total"`
	}
	decode(t, env, &page)
	assert.Equal(t, int64(4), page.Total)
	assert.Equal(t, "supplier", page.Items[3].SenderType)

	code, env = s.do(t, "supplier-1", http.MethodGet, "/api/supplier/credits", nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	var overview struct {
		Balance int64 `json:"balance"`
		Entries struct {
			Total int64 `json:"total"`
		} `json:"entries"`
	}
	decode(t, env, &overview)
	assert.Equal(t, int64(70000), overview.Balance)
	assert.Equal(t, int64(2), overview.Entries.Total)
}

func TestAPI_SubmitQuoteRejectsOversizedPrice(t *testing.T) {
	s := newAPIServer(t)
	s.register(t, "buyer-1", "buyer")
	s.register(t, "supplier-1", "supplier")

	code, env := s.do(t, "buyer-1", http.MethodPost, "/api/rfqs", map[string]interface{}{"title": "Bolts", "quantity": 10})
	require.Equal(t, http.StatusCreated, code, env.Error)
	var rfq struct {
		ID string `json:"id"`
	}
	decode(t, env, &rfq)

	code, env = s.do(t, "supplier-1", http.MethodPost, "/api/rfqs/"+rfq.ID+"/quotes", map[string]interface{}{
		"totalPrice": service.MaxQuotePrice + 1,
	})
	assert.Equal(t, http.StatusBadRequest, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	code, env = s.do(t, "supplier-1", http.MethodPost, "/api/rfqs/"+rfq.ID+"/quotes", map[string]interface{}{
		"totalPrice": service.MaxQuotePrice,
	})
	assert.Equal(t, http.StatusCreated, code, env.Error)
}
