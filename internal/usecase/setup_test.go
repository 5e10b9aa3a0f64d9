package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"b2bmarket/internal/adapter/repository"
	"b2bmarket/internal/domain/entity"
	domainrepo "b2bmarket/internal/domain/repository"
	"b2bmarket/internal/domain/service"
	"b2bmarket/internal/infrastructure/ratelimit"
	"b2bmarket/pkg/utils"
)

const (
	buyerID     = "buyer-1"
	supplierID  = "supplier-1"
	supplier2ID = "supplier-2"
	strangerID  = "stranger-1"
	adminID     = "admin-1"

	testFeeBasisPoints = 300
	testExpiryWindow   = 72 * time.Hour
)

var allPages = utils.Pagination{Page: 1, Limit: utils.MaxPageSize}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []entity.DealEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event entity.DealEvent) error {
	p.mu.Lock()
	p.events = append(p.events, event)
	p.mu.Unlock()
	return nil
}

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, len(p.events))
	for i, e := range p.events {
		types[i] = e.Type
	}
	return types
}

type testEnv struct {
	ctx    context.Context
	db     *gorm.DB
	clock  *testClock
	events *recordingPublisher
	lock   *LocalLock

	users   *UserUseCase
	rfqs    *RFQUseCase
	quotes  *QuoteUseCase
	rooms   *ChatRoomUseCase
	credit  *CreditUseCase
	expiry  *ExpiryUseCase
	limiter *ratelimit.RateLimiter
	orders  domainrepo.OrderRepository
}

type envOption func(*envConfig)

type envConfig struct {
	policy            entity.ExpiryPolicy
	messagesPerMinute int
}

func withPolicy(policy entity.ExpiryPolicy) envOption {
	return func(c *envConfig) { c.policy = policy }
}

func withMessageLimit(perMinute int) envOption {
	return func(c *envConfig) { c.messagesPerMinute = perMinute }
}

// newTestEnv wires every usecase against a private in-memory SQLite database.
func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	cfg := envConfig{policy: entity.ExpiryFreezeOnConfirm, messagesPerMinute: 1000}
	for _, opt := range opts {
		opt(&cfg)
	}

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
	userRepo := repository.NewGormUserRepository(db)
	rfqRepo := repository.NewGormRFQRepository(db)
	quoteRepo := repository.NewGormQuoteRepository(db)
	roomRepo := repository.NewGormChatRoomRepository(db)
	orderRepo := repository.NewGormOrderRepository(db)
	creditRepo := repository.NewGormCreditRepository(db)

	fees, err := service.NewFeePolicy(testFeeBasisPoints)
	require.NoError(t, err)

	env := &testEnv{
		ctx:     context.Background(),
		db:      db,
		clock:   &testClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
		events:  &recordingPublisher{},
		lock:    NewLocalLock(),
		limiter: ratelimit.NewRateLimiter(cfg.messagesPerMinute),
		orders:  orderRepo,
	}

	env.users = NewUserUseCase(userRepo, func(uid string) bool { return uid == adminID })
	env.rfqs = NewRFQUseCase(store, rfqRepo)
	env.expiry = NewExpiryUseCase(store, roomRepo, ExpiryConfig{Policy: cfg.policy}, env.lock, env.events)
	env.quotes = NewQuoteUseCase(store, quoteRepo, rfqRepo, fees, testExpiryWindow, env.events)
	env.rooms = NewChatRoomUseCase(store, roomRepo, rfqRepo, quoteRepo, userRepo, orderRepo,
		service.NewPaymentMethodRegistry(), env.expiry, env.limiter, env.events)
	env.credit = NewCreditUseCase(store, creditRepo, env.events)

	env.users.now = env.clock.Now
	env.rfqs.now = env.clock.Now
	env.expiry.now = env.clock.Now
	env.quotes.now = env.clock.Now
	env.rooms.now = env.clock.Now
	env.credit.now = env.clock.Now

	env.register(t, buyerID, entity.RoleBuyer)
	env.register(t, supplierID, entity.RoleSupplier)
	env.register(t, supplier2ID, entity.RoleSupplier)
	return env
}

func (env *testEnv) register(t *testing.T, uid, role string) {
	t.Helper()
	_, err := env.users.Register(env.ctx, uid, RegisterInput{
		Email:       uid + "@example.com",
		Name:        uid,
		CompanyName: uid + " Co.",
		Role:        role,
	})
	require.NoError(t, err)
}

func (env *testEnv) createRFQ(t *testing.T) *entity.RFQ {
	t.Helper()
	rfq, err := env.rfqs.CreateRFQ(env.ctx, buyerID, CreateRFQInput{
		Title:    "Stainless bolts M8",
		Quantity: 5000,
		Unit:     "pcs",
		Budget:   1_500_000,
	})
	require.NoError(t, err)
	return rfq
}

func (env *testEnv) submitQuote(t *testing.T, supplier, rfqID string, total int64) *SubmitQuoteResult {
	t.Helper()
	result, err := env.quotes.SubmitQuote(env.ctx, supplier, rfqID, SubmitQuoteInput{TotalPrice: total})
	require.NoError(t, err)
	return result
}

func (env *testEnv) fund(t *testing.T, supplier string, amount int64) {
	t.Helper()
	_, err := env.credit.Credit(env.ctx, supplier, amount, "initial top-up")
	require.NoError(t, err)
}

func (env *testEnv) balance(t *testing.T, supplier string) int64 {
	t.Helper()
	b, err := env.credit.GetBalance(env.ctx, supplier)
	require.NoError(t, err)
	return b
}

func (env *testEnv) reloadQuote(t *testing.T, id string) *entity.Quote {
	t.Helper()
	var q entity.Quote
	require.NoError(t, env.db.Where("id = ?", id).Take(&q).Error)
	return &q
}

func (env *testEnv) reloadRFQ(t *testing.T, id string) *entity.RFQ {
	t.Helper()
	var r entity.RFQ
	require.NoError(t, env.db.Where("id = ?", id).Take(&r).Error)
	return &r
}

func (env *testEnv) reloadRoom(t *testing.T, id string) *entity.ChatRoom {
	t.Helper()
	var r entity.ChatRoom
	require.NoError(t, env.db.Where("id = ?", id).Take(&r).Error)
	return &r
}

func (env *testEnv) ledger(t *testing.T, supplier string) []*entity.CreditLedgerEntry {
	t.Helper()
	var entries []*entity.CreditLedgerEntry
	require.NoError(t, env.db.Where("supplier_id = ?", supplier).Order("sequence ASC").Find(&entries).Error)
	return entries
}

func (env *testEnv) systemEvents(t *testing.T, roomID string) []string {
	t.Helper()
	var messages []*entity.Message
	require.NoError(t, env.db.
		Where("room_id = ? AND sender_type = ?", roomID, entity.SenderTypeSystem).
		Order("created_at ASC, id ASC").
		Find(&messages).Error)
	events := make([]string, len(messages))
	for i, m := range messages {
		events[i] = m.SystemEvent
	}
	return events
}
