package main

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"b2bmarket/internal/adapter/api/handler"
	"b2bmarket/internal/adapter/repository"
	domainrepo "b2bmarket/internal/domain/repository"
	"b2bmarket/internal/infrastructure/firebase"
	"b2bmarket/pkg/config"
	"b2bmarket/pkg/logger"
)

// stores bundles every persistence port the usecases need.
type stores struct {
	deal   domainrepo.DealStore
	users  domainrepo.UserRepository
	rfqs   domainrepo.RFQRepository
	quotes domainrepo.QuoteRepository
	rooms  domainrepo.ChatRoomRepository
	orders domainrepo.OrderRepository
	credit domainrepo.CreditRepository

	health handler.HealthCheck
	close  func()
}

func openStorage(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.Storage.Driver == "firestore" {
		return openFirestore(ctx, cfg)
	}
	return openSQL(cfg)
}

func openFirestore(ctx context.Context, cfg *config.Config) (*stores, error) {
	client, err := firebase.NewFirestoreClient(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}
	logger.Info("using firestore project %s", cfg.Storage.FirebaseProject)

	return &stores{
		deal:   repository.NewFirestoreDealStore(client),
		users:  repository.NewFirestoreUserRepository(client),
		rfqs:   repository.NewFirestoreRFQRepository(client),
		quotes: repository.NewFirestoreQuoteRepository(client),
		rooms:  repository.NewFirestoreChatRoomRepository(client),
		orders: repository.NewFirestoreOrderRepository(client),
		credit: repository.NewFirestoreCreditRepository(client),
		health: func(ctx context.Context) error {
			_, err := client.Collection("users").Limit(1).Documents(ctx).GetAll()
			return err
		},
		close: func() { client.Close() },
	}, nil
}

func openSQL(cfg *config.Config) (*stores, error) {
	logLevel := gormlogger.Warn
	if logger.ParseLevel(cfg.Log.Level) == logger.LevelDebug {
		logLevel = gormlogger.Info
	}

	db, err := repository.OpenGorm(cfg.Storage.Driver, cfg.Storage.DSN, logLevel)
	if err != nil {
		return nil, err
	}
	if err := repository.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("using %s storage", cfg.Storage.Driver)

	return &stores{
		deal:   repository.NewGormDealStore(db),
		users:  repository.NewGormUserRepository(db),
		rfqs:   repository.NewGormRFQRepository(db),
		quotes: repository.NewGormQuoteRepository(db),
		rooms:  repository.NewGormChatRoomRepository(db),
		orders: repository.NewGormOrderRepository(db),
		credit: repository.NewGormCreditRepository(db),
		health: sqlPing(db),
		close: func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		},
	}, nil
}

func sqlPing(db *gorm.DB) handler.HealthCheck {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
