package firebase

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	fbapp "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"b2bmarket/pkg/config"
	"b2bmarket/pkg/logger"
)

// ClientOptions picks service-account credentials from config. Inline JSON
// wins over a file path; with neither, application default credentials apply.
func ClientOptions(cfg config.StorageConfig) []option.ClientOption {
	switch {
	case cfg.CredentialsJSON != "":
		logger.Info("using firebase service account from environment")
		return []option.ClientOption{option.WithCredentialsJSON([]byte(cfg.CredentialsJSON))}
	case cfg.CredentialsFile != "":
		logger.Info("using firebase service account file %s", cfg.CredentialsFile)
		return []option.ClientOption{option.WithCredentialsFile(cfg.CredentialsFile)}
	default:
		return nil
	}
}

func NewApp(ctx context.Context, cfg config.StorageConfig) (*fbapp.App, error) {
	app, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, ClientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase: %w", err)
	}
	return app, nil
}

func NewFirestoreClient(ctx context.Context, cfg config.StorageConfig) (*firestore.Client, error) {
	client, err := firestore.NewClient(ctx, cfg.FirebaseProject, ClientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	return client, nil
}

func NewAuthClient(ctx context.Context, app *fbapp.App) (*FirebaseAuthClient, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase auth: %w", err)
	}
	return NewFirebaseAuthClient(client), nil
}
