package infra

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

func clientOptions(cfg *Config) []option.ClientOption {
	var opts []option.ClientOption
	if cfg.GoogleCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.GoogleCredentialsFile))
	}
	return opts
}

// NewFirestoreClient connects to the project's default database. Without a
// credentials file the application default credentials are used.
func NewFirestoreClient(ctx context.Context, cfg *Config) (*firestore.Client, error) {
	if cfg.FirebaseProjectID == "" {
		return nil, fmt.Errorf("firestore: project id is required")
	}
	client, err := firestore.NewClient(ctx, cfg.FirebaseProjectID, clientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("firestore: connect: %w", err)
	}
	return client, nil
}

// NewStorageClient builds the Cloud Storage client used for object checks.
func NewStorageClient(ctx context.Context, cfg *Config) (*storage.Client, error) {
	client, err := storage.NewClient(ctx, clientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("storage: connect: %w", err)
	}
	return client, nil
}
