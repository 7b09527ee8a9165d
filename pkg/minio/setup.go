package minio

import (
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/evalhub/evalhub/pkg/observability"
)

// Minio is a read-oriented wrapper around the MinIO client used to load
// the content corpus from object storage.
type Minio struct {
	Client   *minio.Client
	cfg      Config
	logger   Logger
	observer observability.Observer
}

// NewClient creates and validates a new MinIO client.
// It establishes the connection, validates credentials by listing buckets,
// and verifies that the configured corpus bucket exists.
//
// Example:
//
//	client, err := minio.NewClient(config, myLogger)
//	if err != nil {
//	    return fmt.Errorf("failed to initialize MinIO client: %w", err)
//	}
func NewClient(cfg Config, logger Logger) (*Minio, error) {
	client, err := connectToMinio(cfg, logger)
	if err != nil {
		logger.Error("failed to connect to minio", err, map[string]interface{}{
			"endpoint": cfg.Connection.Endpoint,
			"region":   cfg.Connection.Region,
			"secure":   cfg.Connection.UseSSL,
			"bucket":   cfg.Connection.BucketName,
		})
		return nil, err
	}

	minioClient := &Minio{
		Client: client,
		cfg:    cfg,
		logger: logger,
	}

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := minioClient.validateConnection(timeoutCtx); err != nil {
		logger.Error("failed to validate minio connection", err, map[string]interface{}{
			"endpoint": cfg.Connection.Endpoint,
			"bucket":   cfg.Connection.BucketName,
		})
		return nil, err
	}
	if err := minioClient.ensureBucketExists(timeoutCtx); err != nil {
		logger.Error("failed to verify bucket", err, map[string]interface{}{
			"endpoint": cfg.Connection.Endpoint,
			"bucket":   cfg.Connection.BucketName,
		})
		return nil, err
	}

	return minioClient, nil
}

// WithObserver attaches an observer to the client and returns the same
// instance for chaining.
func (m *Minio) WithObserver(observer observability.Observer) *Minio {
	m.observer = observer
	return m
}

// connectToMinio creates the underlying MinIO client.
func connectToMinio(cfg Config, logger Logger) (*minio.Client, error) {
	if cfg.Connection.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint cannot be empty")
	}

	logger.Info("Connecting to MinIO", nil, map[string]interface{}{
		"endpoint": cfg.Connection.Endpoint,
		"region":   cfg.Connection.Region,
		"secure":   cfg.Connection.UseSSL,
	})

	client, err := minio.New(cfg.Connection.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Connection.AccessKeyID, cfg.Connection.SecretAccessKey, ""),
		Secure: cfg.Connection.UseSSL,
		Region: cfg.Connection.Region,
	})

	if err != nil {
		return nil, err
	}
	return client, nil
}

// validateConnection performs a simple operation to validate connectivity to MinIO.
// It attempts to list buckets to ensure the connection and credentials are valid.
func (m *Minio) validateConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := m.Client.ListBuckets(ctx)
	if err != nil {
		return err
	}

	return nil
}

// ensureBucketExists checks that the configured corpus bucket exists.
// Unlike a writable store, a missing corpus bucket is an error rather than
// something to create: the corpus is published by an external pipeline.
func (m *Minio) ensureBucketExists(ctx context.Context) error {
	bucketName := m.cfg.Connection.BucketName
	if bucketName == "" {
		return fmt.Errorf("bucket name is empty")
	}

	exists, err := m.Client.BucketExists(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("corpus bucket %q does not exist", bucketName)
	}

	return nil
}
