package minio

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/evalhub/evalhub/pkg/observability"
)

// Get downloads a single object from the corpus bucket and returns its bytes.
func (m *Minio) Get(ctx context.Context, objectKey string) ([]byte, error) {
	start := time.Now()

	reader, err := m.Client.GetObject(ctx, m.cfg.Connection.BucketName, objectKey, minio.GetObjectOptions{})
	if err != nil {
		m.observeOperation("get", objectKey, time.Since(start), err, 0)
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer func(reader io.ReadCloser) {
		err := reader.Close()
		if err != nil {
			m.logger.Error("failed to close object reader", err, map[string]interface{}{})
		}
	}(reader)

	data, err := io.ReadAll(reader)
	m.observeOperation("get", objectKey, time.Since(start), err, int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to read object data: %w", err)
	}

	return data, nil
}

// List returns the keys of all objects under the given prefix.
func (m *Minio) List(ctx context.Context, prefix string) ([]string, error) {
	start := time.Now()

	var keys []string
	for object := range m.Client.ListObjects(ctx, m.cfg.Connection.BucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			m.observeOperation("list", prefix, time.Since(start), object.Err, int64(len(keys)))
			return nil, fmt.Errorf("failed to list objects: %w", object.Err)
		}
		keys = append(keys, object.Key)
	}

	m.observeOperation("list", prefix, time.Since(start), nil, int64(len(keys)))
	return keys, nil
}

// observeOperation notifies the observer about an operation if one is configured.
func (m *Minio) observeOperation(operation, resource string, duration time.Duration, err error, size int64) {
	if m == nil || m.observer == nil {
		return
	}

	m.observer.ObserveOperation(observability.OperationContext{
		Component: "minio",
		Operation: operation,
		Resource:  resource,
		Duration:  duration,
		Error:     err,
		Size:      size,
	})
}
