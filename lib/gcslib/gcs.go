package gcslib

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/artie-labs/snowflow/lib/config"
)

type GCSClient struct {
	client *storage.Client
}

func NewGCSClient(ctx context.Context, settings config.GCSSettings) (GCSClient, error) {
	var opts []option.ClientOption
	if settings.PathToCredentials != "" {
		opts = append(opts, option.WithCredentialsFile(settings.PathToCredentials))
	}

	if settings.ProjectID != "" {
		opts = append(opts, option.WithQuotaProject(settings.ProjectID))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return GCSClient{}, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return GCSClient{client: client}, nil
}

// HasPrefix returns whether at least one object exists under [prefix]. Folders in GCS are virtual, so we list objects.
func (g GCSClient) HasPrefix(ctx context.Context, bucket, prefix string) (bool, error) {
	it := g.client.Bucket(bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	if _, err := it.Next(); err != nil {
		if errors.Is(err, iterator.Done) {
			return false, nil
		}

		if errors.Is(err, storage.ErrBucketNotExist) {
			return false, fmt.Errorf("bucket %q does not exist: %w", bucket, err)
		}

		return false, fmt.Errorf("failed to list gs://%s/%s: %w", bucket, prefix, err)
	}

	return true, nil
}

// PutMarker writes an empty object at [key].
func (g GCSClient) PutMarker(ctx context.Context, bucket, key string) error {
	writer := g.client.Bucket(bucket).Object(key).NewWriter(ctx)
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to upload marker to gs://%s/%s: %w", bucket, key, err)
	}

	return nil
}

func (g GCSClient) Close() error {
	return g.client.Close()
}
