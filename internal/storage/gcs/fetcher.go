// Package gcs fetches uploaded documents from Google Cloud Storage.
package gcs

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	storage "google.golang.org/api/storage/v1"

	"github.com/kailas-cloud/docdex/internal/domain"
)

// Fetcher retrieves an object's bytes by bucket and name.
type Fetcher interface {
	Fetch(ctx context.Context, bucket, object string) ([]byte, error)
}

// Client implements Fetcher over the Cloud Storage JSON API using
// application-default credentials.
type Client struct {
	svc *storage.Service
}

// NewClient creates a storage client. Credential problems surface here,
// before any event is processed.
func NewClient(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	svc, err := storage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: create storage service: %v", domain.ErrAuthFailed, err)
	}
	return &Client{svc: svc}, nil
}

// Fetch downloads the full object body.
func (c *Client) Fetch(ctx context.Context, bucket, object string) ([]byte, error) {
	resp, err := c.svc.Objects.Get(bucket, object).Context(ctx).Download()
	if err != nil {
		return nil, mapAPIError(bucket, object, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read object gs://%s/%s: %w", bucket, object, err)
	}
	return data, nil
}

func mapAPIError(bucket, object string, err error) error {
	if apiErr, ok := err.(*googleapi.Error); ok {
		switch apiErr.Code {
		case http.StatusNotFound:
			return fmt.Errorf("object gs://%s/%s: %w", bucket, object, domain.ErrNotFound)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("object gs://%s/%s: %w", bucket, object, domain.ErrAuthFailed)
		}
	}
	return fmt.Errorf("download gs://%s/%s: %w", bucket, object, err)
}
