// Package storage reads and writes generation inputs and outputs by object key.
package storage

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = errors.New("storage: object not found")

// Store is the object storage used by the API and the worker.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Presign(ctx context.Context, key, method string, ttl time.Duration) (string, error)
}

// Presign methods.
const (
	MethodGet = http.MethodGet
	MethodPut = http.MethodPut
)
