package core

import "context"

// PropertyStore is a generic key to JSON value store backing the
// wallet's durable local storage.
type PropertyStore interface {
	Get(ctx context.Context, key string, value any) error
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
}
