package store

import (
	"context"
)

type Invalidator interface {
	Invalidate(context.Context, []string) error
}

// NopInvalidator is used when nothing caches the uploaded objects.
type NopInvalidator struct{}

func (NopInvalidator) Invalidate(context.Context, []string) error { return nil }
