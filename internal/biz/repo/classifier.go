package repo

import (
	"context"
	"errors"
)

// ErrQuotaExceeded marks a provider rate/quota rejection. Adapters wrap it so
// the classifier can distinguish quota pressure (retry, then failover) from
// other failures (skip the chunk).
var ErrQuotaExceeded = errors.New("provider quota exceeded")

// ClassifierProvider is one language-model backend: it takes a rendered
// prompt and returns the raw response text.
type ClassifierProvider interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}
