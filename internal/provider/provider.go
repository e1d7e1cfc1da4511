// internal/provider/provider.go
package provider

import (
	"context"
	"errors"
)

// Sentinel errors for provider operations.
var (
	ErrRateLimit       = errors.New("rate limit exceeded")
	ErrTimeout         = errors.New("request timed out")
	ErrInvalidResponse = errors.New("invalid response from provider")
)

// Completer generates a text completion from a system and user message
// pair. Implementations make exactly one upstream call; nothing is
// retried automatically.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}
