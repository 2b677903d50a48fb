package service

import (
	"context"
	"time"
)

// IdempotencyState classifies the outcome of beginning an idempotent request.
type IdempotencyState string

const (
	// IdempotencyStateNew means this key has not been seen and the caller
	// should execute the operation.
	IdempotencyStateNew IdempotencyState = "new"
	// IdempotencyStateInProgress means another request holds the key and has
	// not completed yet.
	IdempotencyStateInProgress IdempotencyState = "in_progress"
	// IdempotencyStateReplay means the operation already completed and the
	// recorded response should be returned verbatim.
	IdempotencyStateReplay IdempotencyState = "replay"
	// IdempotencyStateConflict means the key was reused with a different
	// request fingerprint.
	IdempotencyStateConflict IdempotencyState = "conflict"
)

// CachedHTTPResponse is the stored response replayed for duplicate requests.
type CachedHTTPResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

type IdempotencyBeginResult struct {
	State  IdempotencyState
	Cached *CachedHTTPResponse
}

// IdempotencyStore tracks write-request keys so that retried requests execute
// the underlying operation at most once per key within the ttl.
type IdempotencyStore interface {
	Begin(ctx context.Context, scope, key, fingerprint string, ttl time.Duration) (IdempotencyBeginResult, error)
	Complete(ctx context.Context, scope, key, fingerprint string, response CachedHTTPResponse, ttl time.Duration) error
}
