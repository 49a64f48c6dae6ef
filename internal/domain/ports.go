package domain

import (
	"context"
	"time"
)

// Identity is the authenticated caller as resolved from a bearer token.
type Identity struct {
	UserID      string
	Email       string
	DisplayName string
}

// TokenVerifier resolves a bearer token to an identity.
type TokenVerifier interface {
	Verify(token string) (*Identity, error)
}

// TokenIssuer issues tokens (e.g. JWT) for an identity.
type TokenIssuer interface {
	Issue(identity Identity, expiry time.Duration) (string, error)
}

// Transactor runs fn in a serializable transaction. Repositories called with the
// context passed to fn take part in that transaction. When the store reports a
// serialization conflict the whole of fn is run again, so fn must not have side
// effects outside the store.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Cache is a best-effort key/value store. A value that was set may be gone on the next Get.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Deferred task names.
const (
	TaskSetFeaturedSpeaker     = "set_featured_speaker"
	TaskSendConfirmationEmail  = "send_confirmation_email"
	TaskParamWebsafeConference = "websafeConferenceKey"
	TaskParamEmail             = "email"
	TaskParamConferenceName    = "conferenceName"
	TaskParamOrganizerName     = "organizerName"
)

// TaskQueue accepts deferred work. Delivery is at least once; Enqueue does not wait for the task to run.
type TaskQueue interface {
	Enqueue(ctx context.Context, task string, params map[string]string) error
}

// TaskHandlerFunc runs one delivery of a task. A returned error makes the queue retry it.
type TaskHandlerFunc func(ctx context.Context, params map[string]string) error

// TaskRegistry binds task names to handlers.
type TaskRegistry interface {
	Handle(task string, handler TaskHandlerFunc)
}
