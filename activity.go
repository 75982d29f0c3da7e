package auth

import (
	"context"
	"time"
)

// ActivityEventType names an auditable auth action
type ActivityEventType string

const (
	ActivityEventLoginSuccess  ActivityEventType = "auth.login.success"
	ActivityEventLoginFailure  ActivityEventType = "auth.login.failure"
	ActivityEventTokenRejected ActivityEventType = "auth.token.rejected"
	ActivityEventLogout        ActivityEventType = "auth.logout"
)

// ActivityEvent is emitted for every login, rejected token and logout.
// Reason is one of the internal rejection codes or an ErrorKind; it is never
// shown to callers. Events carry no credential material.
type ActivityEvent struct {
	Type       ActivityEventType
	Username   string
	Reason     string
	OccurredAt time.Time
}

// ActivitySink receives activity events. Record errors are logged and
// otherwise ignored, so a failing sink never blocks a login.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type discardActivity struct{}

func (discardActivity) Record(context.Context, ActivityEvent) error { return nil }

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return discardActivity{}
	}
	return s
}
