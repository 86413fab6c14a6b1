package sentry

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"

	"kbmetrics/pkg/errors"
)

const defaultFlushTimeout = 2 * time.Second

// Tracker implements error tracking via Sentry
type Tracker struct {
	hub *sentry.Hub
}

var _ errors.Tracker = (*Tracker)(nil)

// New creates a new Sentry tracker. release is reported with every event.
func New(dsn, environment, release string) (*Tracker, error) {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
		Release:     release,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to init sentry")
	}

	return &Tracker{
		hub: sentry.CurrentHub(),
	}, nil
}

// CaptureError sends an error to Sentry. Tags such as database and
// operation are attached to the event.
func (t *Tracker) CaptureError(ctx context.Context, err error, tags map[string]string) error {
	if err == nil {
		return nil
	}

	hub := t.hub.Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		if db, ok := tags["database"]; ok {
			scope.SetFingerprint([]string{"{{ default }}", db, tags["operation"]})
		}
	})

	hub.CaptureException(err)
	return nil
}

// CaptureMessage sends a message to Sentry
func (t *Tracker) CaptureMessage(ctx context.Context, message string, level errors.Level, tags map[string]string) error {
	hub := t.hub.Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		scope.SetLevel(convertLevel(level))
	})

	hub.CaptureMessage(message)
	return nil
}

// AddBreadcrumb records a store operation leading up to a later error
func (t *Tracker) AddBreadcrumb(ctx context.Context, message string, category string, level errors.Level, data map[string]interface{}) {
	t.hub.AddBreadcrumb(&sentry.Breadcrumb{
		Message:  message,
		Category: category,
		Level:    convertLevel(level),
		Data:     data,
	}, nil)
}

// Flush waits for pending events, bounded by the context deadline
func (t *Tracker) Flush(ctx context.Context) error {
	timeout := defaultFlushTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if !t.hub.Flush(timeout) {
		return errors.Wrap(errors.ErrUnavailable, "sentry flush timed out")
	}
	return nil
}

func convertLevel(level errors.Level) sentry.Level {
	switch level {
	case errors.LevelDebug:
		return sentry.LevelDebug
	case errors.LevelInfo:
		return sentry.LevelInfo
	case errors.LevelWarning:
		return sentry.LevelWarning
	case errors.LevelError:
		return sentry.LevelError
	case errors.LevelFatal:
		return sentry.LevelFatal
	default:
		return sentry.LevelInfo
	}
}
