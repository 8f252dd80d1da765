// Package quota enforces per-identity request quotas with fixed-window counters kept in the
// shared cache store. Two windows run side by side, one per minute and one per day, and a
// request is admitted only when both admit it.
package quota

import (
	"context"
	"time"

	"github.com/allisson/nationalid/internal/apikey/domain"
	"github.com/allisson/nationalid/internal/cache"
	apperrors "github.com/allisson/nationalid/internal/errors"
)

const (
	// MinuteScope names the per-minute window.
	MinuteScope = "api_key"

	// DayScope names the per-day window.
	DayScope = "api_key_daily"

	counterNamespace = "throttle"
)

// ErrThrottled is returned when any window rejects the request.
var ErrThrottled = apperrors.Wrap(apperrors.ErrTooManyRequests, "request was throttled")

// Subject is the identity a request is counted against. APIKey is nil for unauthenticated
// requests, in which case the anonymous defaults apply.
type Subject struct {
	Identity string
	APIKey   *domain.APIKey
}

// ForAPIKey counts the request against the presented secret. Two keys never share a secret,
// so this is one counter per key record in practice.
func ForAPIKey(secret string, apiKey *domain.APIKey) Subject {
	return Subject{Identity: "key:" + secret, APIKey: apiKey}
}

// ForClientIP counts an unauthenticated request against the caller address.
func ForClientIP(ip string) Subject {
	return Subject{Identity: "ip:" + ip}
}

// ForPresentedSecret counts an unauthenticated request against a secret that was presented but
// not yet resolved.
func ForPresentedSecret(secret string) Subject {
	return Subject{Identity: "key:" + secret}
}

// LimitResolver returns the number of requests subject may make per window.
type LimitResolver func(subject Subject) int

// FixedWindow is a single throttle. The counter for (scope, identity) starts on first use and
// resets wholesale once window has elapsed.
type FixedWindow struct {
	store  cache.Store
	scope  string
	window time.Duration
	limit  LimitResolver
}

// NewFixedWindow creates a FixedWindow.
func NewFixedWindow(store cache.Store, scope string, window time.Duration, limit LimitResolver) *FixedWindow {
	return &FixedWindow{
		store:  store,
		scope:  scope,
		window: window,
		limit:  limit,
	}
}

// Scope returns the throttle scope name.
func (w *FixedWindow) Scope() string {
	return w.scope
}

// Allow increments the subject's counter and reports whether it is still within the limit.
func (w *FixedWindow) Allow(ctx context.Context, subject Subject) (bool, error) {
	count, err := w.store.IncrementWindow(ctx, cache.Key(counterNamespace, w.scope, subject.Identity), w.window)
	if err != nil {
		return false, apperrors.Wrapf(err, "failed to increment %s window", w.scope)
	}
	return count <= int64(w.limit(subject)), nil
}

// Config holds the limits applied to unauthenticated subjects.
type Config struct {
	AnonymousPerMinute int
	AnonymousPerDay    int
}

// DefaultConfig returns 2 requests per minute and 100 per day for unauthenticated subjects.
func DefaultConfig() Config {
	return Config{
		AnonymousPerMinute: 2,
		AnonymousPerDay:    100,
	}
}

// Enforcer admits a request only when every window allows it.
type Enforcer struct {
	windows []*FixedWindow
}

// NewEnforcer creates the minute and day windows. Authenticated subjects use the quotas stored
// on their key record; anonymous subjects use cfg.
func NewEnforcer(store cache.Store, cfg Config) *Enforcer {
	perMinute := func(subject Subject) int {
		if subject.APIKey != nil {
			return subject.APIKey.QuotaPerMinute
		}
		return cfg.AnonymousPerMinute
	}
	perDay := func(subject Subject) int {
		if subject.APIKey != nil {
			return subject.APIKey.QuotaPerDay
		}
		return cfg.AnonymousPerDay
	}

	return NewEnforcerWithWindows(
		NewFixedWindow(store, MinuteScope, time.Minute, perMinute),
		NewFixedWindow(store, DayScope, 24*time.Hour, perDay),
	)
}

// NewEnforcerWithWindows creates an Enforcer over arbitrary windows.
func NewEnforcerWithWindows(windows ...*FixedWindow) *Enforcer {
	return &Enforcer{windows: windows}
}

// Admit evaluates every window, so each one counts the request even after another has rejected
// it. Returns ErrThrottled when any window rejects, or a wrapped store error.
func (e *Enforcer) Admit(ctx context.Context, subject Subject) error {
	admitted := true
	for _, window := range e.windows {
		ok, err := window.Allow(ctx, subject)
		if err != nil {
			return err
		}
		if !ok {
			admitted = false
		}
	}

	if !admitted {
		return ErrThrottled
	}
	return nil
}
