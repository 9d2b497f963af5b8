// Package ratelimit guards sensitive auth endpoints with a fixed-window,
// per-client request budget. Buckets are keyed by client identity and
// endpoint class; one client's exhaustion never affects another's budget.
package ratelimit

import (
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// DefaultCapacity is the per-window budget applied when none is configured.
const DefaultCapacity = 5

// DefaultWindow is the window length applied when none is configured.
const DefaultWindow = time.Minute

// ErrRateLimitExceeded is returned when a client key exhausts its budget.
var ErrRateLimitExceeded = goerrors.New("rate limit exceeded", goerrors.CategoryOperation).
	WithTextCode("RATE_LIMIT_EXCEEDED").
	WithCode(http.StatusTooManyRequests)

// Logger matches the parent package's logger shape so callers can share one.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Config defines the configuration for the rate limit middleware
type Config struct {
	// Skip defines a function to skip middleware
	Skip func(router.Context) bool

	// Capacity is the number of requests admitted per key per window
	Capacity int

	// Window is the fixed window length; the budget resets when it elapses
	Window time.Duration

	// Store tracks per-key consumption. Defaults to an in-process
	// MemoryStore; use RedisStore for multi-instance deployments.
	Store Store

	// Protected lists path prefixes subject to limiting. Requests outside
	// every prefix pass through without consuming budget. Empty protects
	// every path.
	Protected []string

	// KeyFunc derives the client key. The default uses the first entry of
	// the X-Forwarded-For header when present, else the connection address.
	KeyFunc func(router.Context) string

	// ErrorHandler responds to rejected requests
	ErrorHandler router.ErrorHandler

	Logger Logger
}

// New creates a rate limiting middleware. Admission is immediate: a rejected
// request is answered with 429 right away, never queued or delayed.
func New(config ...Config) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		cfg := configDefault(config...)

		return func(ctx router.Context) error {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return ctx.Next()
			}

			class, protected := endpointClass(ctx.Path(), cfg.Protected)
			if !protected {
				return ctx.Next()
			}

			key := cfg.KeyFunc(ctx) + ":" + class

			if err := cfg.Store.Admit(ctx.Context(), key, cfg.Capacity, cfg.Window); err != nil {
				if goerrors.Is(err, ErrRateLimitExceeded) {
					cfg.Logger.Warn("rate limit exceeded: %s", print.MaybePrettyJSON(map[string]any{
						"class":    class,
						"capacity": cfg.Capacity,
						"window":   cfg.Window.String(),
					}))
					return cfg.ErrorHandler(ctx, ErrRateLimitExceeded)
				}
				cfg.Logger.Error("rate limit store error: %v", err)
				return cfg.ErrorHandler(ctx, err)
			}

			return ctx.Next()
		}
	}
}

// ClientKey derives the rate limit identity for a request: the first entry
// of the forwarded-address header when present, else the direct connection
// address.
func ClientKey(ctx router.Context) string {
	forwarded := ctx.GetString("X-Forwarded-For", "")
	if forwarded != "" {
		if idx := strings.Index(forwarded, ","); idx >= 0 {
			forwarded = forwarded[:idx]
		}
		if addr := strings.TrimSpace(forwarded); addr != "" {
			return addr
		}
	}
	return ctx.IP()
}

func endpointClass(path string, protected []string) (string, bool) {
	if len(protected) == 0 {
		return path, true
	}
	for _, prefix := range protected {
		if strings.HasPrefix(path, prefix) {
			return prefix, true
		}
	}
	return "", false
}

func configDefault(config ...Config) Config {
	cfg := Config{}
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}

	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}

	if cfg.Store == nil {
		cfg.Store = NewMemoryStore()
	}

	if cfg.KeyFunc == nil {
		cfg.KeyFunc = ClientKey
	}

	if cfg.Logger == nil {
		cfg.Logger = defLogger{}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = defaultErrorHandler
	}

	return cfg
}

func defaultErrorHandler(ctx router.Context, err error) error {
	if goerrors.Is(err, ErrRateLimitExceeded) {
		return ctx.Status(http.StatusTooManyRequests).SendString("rate limit exceeded")
	}
	return ctx.Status(http.StatusInternalServerError).SendString("rate limit check failed")
}
