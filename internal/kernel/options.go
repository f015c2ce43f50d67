package kernel

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"ex-cordcache/pkg/cord"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	defaultModuleHookTimeout = 5 * time.Second
	defaultShutdownTimeout   = 10 * time.Second
	defaultLaneBuffer        = 256
	defaultStallWarning      = 5 * time.Second
)

type config struct {
	moduleHookTimeout time.Duration
	shutdownTimeout   time.Duration
	laneBuffer        int
	stallWarning      time.Duration
	logger            *slog.Logger
	onAsyncError      func(context.Context, string, error)
	registerer        prometheus.Registerer
	routing           routingConfig
}

// ModuleRoute binds one module to the driver sources it consumes.
type ModuleRoute struct {
	// Sources restricts inbound delivery to matching event sources.
	Sources []cord.EventSource
}

type routingConfig struct {
	fallback *ModuleRoute
	byModule map[string]ModuleRoute
}

// routeFor returns the route of moduleName, or the fallback route.
func (r routingConfig) routeFor(moduleName string) (ModuleRoute, bool) {
	if route, ok := r.byModule[moduleName]; ok {
		return route, true
	}
	if r.fallback != nil {
		return *r.fallback, true
	}

	return ModuleRoute{}, false
}

// Option configures a Kernel.
type Option func(*config)

func defaultConfig() config {
	logger := slog.Default()

	return config{
		moduleHookTimeout: defaultModuleHookTimeout,
		shutdownTimeout:   defaultShutdownTimeout,
		laneBuffer:        defaultLaneBuffer,
		stallWarning:      defaultStallWarning,
		logger:            logger,
		onAsyncError:      logAsyncError(logger),
	}
}

// logAsyncError reports handler failures. Recovered panics carry their stack.
func logAsyncError(logger *slog.Logger) func(context.Context, string, error) {
	return func(ctx context.Context, scope string, err error) {
		attrs := []any{"scope", scope, "error", err}
		var panicErr *PanicError
		if errors.As(err, &panicErr) {
			attrs = append(attrs, "stack", string(panicErr.Stack))
		}
		logger.ErrorContext(ctx, "cordcache async error", attrs...)
	}
}

// WithModuleHookTimeout bounds each OnRegister, OnStart and OnShutdown call.
func WithModuleHookTimeout(timeout time.Duration) Option {
	return func(cfg *config) {
		if timeout > 0 {
			cfg.moduleHookTimeout = timeout
		}
	}
}

// WithShutdownTimeout bounds the whole shutdown sequence.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(cfg *config) {
		if timeout > 0 {
			cfg.shutdownTimeout = timeout
		}
	}
}

// WithLaneBuffer sets the per-source queue depth for subscriptions that do
// not choose their own.
func WithLaneBuffer(size int) Option {
	return func(cfg *config) {
		if size > 0 {
			cfg.laneBuffer = size
		}
	}
}

// WithStallWarning sets how long a publisher waits on a full lane before the
// wait is logged. Zero disables the warning.
func WithStallWarning(after time.Duration) Option {
	return func(cfg *config) {
		if after >= 0 {
			cfg.stallWarning = after
		}
	}
}

// WithLogger sets the kernel logger. Unless WithAsyncErrorHandler is also
// given, handler failures are logged through it.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		if logger == nil {
			return
		}
		cfg.logger = logger
		cfg.onAsyncError = logAsyncError(logger)
	}
}

// WithAsyncErrorHandler replaces the sink for handler failures.
func WithAsyncErrorHandler(handler func(context.Context, string, error)) Option {
	return func(cfg *config) {
		if handler != nil {
			cfg.onAsyncError = handler
		}
	}
}

// WithMetricsRegisterer exports bus metrics through registerer.
func WithMetricsRegisterer(registerer prometheus.Registerer) Option {
	return func(cfg *config) {
		cfg.registerer = registerer
	}
}

// WithModuleRouting restricts modules to driver sources. fallback applies to
// modules without an entry in routes; nil leaves them unrestricted.
func WithModuleRouting(fallback *ModuleRoute, routes map[string]ModuleRoute) Option {
	return func(cfg *config) {
		cfg.routing.fallback = nil
		if fallback != nil {
			route := cloneRoute(*fallback)
			cfg.routing.fallback = &route
		}
		cfg.routing.byModule = make(map[string]ModuleRoute, len(routes))
		for moduleName, route := range routes {
			cfg.routing.byModule[moduleName] = cloneRoute(route)
		}
	}
}

func cloneRoute(route ModuleRoute) ModuleRoute {
	return ModuleRoute{Sources: append([]cord.EventSource(nil), route.Sources...)}
}
