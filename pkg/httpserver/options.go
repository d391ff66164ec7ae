package httpserver

import (
	"log/slog"
	"time"
)

// Option configures a Server.
type Option func(*config)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(c *config) { c.addr = addr }
}

// WithReadTimeout sets the maximum duration for reading the entire request.
func WithReadTimeout(d time.Duration) Option {
	return func(c *config) { c.readTimeout = d }
}

// WithWriteTimeout sets the maximum duration before timing out response writes.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *config) { c.writeTimeout = d }
}

// WithIdleTimeout sets the keep-alive idle limit.
func WithIdleTimeout(d time.Duration) Option {
	return func(c *config) { c.idleTimeout = d }
}

// WithShutdownTimeout sets the time allowed for graceful shutdown.
func WithShutdownTimeout(d time.Duration) Option {
	return func(c *config) { c.shutdownTimeout = d }
}

// WithLogger sets the logger used by lifecycle hooks.
func WithLogger(log *slog.Logger) Option {
	return func(c *config) { c.logger = log }
}

// WithStartHook registers a function executed right before the listener starts.
func WithStartHook(h func(*slog.Logger)) Option {
	return func(c *config) { c.startHooks = append(c.startHooks, h) }
}

// WithStopHook registers a function executed after graceful shutdown completes.
func WithStopHook(h func(*slog.Logger)) Option {
	return func(c *config) { c.stopHooks = append(c.stopHooks, h) }
}
