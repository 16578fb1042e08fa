package client

import (
	"crypto/tls"
	"log/slog"
	"time"
)

// Option is a functional option for configuring the client.
type Option func(*Options)

// Options holds all client configuration.
type Options struct {
	// TLSConfig is the TLS configuration used by DialTLS.
	TLSConfig *tls.Config

	// Logger is the structured logger commands and responses are traced
	// through at Debug level.
	Logger *slog.Logger

	// DialTimeout bounds the initial TCP/TLS handshake.
	DialTimeout time.Duration

	// ReadTimeout, if non-zero, is the deadline applied to each
	// Execute's wait for its tagged response.
	ReadTimeout time.Duration

	// WriteTimeout, if non-zero, is the deadline applied to writing a
	// command line.
	WriteTimeout time.Duration

	// MaxLiteralSize, if non-zero, rejects literals larger than this
	// many bytes rather than buffering them.
	MaxLiteralSize int64
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() *Options {
	return &Options{
		Logger:      slog.Default(),
		DialTimeout: 30 * time.Second,
	}
}

// WithTLSConfig sets the TLS configuration used by DialTLS.
func WithTLSConfig(config *tls.Config) Option {
	return func(o *Options) {
		o.TLSConfig = config
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithDialTimeout sets the dial timeout.
func WithDialTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.DialTimeout = d
	}
}

// WithReadTimeout sets the per-command response deadline.
func WithReadTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.ReadTimeout = d
	}
}

// WithWriteTimeout sets the command-write deadline.
func WithWriteTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.WriteTimeout = d
	}
}

// WithMaxLiteralSize caps the size of literals the decoder will accept.
func WithMaxLiteralSize(n int64) Option {
	return func(o *Options) {
		o.MaxLiteralSize = n
	}
}
