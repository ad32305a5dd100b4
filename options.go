package geoclient

import (
	"crypto/tls"
	"io"
	"log/slog"
	"time"
)

// Defaults holds the process-wide fallback settings shared by every
// adapter. Like the package clock in most services, it is meant to be set
// once at startup before any adapter is constructed and treated as
// read-only afterwards; it is not safe to change concurrently with calls.
type Defaults struct {
	Scheme    string
	Timeout   time.Duration
	UserAgent string
	ProxyURL  string
	TLSConfig *tls.Config
	Logger    *slog.Logger
}

const defaultUserAgent = "geoclient/1.0"

var processDefaults = builtinDefaults()

func builtinDefaults() Defaults {
	return Defaults{
		Scheme:    "https",
		Timeout:   5 * time.Second,
		UserAgent: defaultUserAgent,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// SetDefaults replaces the process-wide defaults. Zero fields fall back to
// the built-in values (https scheme, 5s timeout, library user agent,
// discarding logger).
func SetDefaults(d Defaults) {
	b := builtinDefaults()
	if d.Scheme == "" {
		d.Scheme = b.Scheme
	}
	if d.Timeout == 0 {
		d.Timeout = b.Timeout
	}
	if d.UserAgent == "" {
		d.UserAgent = b.UserAgent
	}
	if d.Logger == nil {
		d.Logger = b.Logger
	}
	processDefaults = d
}

// Config holds per-adapter settings. All fields are optional; zero fields
// inherit the process-wide defaults. A Config is read at construction only
// and never mutated afterwards, so a built adapter is safe for concurrent
// use.
type Config struct {
	// Scheme overrides the URL scheme ("https" unless changed).
	Scheme string
	// Domain overrides the provider's default API domain, e.g. to point
	// at a self-hosted instance or a test server.
	Domain string
	// Timeout is the default per-call deadline. Negative disables the
	// deadline entirely.
	Timeout time.Duration
	// ProxyURL routes requests through an HTTP proxy.
	ProxyURL string
	// TLSConfig customizes certificate verification.
	TLSConfig *tls.Config
	// UserAgent is sent on every request.
	UserAgent string
	// Format is an optional fmt template with a single %s verb applied to
	// every forward-geocode query, e.g. "%s, Chicago IL".
	Format string
	// Logger receives a debug-level trace of every outgoing URL. Note
	// that credentials embedded in query parameters are visible in this
	// trace.
	Logger *slog.Logger
	// Transport replaces the HTTP client, primarily for tests. When set,
	// Timeout/ProxyURL/TLSConfig still apply to the per-call context but
	// connection behavior belongs to the supplied transport.
	Transport Doer
}

// Options are per-call settings. A nil *Options means the defaults:
// exactly-one enabled, adapter timeout, no filters.
type Options struct {
	// ExactlyOne requests a single best match. Where the provider
	// supports a result-count parameter the request is constrained to
	// one entry; otherwise the list is truncated locally. The result
	// slice is empty when the provider found nothing, which is not an
	// error.
	ExactlyOne bool
	// Timeout overrides the adapter default for this call only. Zero
	// keeps the adapter default; negative disables the deadline.
	Timeout time.Duration
	// Language overrides the adapter's configured response language.
	Language string
	// Filters carries provider-specific structured restrictions under
	// provider-documented keys, e.g. "kind" for Yandex reverse lookups
	// or "components" for Google.
	Filters map[string]string
}

// Resolved returns the effective per-call options, mapping a nil receiver
// to the documented defaults.
func (o *Options) Resolved() Options {
	if o == nil {
		return Options{ExactlyOne: true}
	}
	return *o
}
