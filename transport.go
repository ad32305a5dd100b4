package geoclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Doer executes a single HTTP request. *http.Client satisfies it; tests
// inject counting or canned doubles.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RawResponse is the transport-level outcome of one call: an HTTP status
// and the full body. It is consumed entirely within a single geocode or
// reverse invocation.
type RawResponse struct {
	Status int
	Body   []byte
}

// Invoker builds provider request URLs and executes them. It is
// constructed once per adapter from the merged Config and process
// defaults, and is immutable afterwards.
type Invoker struct {
	provider  string
	scheme    string
	domain    string
	userAgent string
	timeout   time.Duration
	format    string
	client    Doer
	logger    *slog.Logger
}

// NewInvoker merges cfg over the process defaults and returns a ready
// invoker for the named provider. cfg may be nil. The domain must be set
// either by the provider's constructor or the caller's Config.
func NewInvoker(provider string, cfg *Config) (*Invoker, error) {
	d := processDefaults
	merged := Config{}
	if cfg != nil {
		merged = *cfg
	}
	if merged.Scheme == "" {
		merged.Scheme = d.Scheme
	}
	if merged.Scheme != "http" && merged.Scheme != "https" {
		return nil, &Error{Kind: KindQuery, Provider: provider, Message: fmt.Sprintf("unsupported scheme %q", merged.Scheme)}
	}
	if merged.Domain == "" {
		return nil, &Error{Kind: KindQuery, Provider: provider, Message: "no API domain configured"}
	}
	if merged.Timeout == 0 {
		merged.Timeout = d.Timeout
	}
	if merged.UserAgent == "" {
		merged.UserAgent = d.UserAgent
	}
	if merged.ProxyURL == "" {
		merged.ProxyURL = d.ProxyURL
	}
	if merged.TLSConfig == nil {
		merged.TLSConfig = d.TLSConfig
	}
	if merged.Logger == nil {
		merged.Logger = d.Logger
	}

	client := merged.Transport
	if client == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = merged.TLSConfig
		if merged.ProxyURL != "" {
			proxy, err := url.Parse(merged.ProxyURL)
			if err != nil {
				return nil, &Error{Kind: KindQuery, Provider: provider, Message: fmt.Sprintf("invalid proxy URL %q", merged.ProxyURL), Err: err}
			}
			transport.Proxy = http.ProxyURL(proxy)
		}
		client = &http.Client{Transport: transport}
	}

	return &Invoker{
		provider:  provider,
		scheme:    merged.Scheme,
		domain:    strings.TrimSuffix(merged.Domain, "/"),
		userAgent: merged.UserAgent,
		timeout:   merged.Timeout,
		format:    merged.Format,
		client:    client,
		logger:    merged.Logger,
	}, nil
}

// FormatQuery applies the configured output-format template to a forward
// geocode query.
func (inv *Invoker) FormatQuery(q string) string {
	if inv.format == "" {
		return q
	}
	return fmt.Sprintf(inv.format, q)
}

// Get issues an HTTP GET for path on the configured scheme and domain with
// the serialized params. The timeout override takes precedence over the
// adapter default; zero keeps the default, negative disables the deadline.
// Network-level failures come back classified as KindTimeout or
// KindUnavailable; any HTTP status, including non-2xx, is returned in the
// RawResponse for the provider to interpret.
func (inv *Invoker) Get(ctx context.Context, path string, params url.Values, timeout time.Duration) (*RawResponse, error) {
	fullURL := inv.scheme + "://" + inv.domain + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}
	inv.logger.Debug("geocoder request", "provider", inv.provider, "url", fullURL)

	if timeout == 0 {
		timeout = inv.timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, &Error{Kind: KindQuery, Provider: inv.provider, Message: "build request", Err: err}
	}
	req.Header.Set("User-Agent", inv.userAgent)

	resp, err := inv.client.Do(req)
	if err != nil {
		return nil, inv.classifyTransport(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, inv.classifyTransport(err)
	}
	return &RawResponse{Status: resp.StatusCode, Body: body}, nil
}

func (inv *Invoker) classifyTransport(err error) *Error {
	kind := KindUnavailable
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		kind = KindTimeout
	}
	return &Error{Kind: kind, Provider: inv.provider, Message: "transport failure", Err: err}
}

// ClassifyStatus maps a non-2xx HTTP status to the shared taxonomy. It
// returns nil for 2xx. Providers call it only after checking for a
// body-level signal, which takes precedence when both are present.
func (inv *Invoker) ClassifyStatus(raw *RawResponse) *Error {
	if raw.Status >= 200 && raw.Status < 300 {
		return nil
	}
	kind := KindService
	switch raw.Status {
	case http.StatusBadRequest, http.StatusRequestURITooLong:
		kind = KindQuery
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusProxyAuthRequired:
		kind = KindAuth
	case http.StatusPaymentRequired, http.StatusTooManyRequests:
		kind = KindQuota
	case http.StatusGatewayTimeout:
		kind = KindTimeout
	}
	return &Error{
		Kind:     kind,
		Provider: inv.provider,
		Message:  bodySnippet(raw.Body),
		Status:   raw.Status,
	}
}

// bodySnippet trims an error body for inclusion in a message without
// dumping megabytes into logs.
func bodySnippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
