package geoclient

import (
	"errors"
	"fmt"
)

// Kind is the normalized failure category every provider maps its own
// error signals into.
type Kind int

const (
	// KindUnknown is the zero value; it never leaves the library.
	KindUnknown Kind = iota
	// KindQuery marks invalid caller input detected before any network
	// call: bad coordinate forms, conflicting configuration, invalid
	// auxiliary parameters.
	KindQuery
	// KindTimeout marks a network call that did not complete within the
	// configured timeout.
	KindTimeout
	// KindUnavailable marks a connection-level failure: DNS, connection
	// refused, TLS handshake.
	KindUnavailable
	// KindService marks an application-level failure signaled by the
	// provider, either through an embedded error body or an unmapped
	// status token.
	KindService
	// KindQuota marks rate-limit or quota exhaustion. Kept separate from
	// KindService because callers usually apply a different retry policy.
	KindQuota
	// KindParse marks a response body that could not be interpreted into
	// the expected structure.
	KindParse
	// KindAuth marks rejected credentials: missing or invalid API key,
	// mismatched signing secret.
	KindAuth
)

func (k Kind) String() string {
	switch k {
	case KindQuery:
		return "query"
	case KindTimeout:
		return "timeout"
	case KindUnavailable:
		return "unavailable"
	case KindService:
		return "service"
	case KindQuota:
		return "quota"
	case KindParse:
		return "parse"
	case KindAuth:
		return "auth"
	default:
		return "unknown"
	}
}

// Error is the classified failure returned by every adapter. It preserves
// the original provider message, HTTP status, and status token so nothing
// is silently dropped during normalization.
type Error struct {
	Kind     Kind
	Provider string
	Message  string
	Status   int    // HTTP status code, 0 when not applicable
	Token    string // provider status token, "" when not applicable
	Err      error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Token != "" {
		msg = e.Token
	}
	if msg == "" && e.Status != 0 {
		msg = fmt.Sprintf("http status %d", e.Status)
	}
	prefix := "geocode"
	if e.Provider != "" {
		prefix = e.Provider
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", prefix, e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", prefix, e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the normalized kind from err, or KindUnknown if err is
// not a classified geocoding error.
func KindOf(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindUnknown
}

// IsTimeout reports whether err is a classified transport timeout.
func IsTimeout(err error) bool { return KindOf(err) == KindTimeout }

// IsQuota reports whether err is a classified quota or rate-limit failure.
func IsQuota(err error) bool { return KindOf(err) == KindQuota }

// IsAuth reports whether err is a classified credential rejection.
func IsAuth(err error) bool { return KindOf(err) == KindAuth }
