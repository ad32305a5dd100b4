package geoclient

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Message(t *testing.T) {
	e := &Error{Kind: KindQuota, Provider: "googlev3", Message: "rate limited", Token: "OVER_QUERY_LIMIT", Status: 200}
	assert.Equal(t, "googlev3: quota: rate limited", e.Error())

	// Falls back to the token, then the status, when no message exists.
	assert.Equal(t, "googlev3: quota: OVER_QUERY_LIMIT",
		(&Error{Kind: KindQuota, Provider: "googlev3", Token: "OVER_QUERY_LIMIT"}).Error())
	assert.Equal(t, "yandex: service: http status 502",
		(&Error{Kind: KindService, Provider: "yandex", Status: 502}).Error())
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	wrapped := fmt.Errorf("call failed: %w", &Error{Kind: KindUnavailable, Message: "transport failure", Err: cause})

	var ge *Error
	assert.True(t, errors.As(wrapped, &ge))
	assert.Equal(t, KindUnavailable, ge.Kind)
	assert.True(t, errors.Is(wrapped, cause))
}

func TestKindHelpers(t *testing.T) {
	assert.Equal(t, KindTimeout, KindOf(&Error{Kind: KindTimeout}))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))

	assert.True(t, IsTimeout(&Error{Kind: KindTimeout}))
	assert.True(t, IsQuota(&Error{Kind: KindQuota}))
	assert.True(t, IsAuth(&Error{Kind: KindAuth}))
	assert.False(t, IsQuota(&Error{Kind: KindService}))
}

func TestKind_String(t *testing.T) {
	for kind, want := range map[Kind]string{
		KindUnknown:     "unknown",
		KindQuery:       "query",
		KindTimeout:     "timeout",
		KindUnavailable: "unavailable",
		KindService:     "service",
		KindQuota:       "quota",
		KindParse:       "parse",
		KindAuth:        "auth",
	} {
		assert.Equal(t, want, kind.String())
	}
}
