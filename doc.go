// Package geoclient provides a unified client contract over independent
// geocoding web services.
//
// The library is organized into three logical parts:
//
// # Core
//
// The root package holds everything providers share: the Point and Location
// value types, the normalized error taxonomy, the per-call Options and
// per-adapter Config with process-wide defaults, the HTTP invoker, and the
// Geocoder contract with its provider registry. The core never computes
// coordinates itself; it standardizes how queries are sent and how answers
// are interpreted.
//
// # Providers
//
// The provider subpackages implement the contract for concrete services
// (Yandex, Google, Pelias, Geocode Earth). Each one supplies only its query
// parameter serialization and response parsing; transport, configuration
// precedence, and error classification come from the core. Providers
// register themselves, so a blank import is enough to make one available
// through New:
//
//	import _ "github.com/couchcryptid/geoclient/provider/yandex"
//
//	gc, err := geoclient.New("yandex", geoclient.Settings{APIKey: key})
//	locs, err := gc.Geocode(ctx, "435 north michigan ave, chicago il", nil)
//
// # Decorators
//
// Cached and RateLimited wrap any Geocoder with result memoization and
// request pacing. Retry policy is deliberately not provided: the core never
// retries, and rate-limit responses surface as classified errors so callers
// can layer their own policy.
package geoclient
