package geoclient

import (
	"context"
	"fmt"
	"sort"
	"sync"

	json "github.com/goccy/go-json"
)

// Location is one geocoding result: a human-readable label, the resolved
// coordinate, and the provider's raw payload for the entry. Values are
// created by provider parsers and owned by the caller afterwards.
type Location struct {
	Label string
	Point Point
	Raw   json.RawMessage
}

// Geocoder is the contract every provider adapter implements. Callers
// holding a Geocoder can use any provider without knowing its identity.
//
// Geocode resolves a free-text address. Reverse resolves a coordinate,
// accepting the forms documented on CoercePoint; anything unparseable
// fails with a KindQuery error before any network traffic. Both return
// the provider-ordered result list: at most one entry when
// Options.ExactlyOne is set, empty (never an error) when the provider
// found nothing.
type Geocoder interface {
	Geocode(ctx context.Context, query string, opts *Options) ([]Location, error)
	Reverse(ctx context.Context, query any, opts *Options) ([]Location, error)
}

// Settings is the provider-independent construction input used by the
// registry. Fields a provider does not use are ignored; fields it
// requires are validated by its factory.
type Settings struct {
	APIKey   string
	ClientID string
	Secret   string
	Domain   string
	Language string
	Config   Config
}

// Factory builds a provider adapter from registry settings.
type Factory func(Settings) (Geocoder, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register makes a provider constructible by name. It is called from
// provider package init functions; registering the same name twice
// panics.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("geoclient: provider %q registered twice", name))
	}
	registry[name] = f
}

// New constructs a registered provider by name.
func New(name string, s Settings) (Geocoder, error) {
	registryMu.RLock()
	f, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, &Error{Kind: KindQuery, Message: fmt.Sprintf("unknown provider %q (registered: %v)", name, Providers())}
	}
	return f(s)
}

// Providers lists the registered provider names in sorted order.
func Providers() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
