// Package geocodeearth implements the geoclient contract against
// geocode.earth, the hosted Pelias service run by the Pelias developers.
//
// It is a configuration-only specialization of the pelias package: a
// required API key and a default domain, with no behavioral override.
package geocodeearth

import (
	"github.com/couchcryptid/geoclient"
	"github.com/couchcryptid/geoclient/provider/pelias"
)

// Name is the registry identifier.
const Name = "geocodeearth"

const defaultDomain = "api.geocode.earth"

func init() {
	geoclient.Register(Name, func(s geoclient.Settings) (geoclient.Geocoder, error) {
		cfg := s.Config
		if s.Domain != "" {
			cfg.Domain = s.Domain
		}
		return New(Config{APIKey: s.APIKey, Language: s.Language, Config: cfg})
	})
}

// Config holds Geocode Earth construction settings. APIKey is required.
type Config struct {
	APIKey   string
	Language string
	geoclient.Config
}

// New builds a Geocode Earth adapter by delegating to pelias with the
// hosted defaults applied.
func New(cfg Config) (*pelias.Client, error) {
	if cfg.APIKey == "" {
		return nil, &geoclient.Error{Kind: geoclient.KindQuery, Provider: Name, Message: "an api key is required"}
	}
	if cfg.Domain == "" {
		cfg.Domain = defaultDomain
	}
	return pelias.NewNamed(Name, pelias.Config{
		APIKey:   cfg.APIKey,
		Language: cfg.Language,
		Config:   cfg.Config,
	})
}
