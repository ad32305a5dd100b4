// Package pelias implements the geoclient contract against a Pelias
// geocoding instance.
//
// Pelias has no default public endpoint, so the domain is required; hosted
// offerings such as Geocode Earth are expressed as configuration-only
// specializations in their own packages. Pelias reports failures through
// plain HTTP statuses, so the shared status table is the error signal.
package pelias

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/couchcryptid/geoclient"
)

// Name is the registry identifier.
const Name = "pelias"

const (
	searchPath  = "/v1/search"
	reversePath = "/v1/reverse"
)

func init() {
	geoclient.Register(Name, func(s geoclient.Settings) (geoclient.Geocoder, error) {
		cfg := s.Config
		if s.Domain != "" {
			cfg.Domain = s.Domain
		}
		return New(Config{APIKey: s.APIKey, Language: s.Language, Config: cfg})
	})
}

// Config holds Pelias construction settings. Domain (on the embedded
// geoclient.Config) is required; APIKey is required only by hosted
// instances.
type Config struct {
	APIKey   string
	Language string
	geoclient.Config
}

// Client is a Pelias adapter. Immutable after construction and safe for
// concurrent use.
type Client struct {
	apiKey   string
	language string
	name     string
	inv      *geoclient.Invoker
}

// New builds a Pelias adapter for the configured domain.
func New(cfg Config) (*Client, error) {
	return newNamed(Name, cfg)
}

// NewNamed builds a Pelias adapter that reports errors under a different
// provider name. Used by configuration-only specializations.
func NewNamed(name string, cfg Config) (*Client, error) {
	return newNamed(name, cfg)
}

func newNamed(name string, cfg Config) (*Client, error) {
	inv, err := geoclient.NewInvoker(name, &cfg.Config)
	if err != nil {
		return nil, err
	}
	return &Client{apiKey: cfg.APIKey, language: cfg.Language, name: name, inv: inv}, nil
}

// Geocode resolves a free-text address. The Filters key
// "boundary.country" restricts results to an ISO-3166 country code.
func (c *Client) Geocode(ctx context.Context, query string, opts *geoclient.Options) ([]geoclient.Location, error) {
	o := opts.Resolved()
	params := url.Values{"text": {c.inv.FormatQuery(query)}}
	c.commonParams(params, o)
	if country := o.Filters["boundary.country"]; country != "" {
		params.Set("boundary.country", country)
	}
	raw, err := c.inv.Get(ctx, searchPath, params, o.Timeout)
	if err != nil {
		return nil, err
	}
	return c.parse(raw, o.ExactlyOne)
}

// Reverse resolves a coordinate to addresses.
func (c *Client) Reverse(ctx context.Context, query any, opts *geoclient.Options) ([]geoclient.Location, error) {
	o := opts.Resolved()
	point, err := geoclient.CoercePoint(query)
	if err != nil {
		return nil, err
	}
	params := url.Values{
		"point.lat": {strconv.FormatFloat(point.Lat, 'f', -1, 64)},
		"point.lon": {strconv.FormatFloat(point.Lon, 'f', -1, 64)},
	}
	c.commonParams(params, o)
	raw, err := c.inv.Get(ctx, reversePath, params, o.Timeout)
	if err != nil {
		return nil, err
	}
	return c.parse(raw, o.ExactlyOne)
}

func (c *Client) commonParams(params url.Values, o geoclient.Options) {
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}
	lang := c.language
	if o.Language != "" {
		lang = o.Language
	}
	if lang != "" {
		params.Set("lang", lang)
	}
	if o.ExactlyOne {
		params.Set("size", "1")
	}
}

type responseBody struct {
	Features []json.RawMessage `json:"features"`
}

type feature struct {
	Properties struct {
		Label string `json:"label"`
		Name  string `json:"name"`
	} `json:"properties"`
	Geometry struct {
		Coordinates []float64 `json:"coordinates"` // [lon, lat]
	} `json:"geometry"`
}

func (c *Client) parse(raw *geoclient.RawResponse, exactlyOne bool) ([]geoclient.Location, error) {
	if statusErr := c.inv.ClassifyStatus(raw); statusErr != nil {
		return nil, statusErr
	}
	var body responseBody
	if err := json.Unmarshal(raw.Body, &body); err != nil {
		return nil, &geoclient.Error{Kind: geoclient.KindParse, Provider: c.name, Message: "invalid JSON body", Status: raw.Status, Err: err}
	}

	entries := body.Features
	if exactlyOne && len(entries) > 1 {
		entries = entries[:1]
	}
	locations := make([]geoclient.Location, 0, len(entries))
	for _, entry := range entries {
		var f feature
		if err := json.Unmarshal(entry, &f); err != nil {
			return nil, &geoclient.Error{Kind: geoclient.KindParse, Provider: c.name, Message: "malformed feature", Err: err}
		}
		if len(f.Geometry.Coordinates) != 2 {
			return nil, &geoclient.Error{Kind: geoclient.KindParse, Provider: c.name, Message: fmt.Sprintf("feature has %d coordinates, want 2", len(f.Geometry.Coordinates))}
		}
		label := f.Properties.Label
		if label == "" {
			label = f.Properties.Name
		}
		locations = append(locations, geoclient.Location{
			Label: label,
			// GeoJSON order is [lon, lat].
			Point: geoclient.Point{Lat: f.Geometry.Coordinates[1], Lon: f.Geometry.Coordinates[0]},
			Raw:   entry,
		})
	}
	return locations, nil
}
