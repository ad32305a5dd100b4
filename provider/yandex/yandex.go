// Package yandex implements the geoclient contract against the Yandex
// geocoder HTTP API.
//
// Yandex signals application errors through a body-level "error" object
// even on HTTP 200, so the parser checks the body first and falls back to
// the HTTP status table only when the body carries no recognizable signal.
package yandex

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/couchcryptid/geoclient"
)

// Name is the registry identifier.
const Name = "yandex"

const (
	defaultDomain = "geocode-maps.yandex.ru"
	apiPath       = "/1.x/"
)

func init() {
	geoclient.Register(Name, func(s geoclient.Settings) (geoclient.Geocoder, error) {
		cfg := s.Config
		if s.Domain != "" {
			cfg.Domain = s.Domain
		}
		return New(Config{APIKey: s.APIKey, Lang: s.Language, Config: cfg})
	})
}

// Config holds Yandex construction settings. The API key is optional for
// the free tier. Lang selects the response locale, e.g. "ru_RU", "en_US",
// "tr_TR".
type Config struct {
	APIKey string
	Lang   string
	geoclient.Config
}

// Client is a Yandex geocoder adapter. Immutable after construction and
// safe for concurrent use.
type Client struct {
	apiKey string
	lang   string
	inv    *geoclient.Invoker
}

// New builds a Yandex adapter. All transport settings come from cfg merged
// over the process defaults.
func New(cfg Config) (*Client, error) {
	if cfg.Domain == "" {
		cfg.Domain = defaultDomain
	}
	inv, err := geoclient.NewInvoker(Name, &cfg.Config)
	if err != nil {
		return nil, err
	}
	return &Client{apiKey: cfg.APIKey, lang: cfg.Lang, inv: inv}, nil
}

// Geocode resolves a free-text address.
func (c *Client) Geocode(ctx context.Context, query string, opts *geoclient.Options) ([]geoclient.Location, error) {
	o := opts.Resolved()
	params := c.params(c.inv.FormatQuery(query), o)
	if o.ExactlyOne {
		params.Set("results", "1")
	}
	raw, err := c.inv.Get(ctx, apiPath, params, o.Timeout)
	if err != nil {
		return nil, err
	}
	return c.parse(raw, o.ExactlyOne)
}

// Reverse resolves a coordinate to addresses. The Filters key "kind"
// restricts the toponym type: house, street, metro, district, locality.
func (c *Client) Reverse(ctx context.Context, query any, opts *geoclient.Options) ([]geoclient.Location, error) {
	o := opts.Resolved()
	point, err := geoclient.CoercePoint(query)
	if err != nil {
		return nil, err
	}
	// Yandex expects "lon,lat" order.
	params := c.params(fmt.Sprintf("%s,%s",
		strconv.FormatFloat(point.Lon, 'f', -1, 64),
		strconv.FormatFloat(point.Lat, 'f', -1, 64)), o)
	if kind := o.Filters["kind"]; kind != "" {
		params.Set("kind", kind)
	}
	raw, err := c.inv.Get(ctx, apiPath, params, o.Timeout)
	if err != nil {
		return nil, err
	}
	return c.parse(raw, o.ExactlyOne)
}

// params builds the parameter set shared by both directions. Pure and
// deterministic for identical inputs.
func (c *Client) params(geocode string, o geoclient.Options) url.Values {
	params := url.Values{
		"geocode": {geocode},
		"format":  {"json"},
	}
	if c.apiKey != "" {
		params.Set("apikey", c.apiKey)
	}
	lang := c.lang
	if o.Language != "" {
		lang = o.Language
	}
	if lang != "" {
		params.Set("lang", lang)
	}
	return params
}

type responseBody struct {
	Error *struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
	Response *struct {
		GeoObjectCollection struct {
			FeatureMember []struct {
				GeoObject json.RawMessage `json:"GeoObject"`
			} `json:"featureMember"`
		} `json:"GeoObjectCollection"`
	} `json:"response"`
}

type geoObject struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Point       struct {
		Pos string `json:"pos"`
	} `json:"Point"`
}

func (c *Client) parse(raw *geoclient.RawResponse, exactlyOne bool) ([]geoclient.Location, error) {
	var body responseBody
	if err := json.Unmarshal(raw.Body, &body); err != nil {
		if statusErr := c.inv.ClassifyStatus(raw); statusErr != nil {
			return nil, statusErr
		}
		return nil, &geoclient.Error{Kind: geoclient.KindParse, Provider: Name, Message: "invalid JSON body", Status: raw.Status, Err: err}
	}

	// Body-level error wins over the HTTP status.
	if body.Error != nil {
		kind := geoclient.KindService
		switch raw.Status {
		case 401, 403:
			kind = geoclient.KindAuth
		case 429:
			kind = geoclient.KindQuota
		}
		return nil, &geoclient.Error{
			Kind:     kind,
			Provider: Name,
			Message:  body.Error.Message,
			Status:   raw.Status,
			Token:    body.Error.Status,
		}
	}
	if statusErr := c.inv.ClassifyStatus(raw); statusErr != nil {
		return nil, statusErr
	}
	if body.Response == nil {
		return nil, &geoclient.Error{Kind: geoclient.KindParse, Provider: Name, Message: "failed to parse server response", Status: raw.Status}
	}

	members := body.Response.GeoObjectCollection.FeatureMember
	if exactlyOne && len(members) > 1 {
		members = members[:1]
	}
	locations := make([]geoclient.Location, 0, len(members))
	for _, m := range members {
		loc, err := parseGeoObject(m.GeoObject)
		if err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}
	return locations, nil
}

func parseGeoObject(raw json.RawMessage) (geoclient.Location, error) {
	if len(raw) == 0 {
		return geoclient.Location{}, &geoclient.Error{Kind: geoclient.KindParse, Provider: Name, Message: "featureMember without GeoObject"}
	}
	var obj geoObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return geoclient.Location{}, &geoclient.Error{Kind: geoclient.KindParse, Provider: Name, Message: "malformed GeoObject", Err: err}
	}

	// Point.pos is a space-separated "lon lat" pair. Anything else is a
	// hard parse failure; axes are never guessed.
	fields := strings.Fields(obj.Point.Pos)
	if len(fields) != 2 {
		return geoclient.Location{}, &geoclient.Error{Kind: geoclient.KindParse, Provider: Name, Message: fmt.Sprintf("Point.pos %q is not \"lon lat\"", obj.Point.Pos)}
	}
	lon, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return geoclient.Location{}, &geoclient.Error{Kind: geoclient.KindParse, Provider: Name, Message: fmt.Sprintf("invalid longitude in Point.pos %q", obj.Point.Pos), Err: err}
	}
	lat, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return geoclient.Location{}, &geoclient.Error{Kind: geoclient.KindParse, Provider: Name, Message: fmt.Sprintf("invalid latitude in Point.pos %q", obj.Point.Pos), Err: err}
	}

	// Label fields are optional; absent ones are skipped, not errors.
	parts := make([]string, 0, 2)
	if obj.Name != "" {
		parts = append(parts, obj.Name)
	}
	if obj.Description != "" {
		parts = append(parts, obj.Description)
	}

	return geoclient.Location{
		Label: strings.Join(parts, ", "),
		Point: geoclient.Point{Lat: lat, Lon: lon},
		Raw:   raw,
	}, nil
}
