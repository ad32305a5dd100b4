// Package googlev3 implements the geoclient contract against the Google
// Maps Geocoding API (v3).
//
// Authentication is either a plain API key or a premier client ID with a
// URL-signing secret; the two modes are mutually exclusive and validated at
// construction. Google reports application failures through a body-level
// "status" token on HTTP 200, so the token table takes precedence over the
// HTTP status.
package googlev3

import (
	"context"
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // Google URL signing mandates SHA-1
	"encoding/base64"
	"net/url"
	"sort"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/couchcryptid/geoclient"
)

// Name is the registry identifier.
const Name = "googlev3"

const (
	defaultDomain = "maps.googleapis.com"
	apiPath       = "/maps/api/geocode/json"
)

func init() {
	geoclient.Register(Name, func(s geoclient.Settings) (geoclient.Geocoder, error) {
		cfg := s.Config
		if s.Domain != "" {
			cfg.Domain = s.Domain
		}
		return New(Config{
			APIKey:    s.APIKey,
			ClientID:  s.ClientID,
			SecretKey: s.Secret,
			Language:  s.Language,
			Config:    cfg,
		})
	})
}

// Config holds Google construction settings.
type Config struct {
	// APIKey authenticates standard accounts. Mutually exclusive with
	// ClientID/SecretKey.
	APIKey string
	// ClientID and SecretKey authenticate premier accounts via signed
	// URLs. Both must be set together. SecretKey is the url-safe base64
	// signing secret issued by Google.
	ClientID  string
	SecretKey string
	// Channel is an optional premier usage-tracking tag.
	Channel string
	// Language and Region set the default response language and ccTLD
	// region bias.
	Language string
	Region   string
	geoclient.Config
}

// Client is a Google geocoder adapter. Immutable after construction and
// safe for concurrent use.
type Client struct {
	apiKey    string
	clientID  string
	secretKey string
	channel   string
	language  string
	region    string
	premier   bool
	inv       *geoclient.Invoker
}

// New builds a Google adapter, rejecting conflicting auth modes
// immediately rather than on first call.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey != "" && (cfg.ClientID != "" || cfg.SecretKey != "") {
		return nil, &geoclient.Error{Kind: geoclient.KindQuery, Provider: Name, Message: "api key and client/secret are mutually exclusive"}
	}
	if (cfg.ClientID == "") != (cfg.SecretKey == "") {
		return nil, &geoclient.Error{Kind: geoclient.KindQuery, Provider: Name, Message: "client id and secret key must be set together"}
	}
	if cfg.ClientID == "" && cfg.APIKey == "" {
		return nil, &geoclient.Error{Kind: geoclient.KindQuery, Provider: Name, Message: "an api key or a client/secret pair is required"}
	}
	if cfg.SecretKey != "" {
		if _, err := base64.URLEncoding.DecodeString(cfg.SecretKey); err != nil {
			return nil, &geoclient.Error{Kind: geoclient.KindQuery, Provider: Name, Message: "secret key is not url-safe base64", Err: err}
		}
	}
	if cfg.Domain == "" {
		cfg.Domain = defaultDomain
	}
	inv, err := geoclient.NewInvoker(Name, &cfg.Config)
	if err != nil {
		return nil, err
	}
	return &Client{
		apiKey:    cfg.APIKey,
		clientID:  cfg.ClientID,
		secretKey: cfg.SecretKey,
		channel:   cfg.Channel,
		language:  cfg.Language,
		region:    cfg.Region,
		premier:   cfg.ClientID != "",
		inv:       inv,
	}, nil
}

// Geocode resolves a free-text address. Supported Filters keys:
// "components" (already formatted "key:value|key:value" restriction),
// "bounds" ("lat,lon|lat,lon" viewport bias), and "region".
func (c *Client) Geocode(ctx context.Context, query string, opts *geoclient.Options) ([]geoclient.Location, error) {
	o := opts.Resolved()
	params := url.Values{"address": {c.inv.FormatQuery(query)}}
	c.commonParams(params, o)
	for _, key := range []string{"components", "bounds"} {
		if v := o.Filters[key]; v != "" {
			params.Set(key, v)
		}
	}
	if region := o.Filters["region"]; region != "" {
		params.Set("region", region)
	} else if c.region != "" {
		params.Set("region", c.region)
	}
	return c.call(ctx, params, o)
}

// Reverse resolves a coordinate to addresses. The Filters key
// "result_type" restricts the returned address types.
func (c *Client) Reverse(ctx context.Context, query any, opts *geoclient.Options) ([]geoclient.Location, error) {
	o := opts.Resolved()
	point, err := geoclient.CoercePoint(query)
	if err != nil {
		return nil, err
	}
	params := url.Values{"latlng": {point.String()}}
	c.commonParams(params, o)
	if rt := o.Filters["result_type"]; rt != "" {
		params.Set("result_type", rt)
	}
	return c.call(ctx, params, o)
}

func (c *Client) commonParams(params url.Values, o geoclient.Options) {
	lang := c.language
	if o.Language != "" {
		lang = o.Language
	}
	if lang != "" {
		params.Set("language", lang)
	}
}

func (c *Client) call(ctx context.Context, params url.Values, o geoclient.Options) ([]geoclient.Location, error) {
	if c.premier {
		if err := c.signParams(params); err != nil {
			return nil, err
		}
	} else {
		params.Set("key", c.apiKey)
	}
	raw, err := c.inv.Get(ctx, apiPath, params, o.Timeout)
	if err != nil {
		return nil, err
	}
	return c.parse(raw, o.ExactlyOne)
}

// signParams adds the premier client parameters and the HMAC-SHA1
// signature over path?query, per Google's URL signing scheme. The
// signature key sorts after every other parameter this client emits, so
// re-encoding the Values preserves the signed ordering.
func (c *Client) signParams(params url.Values) error {
	params.Set("client", c.clientID)
	if c.channel != "" {
		params.Set("channel", c.channel)
	}
	key, err := base64.URLEncoding.DecodeString(c.secretKey)
	if err != nil {
		// Validated at construction; a failure here means the struct was
		// built without New.
		return &geoclient.Error{Kind: geoclient.KindQuery, Provider: Name, Message: "secret key is not url-safe base64", Err: err}
	}
	mac := hmac.New(sha1.New, key)
	mac.Write([]byte(apiPath + "?" + params.Encode()))
	params.Set("signature", base64.URLEncoding.EncodeToString(mac.Sum(nil)))
	return nil
}

// FormatComponents renders a components restriction map in Google's
// "key:value|key:value" form with deterministic key order, suitable for
// the "components" filter.
func FormatComponents(components map[string]string) string {
	keys := make([]string, 0, len(components))
	for k := range components {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+":"+components[k])
	}
	return strings.Join(parts, "|")
}

type responseBody struct {
	Status       string            `json:"status"`
	ErrorMessage string            `json:"error_message"`
	Results      []json.RawMessage `json:"results"`
}

type result struct {
	FormattedAddress string `json:"formatted_address"`
	Geometry         struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}

func (c *Client) parse(raw *geoclient.RawResponse, exactlyOne bool) ([]geoclient.Location, error) {
	var body responseBody
	if err := json.Unmarshal(raw.Body, &body); err != nil {
		if statusErr := c.inv.ClassifyStatus(raw); statusErr != nil {
			return nil, statusErr
		}
		return nil, &geoclient.Error{Kind: geoclient.KindParse, Provider: Name, Message: "invalid JSON body", Status: raw.Status, Err: err}
	}
	if body.Status == "" {
		if statusErr := c.inv.ClassifyStatus(raw); statusErr != nil {
			return nil, statusErr
		}
		return nil, &geoclient.Error{Kind: geoclient.KindParse, Provider: Name, Message: "response without status field", Status: raw.Status}
	}
	if err := c.checkStatus(body.Status, body.ErrorMessage, raw.Status); err != nil {
		return nil, err
	}

	entries := body.Results
	if exactlyOne && len(entries) > 1 {
		entries = entries[:1]
	}
	locations := make([]geoclient.Location, 0, len(entries))
	for _, entry := range entries {
		var r result
		if err := json.Unmarshal(entry, &r); err != nil {
			return nil, &geoclient.Error{Kind: geoclient.KindParse, Provider: Name, Message: "malformed result entry", Err: err}
		}
		locations = append(locations, geoclient.Location{
			Label: r.FormattedAddress,
			Point: geoclient.Point{Lat: r.Geometry.Location.Lat, Lon: r.Geometry.Location.Lng},
			Raw:   entry,
		})
	}
	return locations, nil
}

// checkStatus maps Google status tokens to the taxonomy. ZERO_RESULTS is
// not an error; the caller just gets an empty list. Unrecognized tokens
// become service errors with the raw token preserved.
func (c *Client) checkStatus(token, message string, httpStatus int) error {
	switch token {
	case "OK", "ZERO_RESULTS":
		return nil
	case "OVER_QUERY_LIMIT", "OVER_DAILY_LIMIT", "RESOURCE_EXHAUSTED":
		return &geoclient.Error{Kind: geoclient.KindQuota, Provider: Name, Message: message, Status: httpStatus, Token: token}
	case "REQUEST_DENIED":
		return &geoclient.Error{Kind: geoclient.KindAuth, Provider: Name, Message: message, Status: httpStatus, Token: token}
	case "INVALID_REQUEST":
		return &geoclient.Error{Kind: geoclient.KindQuery, Provider: Name, Message: message, Status: httpStatus, Token: token}
	default:
		return &geoclient.Error{Kind: geoclient.KindService, Provider: Name, Message: message, Status: httpStatus, Token: token}
	}
}
