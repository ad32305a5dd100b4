package googlev3

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/geoclient"
)

const (
	testSecret = "bXlfc2VjcmV0X2tleQ==" // url-safe base64 of "my_secret_key"

	fixtureChicago = `{
  "status": "OK",
  "results": [
    {
      "formatted_address": "435 N Michigan Ave, Chicago, IL 60611, USA",
      "geometry": {"location": {"lat": 41.8902132, "lng": -87.6241972}}
    }
  ]
}`

	fixtureTwoResults = `{
  "status": "OK",
  "results": [
    {"formatted_address": "First, USA", "geometry": {"location": {"lat": 1.0, "lng": 2.0}}},
    {"formatted_address": "Second, USA", "geometry": {"location": {"lat": 3.0, "lng": 4.0}}}
  ]
}`
)

type cannedDoer struct {
	requests []*http.Request
	status   int
	body     string
}

func (d *cannedDoer) Do(req *http.Request) (*http.Response, error) {
	d.requests = append(d.requests, req)
	return &http.Response{
		StatusCode: d.status,
		Body:       io.NopCloser(strings.NewReader(d.body)),
	}, nil
}

func testClient(t *testing.T, doer *cannedDoer, cfg Config) *Client {
	t.Helper()
	if doer.status == 0 {
		doer.status = http.StatusOK
	}
	if cfg.APIKey == "" && cfg.ClientID == "" {
		cfg.APIKey = "test-key"
	}
	cfg.Transport = doer
	c, err := New(cfg)
	require.NoError(t, err)
	return c
}

func TestNew_AuthValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "api key with client id", cfg: Config{APIKey: "k", ClientID: "c", SecretKey: testSecret}},
		{name: "api key with secret", cfg: Config{APIKey: "k", SecretKey: testSecret}},
		{name: "client id without secret", cfg: Config{ClientID: "c"}},
		{name: "secret without client id", cfg: Config{SecretKey: testSecret}},
		{name: "no credentials", cfg: Config{}},
		{name: "secret not base64", cfg: Config{ClientID: "c", SecretKey: "%%%not-base64%%%"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			require.Error(t, err)
			assert.Equal(t, geoclient.KindQuery, geoclient.KindOf(err))
		})
	}

	_, err := New(Config{APIKey: "k"})
	assert.NoError(t, err)
	_, err = New(Config{ClientID: "c", SecretKey: testSecret})
	assert.NoError(t, err)
}

func TestSignParams(t *testing.T) {
	c := testClient(t, &cannedDoer{}, Config{ClientID: "my_client_id", SecretKey: testSecret})
	require.True(t, c.premier)

	params := url.Values{"address": {"1 5th Ave New York, NY"}}
	require.NoError(t, c.signParams(params))

	// Reference signature for this exact client id, secret, and payload.
	assert.Equal(t, "Z_1zMBa3Xu0W4VmQfaBR8OQMnDM=", params.Get("signature"))
	assert.Equal(t, "my_client_id", params.Get("client"))

	// Encoding sorts the signature after the signed parameters, so the
	// wire query matches the signed payload.
	encoded := params.Encode()
	assert.True(t, strings.HasPrefix(encoded, "address=1+5th+Ave+New+York%2C+NY&client=my_client_id&signature="), encoded)
}

func TestSignParams_Channel(t *testing.T) {
	c := testClient(t, &cannedDoer{}, Config{ClientID: "my_client_id", SecretKey: testSecret, Channel: "my_channel"})

	params := url.Values{"address": {"1 5th Ave New York, NY"}}
	require.NoError(t, c.signParams(params))

	assert.Equal(t, "my_channel", params.Get("channel"))
	assert.NotEmpty(t, params.Get("signature"))
}

func TestGeocode_ChicagoFixture(t *testing.T) {
	doer := &cannedDoer{body: fixtureChicago}
	c := testClient(t, doer, Config{})

	locs, err := c.Geocode(context.Background(), "435 north michigan ave, chicago il 60611 usa", nil)
	require.NoError(t, err)
	require.Len(t, locs, 1)

	assert.Equal(t, "435 N Michigan Ave, Chicago, IL 60611, USA", locs[0].Label)
	assert.InDelta(t, 41.890, locs[0].Point.Lat, 0.001)
	assert.InDelta(t, -87.624, locs[0].Point.Lon, 0.001)

	req := doer.requests[0]
	q := req.URL.Query()
	assert.Equal(t, "maps.googleapis.com", req.URL.Host)
	assert.Equal(t, "/maps/api/geocode/json", req.URL.Path)
	assert.Equal(t, "435 north michigan ave, chicago il 60611 usa", q.Get("address"))
	assert.Equal(t, "test-key", q.Get("key"))
}

func TestGeocode_FullListPreservesOrder(t *testing.T) {
	doer := &cannedDoer{body: fixtureTwoResults}
	c := testClient(t, doer, Config{})

	locs, err := c.Geocode(context.Background(), "ambiguous", &geoclient.Options{ExactlyOne: false})
	require.NoError(t, err)
	require.Len(t, locs, 2)
	assert.Equal(t, "First, USA", locs[0].Label)
	assert.Equal(t, "Second, USA", locs[1].Label)
}

func TestGeocode_ZeroResults(t *testing.T) {
	doer := &cannedDoer{body: `{"status": "ZERO_RESULTS", "results": []}`}
	c := testClient(t, doer, Config{})

	locs, err := c.Geocode(context.Background(), "nowhere at all", nil)
	require.NoError(t, err)
	assert.Empty(t, locs)
}

func TestGeocode_StatusTokens(t *testing.T) {
	tests := []struct {
		token string
		want  geoclient.Kind
	}{
		{"OVER_QUERY_LIMIT", geoclient.KindQuota},
		{"OVER_DAILY_LIMIT", geoclient.KindQuota},
		{"REQUEST_DENIED", geoclient.KindAuth},
		{"INVALID_REQUEST", geoclient.KindQuery},
		{"UNKNOWN_ERROR", geoclient.KindService},
		{"SOME_FUTURE_TOKEN", geoclient.KindService},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			doer := &cannedDoer{body: `{"status": "` + tt.token + `", "error_message": "details from google", "results": []}`}
			c := testClient(t, doer, Config{})

			_, err := c.Geocode(context.Background(), "q", nil)
			require.Error(t, err)

			var ge *geoclient.Error
			require.ErrorAs(t, err, &ge)
			assert.Equal(t, tt.want, ge.Kind)
			assert.Equal(t, tt.token, ge.Token, "raw token preserved")
			assert.Equal(t, "details from google", ge.Message)
		})
	}
}

func TestGeocode_FiltersAndLanguage(t *testing.T) {
	doer := &cannedDoer{body: `{"status": "ZERO_RESULTS", "results": []}`}
	c := testClient(t, doer, Config{Language: "en", Region: "us"})

	_, err := c.Geocode(context.Background(), "main street", &geoclient.Options{
		ExactlyOne: true,
		Language:   "de",
		Filters: map[string]string{
			"components": FormatComponents(map[string]string{"country": "FR", "administrative_area": "CA"}),
			"region":     "fr",
		},
	})
	require.NoError(t, err)

	q := doer.requests[0].URL.Query()
	assert.Equal(t, "de", q.Get("language"), "per-call language beats the instance default")
	assert.Equal(t, "fr", q.Get("region"), "per-call region beats the instance default")
	assert.Equal(t, "administrative_area:CA|country:FR", q.Get("components"))
}

func TestReverse_LatLngOrder(t *testing.T) {
	doer := &cannedDoer{body: `{"status": "ZERO_RESULTS", "results": []}`}
	c := testClient(t, doer, Config{})

	_, err := c.Reverse(context.Background(), "40.7538,-73.9849", nil)
	require.NoError(t, err)
	assert.Equal(t, "40.7538,-73.9849", doer.requests[0].URL.Query().Get("latlng"))
}

func TestReverse_InvalidQueryFailsBeforeTransport(t *testing.T) {
	doer := &cannedDoer{body: fixtureChicago}
	c := testClient(t, doer, Config{})

	_, err := c.Reverse(context.Background(), []float64{1, 2, 3}, nil)
	require.Error(t, err)
	assert.Equal(t, geoclient.KindQuery, geoclient.KindOf(err))
	assert.Empty(t, doer.requests)
}

func TestParse_MissingStatus(t *testing.T) {
	doer := &cannedDoer{body: `{"weird": true}`}
	c := testClient(t, doer, Config{})

	_, err := c.Geocode(context.Background(), "q", nil)
	require.Error(t, err)
	assert.Equal(t, geoclient.KindParse, geoclient.KindOf(err))
}

func TestFormatComponents(t *testing.T) {
	assert.Empty(t, FormatComponents(nil))
	assert.Equal(t, "country:FR", FormatComponents(map[string]string{"country": "FR"}))
	assert.Equal(t, "administrative_area:CA|country:FR",
		FormatComponents(map[string]string{"country": "FR", "administrative_area": "CA"}))
}
