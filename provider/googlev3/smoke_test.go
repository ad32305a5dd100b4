//go:build smoke

package googlev3

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the real Google API and require a valid GOOGLE_API_KEY
// env var. Run with: go test -tags=smoke ./provider/googlev3/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	key := os.Getenv("GOOGLE_API_KEY")
	if key == "" {
		t.Fatal("GOOGLE_API_KEY must be set to run smoke tests")
	}
	c, err := New(Config{APIKey: key})
	require.NoError(t, err)
	return c
}

func TestSmoke_Geocode(t *testing.T) {
	c := smokeClient(t)

	locs, err := c.Geocode(context.Background(), "435 north michigan ave, chicago il 60611 usa", nil)
	require.NoError(t, err)
	require.Len(t, locs, 1)

	assert.InDelta(t, 41.890, locs[0].Point.Lat, 0.01)
	assert.InDelta(t, -87.624, locs[0].Point.Lon, 0.01)
	assert.Contains(t, locs[0].Label, "Chicago")
}

func TestSmoke_Reverse(t *testing.T) {
	c := smokeClient(t)

	locs, err := c.Reverse(context.Background(), "40.7538,-73.9849", nil)
	require.NoError(t, err)
	require.NotEmpty(t, locs)
	assert.Contains(t, locs[0].Label, "New York")
}
