package geoclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePoint(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Point
		wantErr bool
	}{
		{name: "plain", in: "40.7538,-73.9849", want: Point{Lat: 40.7538, Lon: -73.9849}},
		{name: "spaces", in: " 40.7538 , -73.9849 ", want: Point{Lat: 40.7538, Lon: -73.9849}},
		{name: "integers", in: "52,13", want: Point{Lat: 52, Lon: 13}},
		{name: "not a number", in: "abc", wantErr: true},
		{name: "one token", in: "40.7538", wantErr: true},
		{name: "three tokens", in: "40,50,60", wantErr: true},
		{name: "latitude out of range", in: "91,0", wantErr: true},
		{name: "longitude out of range", in: "0,181", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePoint(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, KindQuery, KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCoercePoint_EquivalentForms(t *testing.T) {
	want := Point{Lat: 40.7538, Lon: -73.9849}

	forms := map[string]any{
		"point":   Point{Lat: 40.7538, Lon: -73.9849},
		"pointer": &Point{Lat: 40.7538, Lon: -73.9849},
		"array":   [2]float64{40.7538, -73.9849},
		"slice":   []float64{40.7538, -73.9849},
		"string":  "40.7538,-73.9849",
	}
	for name, form := range forms {
		t.Run(name, func(t *testing.T) {
			got, err := CoercePoint(form)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestCoercePoint_Invalid(t *testing.T) {
	for name, form := range map[string]any{
		"unparseable string": "abc",
		"short slice":        []float64{40.7538},
		"nil pointer":        (*Point)(nil),
		"wrong type":         42,
		"out of range":       [2]float64{95, 0},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := CoercePoint(form)
			require.Error(t, err)
			assert.Equal(t, KindQuery, KindOf(err))
		})
	}
}

func TestPoint_String_RoundTrip(t *testing.T) {
	p := Point{Lat: 41.8903, Lon: -87.6241}
	parsed, err := ParsePoint(p.String())
	require.NoError(t, err)
	assert.Equal(t, p, parsed)
}

func TestPoint_Near(t *testing.T) {
	p := Point{Lat: 41.8903, Lon: -87.6241}
	assert.True(t, p.Near(Point{Lat: 41.89030049, Lon: -87.62409951}, 1e-6))
	assert.False(t, p.Near(Point{Lat: 41.8903, Lon: -87.6242}, 1e-6))
}
