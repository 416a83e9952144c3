package geo

import (
	"errors"
	"testing"
)

func TestParseMapLink(t *testing.T) {
	cases := []struct {
		name    string
		link    string
		lat     float64
		lng     float64
		wantErr error
	}{
		{name: "plain pair", link: " 13.7563, 100.5018 ", lat: 13.7563, lng: 100.5018},
		{name: "viewport", link: "https://www.google.com/maps/place/Cafe/@40.7411,-73.9897,17z", lat: 40.7411, lng: -73.9897},
		{
			name: "pin wins over viewport",
			link: "https://www.google.com/maps/place/Cafe/@40.7,-73.9,17z/data=!3m1!4b1!4m6!3m5!1s0x0:0x0!8m2!3d40.7415!4d-73.9901",
			lat:  40.7415, lng: -73.9901,
		},
		{name: "query param", link: "https://maps.google.com/?q=48.8584,2.2945", lat: 48.8584, lng: 2.2945},
		{name: "escaped query", link: "https://www.google.com/maps/search/?api=1&query=35.6586%2C139.7454", lat: 35.6586, lng: 139.7454},
		{name: "openstreetmap", link: "https://www.openstreetmap.org/?mlat=51.5007&mlon=-0.1246#map=17/51.5007/-0.1246", lat: 51.5007, lng: -0.1246},
		{name: "empty", link: "  ", wantErr: ErrEmptyLink},
		{name: "not a url", link: "somewhere nice", wantErr: ErrUnsupportedLink},
		{name: "short link", link: "https://maps.app.goo.gl/abc123", wantErr: ErrShortLink},
		{name: "no coordinates", link: "https://www.google.com/maps/place/Cafe+Central", wantErr: ErrNoCoordinates},
		{name: "latitude out of range", link: "https://maps.google.com/?q=91.0,10.0", wantErr: ErrOutOfRange},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			point, err := ParseMapLink(tc.link)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if point.Latitude != tc.lat || point.Longitude != tc.lng {
				t.Fatalf("expected (%v,%v), got (%v,%v)", tc.lat, tc.lng, point.Latitude, point.Longitude)
			}
		})
	}
}

func TestParseMapLinkDeterministic(t *testing.T) {
	link := "https://www.google.com/maps/place/X/@1.5,2.5,10z/data=!3d3.5!4d4.5"
	first, err := ParseMapLink(link)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := ParseMapLink(link)
		if err != nil || again != first {
			t.Fatalf("expected stable result %v, got %v (%v)", first, again, err)
		}
	}
}
