package geo

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/njprem/PlaceBook_BackEnd/internal/domain"
)

var (
	ErrEmptyLink       = errors.New("map link is empty")
	ErrUnsupportedLink = errors.New("map link is not a supported URL")
	ErrShortLink       = errors.New("shortened map links cannot be resolved; paste the full link")
	ErrNoCoordinates   = errors.New("map link does not contain a coordinate pair")
	ErrOutOfRange      = errors.New("coordinates out of range")
)

var (
	pinPattern      = regexp.MustCompile(`!3d(-?\d+(?:\.\d+)?)!4d(-?\d+(?:\.\d+)?)`)
	viewportPattern = regexp.MustCompile(`@(-?\d+(?:\.\d+)?),(-?\d+(?:\.\d+)?)`)
	pairPattern     = regexp.MustCompile(`^\s*(-?\d+(?:\.\d+)?)\s*,\s*(-?\d+(?:\.\d+)?)\s*$`)
)

// coordinate-bearing query keys, in lookup order
var queryKeys = []string{"q", "query", "ll", "center", "destination", "daddr", "mlat"}

var shortHosts = map[string]struct{}{
	"goo.gl":          {},
	"maps.app.goo.gl": {},
	"g.co":            {},
}

// ParseMapLink extracts a coordinate pair from a map link. Sources are tried in a
// fixed order so the same link always yields the same point: a plain "lat,lng"
// string, the place pin (!3d..!4d..), coordinate query parameters, then the
// viewport centre (@lat,lng).
func ParseMapLink(raw string) (domain.GeoPoint, error) {
	link := strings.TrimSpace(raw)
	if link == "" {
		return domain.GeoPoint{}, ErrEmptyLink
	}
	if m := pairPattern.FindStringSubmatch(link); m != nil {
		return toPoint(m[1], m[2])
	}

	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return domain.GeoPoint{}, ErrUnsupportedLink
	}
	if _, short := shortHosts[strings.ToLower(u.Hostname())]; short {
		return domain.GeoPoint{}, ErrShortLink
	}

	decodedPath, err := url.PathUnescape(u.EscapedPath())
	if err != nil {
		decodedPath = u.Path
	}
	full := decodedPath + "?" + u.RawQuery

	if m := pinPattern.FindStringSubmatch(full); m != nil {
		return toPoint(m[1], m[2])
	}

	values := u.Query()
	for _, key := range queryKeys {
		if key == "mlat" {
			lat, lng := values.Get("mlat"), values.Get("mlon")
			if lat != "" && lng != "" {
				return toPoint(lat, lng)
			}
			continue
		}
		if m := pairPattern.FindStringSubmatch(values.Get(key)); m != nil {
			return toPoint(m[1], m[2])
		}
	}

	if m := viewportPattern.FindStringSubmatch(decodedPath); m != nil {
		return toPoint(m[1], m[2])
	}
	return domain.GeoPoint{}, ErrNoCoordinates
}

func toPoint(rawLat, rawLng string) (domain.GeoPoint, error) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(rawLat), 64)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("%w: latitude %q", ErrNoCoordinates, rawLat)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(rawLng), 64)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("%w: longitude %q", ErrNoCoordinates, rawLng)
	}
	point := domain.GeoPoint{Latitude: lat, Longitude: lng}
	if err := Validate(point); err != nil {
		return domain.GeoPoint{}, err
	}
	return point, nil
}

// Validate checks the WGS84 ranges.
func Validate(p domain.GeoPoint) error {
	if p.Latitude < -90 || p.Latitude > 90 {
		return fmt.Errorf("%w: latitude must be between -90 and 90", ErrOutOfRange)
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		return fmt.Errorf("%w: longitude must be between -180 and 180", ErrOutOfRange)
	}
	return nil
}
