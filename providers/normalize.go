package providers

import (
	"fmt"
	"strings"

	"github.com/9seconds/geoprobe/geolib"
)

// geoFields is an intermediate form of provider response. Each provider
// decodes its own schema, fills geoFields and normalizes them into
// geolib.GeoResult with the same set of rules.
type geoFields struct {
	ip          string
	countryCode string
	countryName string
	city        string
	region      string
	timezone    string
	latitude    *float64
	longitude   *float64
}

// normalize converts fields into GeoResult. A country code is the only
// required field: without it (or with '-' placeholder) response is
// invalid. Missing country name
// is substituted with a country code, missing coordinates are nil.
func (g geoFields) normalize(source, queriedIP string) (geolib.GeoResult, error) {
	countryCode := strings.ToUpper(strings.TrimSpace(g.countryCode))
	if countryCode == "" || countryCode == "-" {
		return geolib.GeoResult{}, fmt.Errorf("%s has returned no country code: %w",
			source, geolib.ErrInvalidResponse)
	}

	rv := geolib.GeoResult{
		Source:      source,
		IP:          strings.TrimSpace(g.ip),
		CountryCode: countryCode,
		CountryName: strings.TrimSpace(g.countryName),
		City:        strings.TrimSpace(g.city),
		Region:      strings.TrimSpace(g.region),
		Timezone:    strings.TrimSpace(g.timezone),
		Latitude:    g.latitude,
		Longitude:   g.longitude,
		Accurate:    true,
	}

	if rv.IP == "" {
		rv.IP = queriedIP
	}

	if rv.CountryName == "" {
		rv.CountryName = countryCode
	}

	return rv, nil
}

func float64Ptr(value float64) *float64 {
	return &value
}

// coordinates returns nil pointers for a 0,0 pair: local databases use
// it as 'unknown'.
func coordinates(latitude, longitude float64) (*float64, *float64) {
	if latitude == 0 && longitude == 0 {
		return nil, nil
	}

	return float64Ptr(latitude), float64Ptr(longitude)
}
