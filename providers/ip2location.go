package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/9seconds/geoprobe/geolib"
	"github.com/ip2location/ip2location-go/v9"
	"github.com/spf13/afero"
)

type ip2locationProvider struct {
	db *ip2location.DB
}

func (i ip2locationProvider) Name() string {
	return NameIP2Location
}

func (i ip2locationProvider) Lookup(ctx context.Context, ip string) (geolib.GeoResult, error) {
	if err := ctx.Err(); err != nil {
		return geolib.GeoResult{}, err
	}

	record, err := i.db.Get_all(ip)
	if err != nil {
		return geolib.GeoResult{}, fmt.Errorf("cannot lookup this ip address: %w", err)
	}

	return ip2locationFields(record).normalize(NameIP2Location, ip)
}

func ip2locationFields(record ip2location.IP2Locationrecord) geoFields {
	fields := geoFields{
		countryCode: ip2locationValue(record.Country_short),
		countryName: ip2locationValue(record.Country_long),
		city:        ip2locationValue(record.City),
		region:      ip2locationValue(record.Region),
		timezone:    ip2locationValue(record.Timezone),
	}

	fields.latitude, fields.longitude = coordinates(float64(record.Latitude), float64(record.Longitude))

	return fields
}

// ip2locationValue cleans up placeholders: lite databases return a
// long message for fields they do not have and '-' for unknown values.
func ip2locationValue(value string) string {
	value = strings.TrimSpace(value)

	if value == "-" || strings.Contains(value, "unavailable") || strings.Contains(value, "Invalid") {
		return ""
	}

	return value
}

// NewIP2Location returns a provider which uses a local IP2Location BIN
// database. A file is kept opened while process is running.
func NewIP2Location(fs afero.Fs, path string) (geolib.Provider, error) {
	if path == "" {
		return nil, ErrDatabasePathIsRequired
	}

	file, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open database file: %w", err)
	}

	db, err := ip2location.OpenDBWithReader(file)
	if err != nil {
		file.Close()

		return nil, fmt.Errorf("cannot initialize a reader of ip2location database: %w", err)
	}

	return ip2locationProvider{
		db: db,
	}, nil
}
