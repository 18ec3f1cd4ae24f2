package providers

import (
	"context"
	"fmt"
	"net"

	"github.com/9seconds/geoprobe/geolib"
	"github.com/oschwald/geoip2-golang"
	"github.com/spf13/afero"
)

type maxmindProvider struct {
	reader *geoip2.Reader
}

func (m maxmindProvider) Name() string {
	return NameMaxmind
}

func (m maxmindProvider) Lookup(ctx context.Context, ip string) (geolib.GeoResult, error) {
	if err := ctx.Err(); err != nil {
		return geolib.GeoResult{}, err
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return geolib.GeoResult{}, fmt.Errorf("incorrect ip address %s", ip)
	}

	record, err := m.reader.City(parsed)
	if err != nil {
		return geolib.GeoResult{}, fmt.Errorf("cannot lookup this ip address: %w", err)
	}

	return maxmindFields(record).normalize(NameMaxmind, ip)
}

func maxmindFields(record *geoip2.City) geoFields {
	fields := geoFields{
		countryCode: record.Country.IsoCode,
		countryName: record.Country.Names["en"],
		city:        record.City.Names["en"],
		timezone:    record.Location.TimeZone,
	}

	if len(record.Subdivisions) > 0 {
		fields.region = record.Subdivisions[0].Names["en"]
	}

	fields.latitude, fields.longitude = coordinates(record.Location.Latitude, record.Location.Longitude)

	return fields
}

// NewMaxmind returns a provider which uses a local GeoIP2 or GeoLite2
// City database. A database is read into memory once, it is not
// updated while process is running.
func NewMaxmind(fs afero.Fs, path string) (geolib.Provider, error) {
	if path == "" {
		return nil, ErrDatabasePathIsRequired
	}

	content, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("cannot read database file: %w", err)
	}

	reader, err := geoip2.FromBytes(content)
	if err != nil {
		return nil, fmt.Errorf("cannot initialize a reader of maxmind database: %w", err)
	}

	return maxmindProvider{
		reader: reader,
	}, nil
}
