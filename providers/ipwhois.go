package providers

import (
	"context"
	"fmt"
	"net/url"

	"github.com/9seconds/geoprobe/geolib"
)

type ipwhoisResponse struct {
	Success     bool     `json:"success"`
	Message     string   `json:"message"`
	IP          string   `json:"ip"`
	CountryCode string   `json:"country_code"`
	Country     string   `json:"country"`
	Region      string   `json:"region"`
	City        string   `json:"city"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Timezone    struct {
		ID string `json:"id"`
	} `json:"timezone"`
}

type ipwhoisProvider struct {
	client geolib.HTTPClient
}

func (i ipwhoisProvider) Name() string {
	return NameIPWhoIs
}

func (i ipwhoisProvider) Lookup(ctx context.Context, ip string) (geolib.GeoResult, error) {
	jsonResponse := ipwhoisResponse{}

	if err := fetchJSON(ctx, i.client, "https://ipwho.is/"+url.PathEscape(ip), &jsonResponse); err != nil {
		return geolib.GeoResult{}, err
	}

	if !jsonResponse.Success {
		return geolib.GeoResult{}, fmt.Errorf("failed to geolocate: %s: %w",
			jsonResponse.Message, geolib.ErrInvalidResponse)
	}

	return geoFields{
		ip:          jsonResponse.IP,
		countryCode: jsonResponse.CountryCode,
		countryName: jsonResponse.Country,
		city:        jsonResponse.City,
		region:      jsonResponse.Region,
		timezone:    jsonResponse.Timezone.ID,
		latitude:    jsonResponse.Latitude,
		longitude:   jsonResponse.Longitude,
	}.normalize(NameIPWhoIs, ip)
}

// NewIPWhoIs returns a provider for https://ipwho.is.
func NewIPWhoIs(client geolib.HTTPClient) geolib.Provider {
	return ipwhoisProvider{
		client: client,
	}
}
