package providers

import (
	"context"
	"fmt"
	"net/url"

	"github.com/9seconds/geoprobe/geolib"
)

type ipapicoResponse struct {
	IP          string   `json:"ip"`
	Error       bool     `json:"error"`
	Reason      string   `json:"reason"`
	CountryCode string   `json:"country_code"`
	CountryName string   `json:"country_name"`
	City        string   `json:"city"`
	Region      string   `json:"region"`
	Timezone    string   `json:"timezone"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

type ipapicoProvider struct {
	client geolib.HTTPClient
}

func (i ipapicoProvider) Name() string {
	return NameIPAPICo
}

func (i ipapicoProvider) Lookup(ctx context.Context, ip string) (geolib.GeoResult, error) {
	jsonResponse := ipapicoResponse{}

	if err := fetchJSON(ctx, i.client, "https://ipapi.co/"+url.PathEscape(ip)+"/json/", &jsonResponse); err != nil {
		return geolib.GeoResult{}, err
	}

	if jsonResponse.Error {
		return geolib.GeoResult{}, fmt.Errorf("failed to geolocate: %s: %w",
			jsonResponse.Reason, geolib.ErrInvalidResponse)
	}

	return geoFields{
		ip:          jsonResponse.IP,
		countryCode: jsonResponse.CountryCode,
		countryName: jsonResponse.CountryName,
		city:        jsonResponse.City,
		region:      jsonResponse.Region,
		timezone:    jsonResponse.Timezone,
		latitude:    jsonResponse.Latitude,
		longitude:   jsonResponse.Longitude,
	}.normalize(NameIPAPICo, ip)
}

// NewIPAPICo returns a provider for https://ipapi.co. It works without
// any token.
func NewIPAPICo(client geolib.HTTPClient) geolib.Provider {
	return ipapicoProvider{
		client: client,
	}
}
