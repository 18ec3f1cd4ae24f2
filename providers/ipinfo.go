package providers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/9seconds/geoprobe/geolib"
)

type ipinfoResponse struct {
	IP       string `json:"ip"`
	City     string `json:"city"`
	Region   string `json:"region"`
	Country  string `json:"country"`
	Location string `json:"loc"`
	Timezone string `json:"timezone"`
}

// coordinates parses loc field which looks like "36.7957,-76.0126".
func (i ipinfoResponse) coordinates() (*float64, *float64) {
	chunks := strings.Split(i.Location, ",")
	if len(chunks) != 2 {
		return nil, nil
	}

	latitude, err := strconv.ParseFloat(strings.TrimSpace(chunks[0]), 64)
	if err != nil {
		return nil, nil
	}

	longitude, err := strconv.ParseFloat(strings.TrimSpace(chunks[1]), 64)
	if err != nil {
		return nil, nil
	}

	return float64Ptr(latitude), float64Ptr(longitude)
}

type ipinfoProvider struct {
	authToken string
	client    geolib.HTTPClient
}

func (i ipinfoProvider) Name() string {
	return NameIPInfo
}

func (i ipinfoProvider) Lookup(ctx context.Context, ip string) (geolib.GeoResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		"https://ipinfo.io/"+url.PathEscape(ip)+"/json", nil)
	if err != nil {
		return geolib.GeoResult{}, err
	}

	req.Header.Set("Accept", "application/json")

	if i.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+i.authToken)
	}

	jsonResponse := ipinfoResponse{}

	if err := fetchJSONRequest(i.client, req, &jsonResponse); err != nil {
		return geolib.GeoResult{}, err
	}

	latitude, longitude := jsonResponse.coordinates()

	// ipinfo has no human-readable country name in its free schema.
	return geoFields{
		ip:          jsonResponse.IP,
		countryCode: jsonResponse.Country,
		city:        jsonResponse.City,
		region:      jsonResponse.Region,
		timezone:    jsonResponse.Timezone,
		latitude:    latitude,
		longitude:   longitude,
	}.normalize(NameIPInfo, ip)
}

// NewIPInfo returns a provider for https://ipinfo.io. auth_token
// parameter is optional.
func NewIPInfo(client geolib.HTTPClient, parameters map[string]string) geolib.Provider {
	return ipinfoProvider{
		authToken: parameters["auth_token"],
		client:    client,
	}
}
