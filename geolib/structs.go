package geolib

// GeoResult is a canonical result of geolocation. Every provider maps
// its own response schema into this structure.
type GeoResult struct {
	Source      string   `json:"source"`
	IP          string   `json:"ip"`
	CountryCode string   `json:"countryCode"`
	CountryName string   `json:"countryName"`
	City        string   `json:"city"`
	Region      string   `json:"region"`
	Timezone    string   `json:"timezone"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Accurate    bool     `json:"accurate"`
	Error       string   `json:"error,omitempty"`
}

// OK tells if result came from some provider and was not degraded.
func (g *GeoResult) OK() bool {
	return g.Accurate && g.CountryCode != ""
}

func (g GeoResult) withSource(source string) GeoResult {
	g.Source = source

	return g
}
