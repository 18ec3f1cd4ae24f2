package providers

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/9seconds/geoprobe/geolib"
)

type NormalizeTestSuite struct {
	suite.Suite
}

func (suite *NormalizeTestSuite) TestNoCountryCode() {
	for _, v := range []string{"", "   ", "-"} {
		_, err := geoFields{countryCode: v, city: "Paris"}.normalize("test", "1.1.1.1")

		suite.ErrorIs(err, geolib.ErrInvalidResponse)
	}
}

func (suite *NormalizeTestSuite) TestDefaults() {
	result, err := geoFields{countryCode: " fr "}.normalize("test", "1.1.1.1")

	suite.NoError(err)
	suite.Equal("test", result.Source)
	suite.Equal("1.1.1.1", result.IP)
	suite.Equal("FR", result.CountryCode)
	suite.Equal("FR", result.CountryName)
	suite.Empty(result.City)
	suite.Empty(result.Region)
	suite.Empty(result.Timezone)
	suite.Nil(result.Latitude)
	suite.Nil(result.Longitude)
	suite.True(result.Accurate)
	suite.Empty(result.Error)
}

func (suite *NormalizeTestSuite) TestFull() {
	result, err := geoFields{
		ip:          "2001:db8::1",
		countryCode: "DE",
		countryName: "Germany",
		city:        "Berlin",
		region:      "Land Berlin",
		timezone:    "Europe/Berlin",
		latitude:    float64Ptr(52.52),
		longitude:   float64Ptr(13.405),
	}.normalize("test", "1.1.1.1")

	suite.NoError(err)
	suite.Equal("2001:db8::1", result.IP)
	suite.Equal("Germany", result.CountryName)
	suite.Equal("Berlin", result.City)
	suite.Equal("Land Berlin", result.Region)
	suite.Equal("Europe/Berlin", result.Timezone)
	suite.Equal(52.52, *result.Latitude)
	suite.Equal(13.405, *result.Longitude)
}

func (suite *NormalizeTestSuite) TestZeroCoordinatesAreKept() {
	result, err := geoFields{
		countryCode: "GH",
		latitude:    float64Ptr(0),
		longitude:   float64Ptr(0),
	}.normalize("test", "1.1.1.1")

	suite.NoError(err)
	suite.NotNil(result.Latitude)
	suite.NotNil(result.Longitude)
}

func (suite *NormalizeTestSuite) TestCoordinates() {
	lat, lon := coordinates(0, 0)

	suite.Nil(lat)
	suite.Nil(lon)

	lat, lon = coordinates(0, 12.5)

	suite.Equal(0.0, *lat)
	suite.Equal(12.5, *lon)
}

func (suite *NormalizeTestSuite) TestIP2LocationValue() {
	suite.Empty(ip2locationValue("-"))
	suite.Empty(ip2locationValue("This parameter is unavailable for selected data file. Please upgrade the data file."))
	suite.Empty(ip2locationValue("Invalid IP address."))
	suite.Equal("Tokyo", ip2locationValue(" Tokyo "))
}

func TestNormalize(t *testing.T) {
	suite.Run(t, &NormalizeTestSuite{})
}
