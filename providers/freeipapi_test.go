package providers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/suite"

	"github.com/9seconds/geoprobe/geolib"
	"github.com/9seconds/geoprobe/providers"
)

type MockedFreeIPAPITestSuite struct {
	MockedProviderTestSuite

	prov geolib.Provider
}

func (suite *MockedFreeIPAPITestSuite) SetupTest() {
	suite.MockedProviderTestSuite.SetupTest()

	suite.prov = providers.NewFreeIPAPI(suite.http)
}

func (suite *MockedFreeIPAPITestSuite) TestName() {
	suite.Equal(providers.NameFreeIPAPI, suite.prov.Name())
}

func (suite *MockedFreeIPAPITestSuite) TestLookupFailed() {
	httpmock.RegisterResponder("GET",
		"https://freeipapi.com/api/json/23.22.13.113",
		httpmock.NewStringResponder(http.StatusInternalServerError, ""))

	_, err := suite.prov.Lookup(context.Background(), testIP)

	suite.Error(err)
}

func (suite *MockedFreeIPAPITestSuite) TestLookupPlaceholderCountry() {
	httpmock.RegisterResponder("GET",
		"https://freeipapi.com/api/json/23.22.13.113",
		httpmock.NewStringResponder(http.StatusOK, `{"ipAddress": "23.22.13.113", "countryCode": "-"}`))

	_, err := suite.prov.Lookup(context.Background(), testIP)

	suite.ErrorIs(err, geolib.ErrInvalidResponse)
}

func (suite *MockedFreeIPAPITestSuite) TestLookupEmptyCountry() {
	httpmock.RegisterResponder("GET",
		"https://freeipapi.com/api/json/23.22.13.113",
		httpmock.NewStringResponder(http.StatusOK, `{"ipAddress": "23.22.13.113", "countryCode": ""}`))

	_, err := suite.prov.Lookup(context.Background(), testIP)

	suite.ErrorIs(err, geolib.ErrInvalidResponse)
}

func (suite *MockedFreeIPAPITestSuite) TestLookupOk() {
	httpmock.RegisterResponder("GET",
		"https://freeipapi.com/api/json/23.22.13.113",
		httpmock.NewStringResponder(http.StatusOK, `{
  "ipVersion": 4,
  "ipAddress": "23.22.13.113",
  "latitude": 39.043757,
  "longitude": -77.487442,
  "countryName": "United States of America",
  "countryCode": "US",
  "timeZone": "-04:00",
  "zipCode": "20147",
  "cityName": "Ashburn",
  "regionName": "Virginia",
  "isProxy": false
}`))

	result, err := suite.prov.Lookup(context.Background(), testIP)

	suite.NoError(err)
	suite.Equal(providers.NameFreeIPAPI, result.Source)
	suite.Equal("US", result.CountryCode)
	suite.Equal("United States of America", result.CountryName)
	suite.Equal("Ashburn", result.City)
	suite.Equal("Virginia", result.Region)
	suite.InDelta(-77.487442, *result.Longitude, 0.0001)
}

func TestFreeIPAPI(t *testing.T) {
	suite.Run(t, &MockedFreeIPAPITestSuite{})
}
