// This package provides a set of structs and functions which are used
// to geolocate a client of HTTP request.
//
// geolib is a core of the geoprobe project. The rest of the application
// is a thin shell around it: how to read a configuration, how to wire
// providers, how to start HTTP server.
//
// Resolver is a main entity of the geolib. It takes a client IP address
// (or extracts it from proxy headers), checks a bounded cache and, if
// there is nothing fresh there, races a set of primary providers. The
// first provider which responds with a valid payload wins. If all of
// them fail, a single fallback provider is asked. Concurrent lookups
// of the same address share one race.
//
// Resolver never fails. If it is not possible to geolocate a client,
// it returns a degraded GeoResult with Accurate set to false and an
// Error which describes what went wrong.
package geolib
