// Geoprobe is a service which tells where an HTTP client comes from.
//
// The main property of the service is that it never fails. If client
// sent no usable IP address or every upstream is down, it still gets
// HTTP 200 with a best-effort answer and an error message inside.
//
// Tool itself is organized into 3 logical parts:
//
// Geolib
//
// geolib is a core package. It has Resolver which extracts client IP
// from proxy headers, caches answers, collapses concurrent requests for
// the same address and races a set of pluggable providers. Resolver
// can act as http.Handler.
//
// Providers
//
// This package has a set of provider implementations: public JSON
// APIs like ipapi.co or ipinfo.io and local databases like MaxMind
// GeoLite2 or IP2Location.
//
// Geoprobe
//
// A main package itself wires both geolib and providers according to a
// config file and starts http server with Prometheus metrics.
package main
