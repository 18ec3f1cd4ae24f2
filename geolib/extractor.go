package geolib

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/asergeyev/nradix"
)

// Headers which are checked by IPExtractor, in order of precedence.
const (
	HeaderForwardedFor = "X-Forwarded-For"
	HeaderCDNClientIP  = "CF-Connecting-IP"
	HeaderRealIP       = "X-Real-IP"
)

var (
	defaultBlockedRanges = []string{
		"127.0.0.0/8",
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"::1/128",
		"fd00::/8",
		"fe80::/10",
	}

	defaultIPExtractor = func() *IPExtractor {
		rv, err := NewIPExtractor(nil)
		if err != nil {
			panic(err)
		}

		return rv
	}()
)

// IPExtractor derives a public client IP address from request headers.
// It is safe for concurrent use: a radix tree of blocked ranges is
// populated only once, in constructor.
type IPExtractor struct {
	blocked *nradix.Tree
}

// Extract returns a canonical form of the client IP address. A second
// value is false if no header carries a public address.
//
// X-Forwarded-For is checked first and the first public entry of the
// list wins: this is an original client in the proxy chain. Then
// CF-Connecting-IP and X-Real-IP are checked.
func (e *IPExtractor) Extract(headers http.Header) (string, bool) {
	for _, value := range headers.Values(HeaderForwardedFor) {
		for _, chunk := range strings.Split(value, ",") {
			if ip, ok := e.parse(chunk); ok {
				return ip, true
			}
		}
	}

	for _, name := range []string{HeaderCDNClientIP, HeaderRealIP} {
		if ip, ok := e.parse(headers.Get(name)); ok {
			return ip, true
		}
	}

	return "", false
}

// IsPublicIP checks if a given value is an IP address which is not
// loopback, private or link-local.
func (e *IPExtractor) IsPublicIP(value string) bool {
	_, ok := e.parse(value)

	return ok
}

func (e *IPExtractor) parse(value string) (string, bool) {
	value = strings.TrimSpace(value)

	if !strings.ContainsAny(value, ".:") || strings.EqualFold(value, "localhost") {
		return "", false
	}

	value = strings.Trim(value, `"'`)

	if host, _, err := net.SplitHostPort(value); err == nil {
		value = host
	}

	value = strings.TrimSuffix(strings.TrimPrefix(value, "["), "]")

	addr, err := netip.ParseAddr(value)
	if err != nil {
		return "", false
	}

	addr = addr.WithZone("").Unmap()
	if !addr.IsValid() || addr.IsUnspecified() {
		return "", false
	}

	canonical := addr.String()
	mask := "/32"

	if addr.Is6() {
		mask = "/128"
	}

	found, err := e.blocked.FindCIDR(canonical + mask)
	if err != nil || found != nil {
		return "", false
	}

	return canonical, true
}

// NewIPExtractor creates a new extractor. Loopback, private and
// link-local ranges are always blocked, extraBlockedRanges are added on
// top of them.
func NewIPExtractor(extraBlockedRanges []string) (*IPExtractor, error) {
	tree := nradix.NewTree(0)

	for _, v := range append(append([]string{}, defaultBlockedRanges...), extraBlockedRanges...) {
		prefix, err := netip.ParsePrefix(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("incorrect blocked range %s: %w", v, err)
		}

		err = tree.AddCIDR(prefix.Masked().String(), true)
		if err != nil && err != nradix.ErrNodeBusy {
			return nil, fmt.Errorf("cannot add blocked range %s: %w", v, err)
		}
	}

	return &IPExtractor{
		blocked: tree,
	}, nil
}

// ExtractClientIP extracts a client IP address with default set of
// blocked ranges.
func ExtractClientIP(headers http.Header) (string, bool) {
	return defaultIPExtractor.Extract(headers)
}

// IsPublicIP validates an address with default set of blocked ranges.
func IsPublicIP(value string) bool {
	return defaultIPExtractor.IsPublicIP(value)
}
