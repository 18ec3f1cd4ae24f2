package providers

const (
	// Identifier for ipapi.co.
	NameIPAPICo = "ipapi.co"

	// Identifier for ipinfo.io.
	NameIPInfo = "ipinfo"

	// Identifier for ipwho.is.
	NameIPWhoIs = "ipwhois"

	// Identifier for freeipapi.com.
	NameFreeIPAPI = "freeipapi"

	// Identifier for tools.keycdn.com.
	NameKeyCDN = "keycdn"

	// Identifier for ipstack.com
	NameIPStack = "ipstack"

	// Identifier for ip2c.org.
	NameIP2C = "ip2c"

	// Identifier for local MaxMind GeoIP2/GeoLite2 City database.
	NameMaxmind = "maxmind"

	// Identifier for local IP2Location BIN database.
	NameIP2Location = "ip2location"
)
