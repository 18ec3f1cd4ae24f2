package geolib_test

import (
	"fmt"
	"net/http"

	"github.com/9seconds/geoprobe/geolib"
)

func ExampleExtractClientIP() {
	headers := http.Header{}

	headers.Set(geolib.HeaderForwardedFor, "10.0.0.1, [2001:db8::42]:443, 1.1.1.1")

	fmt.Println(geolib.ExtractClientIP(headers))
	// Output: 2001:db8::42 true
}

func ExampleIsPublicIP() {
	fmt.Println(geolib.IsPublicIP("192.168.1.1"))
	fmt.Println(geolib.IsPublicIP("8.8.8.8"))
	// Output:
	// false
	// true
}
