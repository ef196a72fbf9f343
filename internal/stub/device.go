package stub

import (
	"net"
	"net/http"
	"strings"

	"github.com/mssola/useragent"
)

// Device is what the service remembers about the client of a session.
type Device struct {
	IP      string
	Browser string
	OS      string
}

// DeviceFromRequest reads the client address and User-Agent of r.
func DeviceFromRequest(r *http.Request) Device {
	ua := useragent.New(r.UserAgent())

	browser, version := ua.Browser()
	if version != "" {
		browser += " " + version
	}
	if browser == "" {
		browser = "Unknown"
	}

	system := ua.OS()
	if system == "" {
		system = "Unknown"
	}

	return Device{
		IP:      clientIP(r),
		Browser: browser,
		OS:      system,
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
