package apiclient

import (
	"fmt"
	"net"
	"strings"
)

// DefaultLocalPort is the port of the backend when the dashboard runs on a loopback host.
const DefaultLocalPort = 3000

// ResolveBaseURL picks the backend base URL for the host the dashboard is served as.
// Loopback hosts talk to the local backend on an explicit port; any other host
// uses the /api prefix under remoteOrigin (empty keeps it relative).
func ResolveBaseURL(host string, localPort int, remoteOrigin string) string {
	if IsLoopback(host) {
		if localPort <= 0 {
			localPort = DefaultLocalPort
		}
		return fmt.Sprintf("http://localhost:%d/api", localPort)
	}
	return strings.TrimRight(remoteOrigin, "/") + "/api"
}

// IsLoopback reports whether host names the local machine. A port suffix is ignored.
func IsLoopback(host string) bool {
	host = strings.TrimSpace(strings.ToLower(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")
	switch host {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}
