package http

import (
	"fmt"
	"net/http"
	"strings"
)

// GetBaseURL returns the externally visible URL of the service.
// If configuredURL is empty, it is constructed from request headers.
func GetBaseURL(r *http.Request, configuredURL string) string {
	if configuredURL != "" {
		return strings.TrimRight(configuredURL, "/")
	}

	// TLS is assumed to terminate at a reverse proxy
	scheme := "https"
	if r.TLS == nil && r.Header.Get("X-Forwarded-Proto") == "http" {
		scheme = "http"
	}

	// Priority: Alt-Used (Cloud Run) > X-Forwarded-Host > Host
	host := r.Host
	if altUsed := r.Header.Get("Alt-Used"); altUsed != "" {
		host = altUsed
	} else if forwardedHost := r.Header.Get("X-Forwarded-Host"); forwardedHost != "" {
		// Use the first one (original client request)
		host = strings.TrimSpace(strings.Split(forwardedHost, ",")[0])
	}

	if host == "" {
		host = "localhost"
	}

	return fmt.Sprintf("%s://%s", scheme, host)
}

// reportURL returns the HTML view of a week's report
func reportURL(r *http.Request, configuredURL, week string) string {
	return fmt.Sprintf("%s/api/weeks/%s/report?format=html", GetBaseURL(r, configuredURL), week)
}
