package providers

import "net/url"

// hostFromBaseURL extracts the host that keys a provider's rate-limit bucket,
// so overridden endpoints are throttled under their own host rather than the
// production one. Unparseable or host-less URLs fall back.
func hostFromBaseURL(baseURL, fallback string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return fallback
	}
	return u.Host
}
