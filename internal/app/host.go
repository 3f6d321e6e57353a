package app

import "net/url"

// hostOf returns the host part of a URL, used as the calendar UID domain.
func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
