package app

import (
	"net/url"
	"strings"
)

func isGitHubURL(ref string) bool {
	u, err := url.Parse(ref)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") {
		return false
	}
	host := strings.TrimPrefix(u.Host, "www.")
	return host == "github.com" && strings.Trim(u.Path, "/") != ""
}
