package hmr

import "regexp"

// refreshMarker is emitted by the refresh generator for every component registration.
var refreshMarker = regexp.MustCompile(`\$RefreshReg\$\(`)

// HasRefreshMarker reports whether compiled code self-registers refreshable components.
func HasRefreshMarker(code string) bool {
	return refreshMarker.MatchString(code)
}
