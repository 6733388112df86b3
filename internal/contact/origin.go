package contact

import "strings"

// OriginAllowed checks the request Origin against the site's allow-list.
// No Origin header means a non-browser or same-origin caller and is allowed.
// An empty allow-list means the tenant opted out of origin restriction.
func OriginAllowed(origin string, allowedOrigins []string) bool {
	if origin == "" {
		return true
	}
	if len(allowedOrigins) == 0 {
		return true
	}

	for _, allowed := range allowedOrigins {
		if strings.EqualFold(strings.TrimSpace(allowed), strings.TrimSpace(origin)) {
			return true
		}
	}
	return false
}
