package helpers

import (
	"strconv"
	"strings"
)

// BearerHeaders returns the headers every authenticated request and socket open carries
func BearerHeaders(token string) map[string]string {
	if token == "" {
		return map[string]string{}
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

// BearerToken extracts the token from an Authorization header value
func BearerToken(authorization string) string {
	if !strings.HasPrefix(authorization, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authorization, "Bearer "))
}

// ParseStringToInt parses base 10 int64
func ParseStringToInt(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
