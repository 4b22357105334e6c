package blogapp

import (
	"net/url"
	"os"
	"path"
	"strconv"
	"strings"
)

// BuildURL joins a base URL with path segments. The bare base keeps a
// trailing slash; joined paths do not.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	if len(pathSegments) == 0 {
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		return u.String()
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	return u.String()
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// EnvBool parses a boolean environment variable, or returns fallback when
// it is unset or unparsable.
func EnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

// EnvInt parses an integer environment variable, or returns fallback when
// it is unset or unparsable.
func EnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
