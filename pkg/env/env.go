package env

import (
	"os"
	"strings"
)

// Prefix namespaces storefront variables; Get checks the prefixed name first.
const Prefix = "STOREFRONT_"

// Get returns STOREFRONT_<key>, then <key>, then fallback. Blank values count as unset.
func Get(key, fallback string) string {
	for _, name := range []string{Prefix + key, key} {
		if val := strings.TrimSpace(os.Getenv(name)); val != "" {
			return val
		}
	}
	return fallback
}
