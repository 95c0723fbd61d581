package env

import (
	"os"
	"strings"
)

// Prefix namespaces the few variables read outside pkg/config.
const Prefix = "PHARMAPOS_"

// Get returns PHARMAPOS_<key>, then the bare <key>, then fallback.
func Get(key, fallback string) string {
	for _, name := range []string{Prefix + key, key} {
		if val := strings.TrimSpace(os.Getenv(name)); val != "" {
			return val
		}
	}
	return fallback
}
