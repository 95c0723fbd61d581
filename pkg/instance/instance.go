package instance

import (
	"os"

	"github.com/pharmalink/pharmacy-pos/pkg/env"
)

// ID names this process in logs: PHARMAPOS_INSTANCE_ID, then the hostname,
// then "local".
func ID() string {
	if id := env.Get("INSTANCE_ID", ""); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
