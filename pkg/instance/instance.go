package instance

import (
	"os"

	"github.com/angelmondragon/chieftain/pkg/env"
)

// ID names this storefront process in logs. Platform dyno names win over the
// host name.
func ID() string {
	if id := env.First("", "CHIEFTAIN_INSTANCE_ID", "DYNO"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
