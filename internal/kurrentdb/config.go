package kurrentdb

import (
	"fmt"
	"net/url"

	"github.com/healthsim/diagnosis/internal/shared/config"
)

// ConnectionString returns the esdb:// connection string for the EventStore client.
func ConnectionString(cfg config.KurrentDBConfig) string {
	var auth string
	if cfg.Username != "" && cfg.Password != "" {
		auth = url.UserPassword(cfg.Username, cfg.Password).String() + "@"
	}

	var tls string
	if cfg.Insecure {
		tls = "?tls=false"
	}

	return fmt.Sprintf("esdb://%s%s:%d%s", auth, cfg.Host, cfg.Port, tls)
}
