package config

import (
	"reflect"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Server.Port != 5000 {
		t.Errorf("Expected port 5000, got %d", cfg.Server.Port)
	}
	if cfg.Store.Driver != StoreMemory {
		t.Errorf("Expected driver %s, got %s", StoreMemory, cfg.Store.Driver)
	}
	if cfg.Store.Capacity != 1000 {
		t.Errorf("Expected capacity 1000, got %d", cfg.Store.Capacity)
	}
	if cfg.Auth.Enabled {
		t.Error("Expected auth disabled outside production")
	}
	if cfg.Server.TrustProxy {
		t.Error("Expected forwarding headers untrusted by default")
	}
	if cfg.KurrentDB.Stream != "diagnosis-predictions" {
		t.Errorf("Expected default stream, got %s", cfg.KurrentDB.Stream)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "8081")
	t.Setenv("ENV", "production")
	t.Setenv("STORE_DRIVER", StoreFile)
	t.Setenv("STORE_CAPACITY", "50")
	t.Setenv("REPORT_RECENT_LIMIT", "5")
	t.Setenv("REPORT_ROLES", "doctor, nurse ,")
	t.Setenv("TRUST_PROXY", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Server.Port != 8081 {
		t.Errorf("Expected port 8081, got %d", cfg.Server.Port)
	}
	if !cfg.Server.TrustProxy {
		t.Error("Expected TRUST_PROXY to be honored")
	}
	if !cfg.Auth.Enabled {
		t.Error("Expected auth enabled in production")
	}
	if cfg.Store.Driver != StoreFile || cfg.Store.Capacity != 50 || cfg.Store.RecentLimit != 5 {
		t.Errorf("Unexpected store config %+v", cfg.Store)
	}
	if !reflect.DeepEqual(cfg.Auth.ReportRoles, []string{"doctor", "nurse"}) {
		t.Errorf("Expected [doctor nurse], got %v", cfg.Auth.ReportRoles)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"Unknown driver", "STORE_DRIVER", "redis"},
		{"Zero capacity", "STORE_CAPACITY", "0"},
		{"Recent limit above capacity", "REPORT_RECENT_LIMIT", "5000"},
		{"Port out of range", "SERVER_PORT", "70000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Error("Expected error but got none")
			}
		})
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "n", SSLMode: "disable"}
	expected := "host=db port=5432 user=u password=p dbname=n sslmode=disable"
	if got := d.DSN(); got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}
