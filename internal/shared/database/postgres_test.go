package database

import (
	"testing"

	"github.com/healthsim/diagnosis/internal/shared/config"
)

func TestPoolConfig(t *testing.T) {
	base := config.DatabaseConfig{
		Host: "db", Port: 5432, User: "u", Password: "p", Database: "diagnosis", SSLMode: "disable",
	}

	tests := []struct {
		name     string
		min, max int
		wantErr  bool
	}{
		{"defaults", 2, 10, false},
		{"no idle connections", 0, 1, false},
		{"min above max", 5, 2, true},
		{"zero max", 0, 0, true},
		{"negative min", -1, 4, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			cfg.MinConns, cfg.MaxConns = tt.min, tt.max

			pc, err := PoolConfig(cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr {
				return
			}
			if pc.MaxConns != int32(tt.max) || pc.MinConns != int32(tt.min) {
				t.Errorf("Expected pool %d..%d, got %d..%d", tt.min, tt.max, pc.MinConns, pc.MaxConns)
			}
			if pc.ConnConfig.Host != "db" || pc.ConnConfig.Database != "diagnosis" {
				t.Errorf("Unexpected connection target %s/%s", pc.ConnConfig.Host, pc.ConnConfig.Database)
			}
		})
	}
}
