package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/healthsim/diagnosis/internal/shared/config"
)

const testSecret = "test-secret"

func protected() http.Handler {
	cfg := config.AuthConfig{Enabled: true, JWTSecret: testSecret}
	return Middleware(cfg)(RequireRoles("clinician", "admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUser(r.Context()) == nil {
			w.Header().Set("X-Missing-User", "true")
		}
		w.WriteHeader(http.StatusOK)
	})))
}

func TestMiddleware(t *testing.T) {
	clinician, err := NewToken(testSecret, "dr-who", []string{"clinician"}, time.Hour)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	patient, _ := NewToken(testSecret, "p-1", []string{"patient"}, time.Hour)
	expired, _ := NewToken(testSecret, "dr-who", []string{"clinician"}, -time.Hour)
	foreign, _ := NewToken("other-secret", "dr-who", []string{"clinician"}, time.Hour)

	tests := []struct {
		name     string
		header   string
		expected int
	}{
		{"Missing header", "", http.StatusUnauthorized},
		{"Wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"Valid clinician", "Bearer " + clinician, http.StatusOK},
		{"Missing role", "Bearer " + patient, http.StatusForbidden},
		{"Expired token", "Bearer " + expired, http.StatusUnauthorized},
		{"Wrong secret", "Bearer " + foreign, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/report", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			protected().ServeHTTP(rec, req)

			if rec.Code != tt.expected {
				t.Errorf("Expected status %d, got %d", tt.expected, rec.Code)
			}
			if rec.Code == http.StatusOK && rec.Header().Get("X-Missing-User") != "" {
				t.Error("Expected user in context")
			}
		})
	}
}

func TestHasAnyRole(t *testing.T) {
	u := &User{ID: "x", Roles: []string{"admin"}}
	if !u.HasAnyRole("clinician", "admin") {
		t.Error("Expected admin to match")
	}
	if u.HasAnyRole("clinician") {
		t.Error("Expected clinician not to match")
	}
}
