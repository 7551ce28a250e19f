package prediction

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/healthsim/diagnosis/internal/classifier"
	"github.com/healthsim/diagnosis/internal/shared/auth"
	"github.com/healthsim/diagnosis/internal/shared/config"
	secmiddleware "github.com/healthsim/diagnosis/internal/shared/middleware"
)

const testSecret = "handler-secret"

func newTestServer(t *testing.T, store Store, authCfg config.AuthConfig) *httptest.Server {
	t.Helper()
	h := NewHandler(newTestService(store), authCfg, nil)
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func TestPredictEndpoint(t *testing.T) {
	srv := newTestServer(t, NewMemoryStore(10), config.AuthConfig{})

	tests := []struct {
		name         string
		body         string
		expected     int
		expectCode   string
		expectField  string
		expectResult classifier.Category
	}{
		{
			name:         "Mild illness",
			body:         `{"symptoms":["cough","sore throat"],"temperature":37.5,"age":25,"sex":"feminine","heart_rate":80}`,
			expected:     http.StatusOK,
			expectResult: classifier.CategoryMildIllness,
		},
		{
			name:         "Symptoms omitted",
			body:         `{"temperature":36.5,"age":30,"sex":"masculine","heart_rate":70}`,
			expected:     http.StatusOK,
			expectResult: classifier.CategoryNotSick,
		},
		{
			name:        "Invalid sex",
			body:        `{"symptoms":[],"temperature":36.5,"age":30,"sex":"unknown","heart_rate":70}`,
			expected:    http.StatusBadRequest,
			expectCode:  "VALIDATION_ERROR",
			expectField: classifier.FieldSex,
		},
		{
			name:        "Age out of range",
			body:        `{"symptoms":[],"temperature":36.5,"age":130,"sex":"masculine","heart_rate":70}`,
			expected:    http.StatusBadRequest,
			expectCode:  "VALIDATION_ERROR",
			expectField: classifier.FieldAge,
		},
		{
			name:        "Temperature missing",
			body:        `{"symptoms":[],"age":30,"sex":"masculine","heart_rate":70}`,
			expected:    http.StatusBadRequest,
			expectCode:  "VALIDATION_ERROR",
			expectField: classifier.FieldTemperature,
		},
		{
			name:       "Malformed JSON",
			body:       `{"symptoms":`,
			expected:   http.StatusBadRequest,
			expectCode: "BAD_REQUEST",
		},
		{
			name:       "Trailing garbage",
			body:       `{"temperature":36.5,"age":30,"sex":"masculine","heart_rate":70}garbage`,
			expected:   http.StatusBadRequest,
			expectCode: "BAD_REQUEST",
		},
		{
			name:       "Two objects",
			body:       `{"temperature":36.5,"age":30,"sex":"masculine","heart_rate":70} {}`,
			expected:   http.StatusBadRequest,
			expectCode: "BAD_REQUEST",
		},
		{
			name:         "Trailing whitespace",
			body:         "{\"temperature\":36.5,\"age\":30,\"sex\":\"masculine\",\"heart_rate\":70}\n ",
			expected:     http.StatusOK,
			expectResult: classifier.CategoryNotSick,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := post(t, srv.URL+"/predictions", tt.body)

			if resp.StatusCode != tt.expected {
				t.Fatalf("Expected status %d, got %d (%v)", tt.expected, resp.StatusCode, body)
			}
			if tt.expectResult != "" {
				if body["diagnosis"] != string(tt.expectResult) {
					t.Errorf("Expected diagnosis %s, got %v", tt.expectResult, body["diagnosis"])
				}
				if id, _ := body["id"].(string); id == "" {
					t.Error("Expected prediction id")
				}
			}
			if tt.expectCode != "" && body["code"] != tt.expectCode {
				t.Errorf("Expected code %s, got %v", tt.expectCode, body["code"])
			}
			if tt.expectField != "" {
				details, _ := body["details"].(map[string]any)
				if details["field"] != tt.expectField {
					t.Errorf("Expected field %s, got %v", tt.expectField, details["field"])
				}
				if detail, _ := body["detail"].(string); !strings.Contains(detail, tt.expectField) {
					t.Errorf("Expected detail to name %s, got %q", tt.expectField, detail)
				}
			}
		})
	}
}

func TestPredictEndpointStoreFailure(t *testing.T) {
	srv := newTestServer(t, failingStore{}, config.AuthConfig{})

	resp, body := post(t, srv.URL+"/predictions",
		`{"symptoms":["cough"],"temperature":37.0,"age":30,"sex":"masculine","heart_rate":70}`)

	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", resp.StatusCode)
	}
	if body["code"] != "INTERNAL_ERROR" {
		t.Errorf("Expected INTERNAL_ERROR, got %v", body["code"])
	}
	if strings.Contains(body["error"].(string), errStoreDown.Error()) {
		t.Error("Internal error details must not leak to the client")
	}
}

func TestReportEndpoint(t *testing.T) {
	srv := newTestServer(t, NewMemoryStore(10), config.AuthConfig{})

	for i := 0; i < 3; i++ {
		post(t, srv.URL+"/predictions", `{"symptoms":["palliative care"],"temperature":37.0,"age":60,"sex":"masculine","heart_rate":90}`)
	}

	resp, err := http.Get(srv.URL + "/report?limit=1")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var report struct {
		Total  int            `json:"total"`
		Counts map[string]int `json:"counts"`
		Recent []Record       `json:"recent"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("Failed to decode report: %v", err)
	}

	if report.Total != 3 {
		t.Errorf("Expected total 3, got %d", report.Total)
	}
	for _, c := range classifier.Categories() {
		if _, ok := report.Counts[string(c)]; !ok {
			t.Errorf("Expected %s in counts", c)
		}
	}
	if report.Counts[string(classifier.CategoryTerminalIllness)] != 3 {
		t.Errorf("Expected 3 terminal, got %d", report.Counts[string(classifier.CategoryTerminalIllness)])
	}
	if len(report.Recent) != 1 {
		t.Errorf("Expected 1 recent record, got %d", len(report.Recent))
	}
}

func TestReportEndpointLimitValidation(t *testing.T) {
	srv := newTestServer(t, NewMemoryStore(10), config.AuthConfig{})

	for _, limit := range []string{"0", "-3", "abc", "11"} {
		resp, err := http.Get(srv.URL + "/report?limit=" + limit)
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("limit=%s: expected status 400, got %d", limit, resp.StatusCode)
		}
	}
}

func TestReportEndpointAuth(t *testing.T) {
	authCfg := config.AuthConfig{Enabled: true, JWTSecret: testSecret, ReportRoles: []string{"clinician", "admin"}}
	srv := newTestServer(t, NewMemoryStore(10), authCfg)

	clinician, _ := auth.NewToken(testSecret, "dr-1", []string{"clinician"}, time.Hour)
	patient, _ := auth.NewToken(testSecret, "p-1", []string{"patient"}, time.Hour)

	tests := []struct {
		name     string
		token    string
		expected int
	}{
		{"No token", "", http.StatusUnauthorized},
		{"Wrong role", patient, http.StatusForbidden},
		{"Clinician", clinician, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, srv.URL+"/report", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("Request failed: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.expected {
				t.Errorf("Expected status %d, got %d", tt.expected, resp.StatusCode)
			}
		})
	}

	// Predictions stay open when the report is protected.
	resp, _ := post(t, srv.URL+"/predictions", `{"temperature":36.5,"age":30,"sex":"masculine","heart_rate":70}`)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected predictions without auth, got %d", resp.StatusCode)
	}
}

func TestPredictEndpointRateLimited(t *testing.T) {
	h := NewHandler(newTestService(NewMemoryStore(10)), config.AuthConfig{}, secmiddleware.NewIPRateLimiter(1, 1))
	router := h.Routes()

	body := `{"temperature":36.5,"age":30,"sex":"masculine","heart_rate":70}`
	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/predictions", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("Expected [200 429], got %v", codes)
	}
}

func TestRandomAndWelcomeEndpoints(t *testing.T) {
	srv := newTestServer(t, NewMemoryStore(10), config.AuthConfig{})

	resp, err := http.Get(srv.URL + "/random")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	var random map[string]string
	json.NewDecoder(resp.Body).Decode(&random)
	resp.Body.Close()
	if !classifier.Category(random["diagnosis"]).IsValid() {
		t.Errorf("Expected a valid category, got %q", random["diagnosis"])
	}

	resp, err = http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	var welcome map[string]string
	json.NewDecoder(resp.Body).Decode(&welcome)
	resp.Body.Close()
	if welcome["message"] != WelcomeMessage {
		t.Errorf("Expected welcome message, got %q", welcome["message"])
	}
}
