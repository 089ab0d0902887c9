package config

import (
	"os"
	"testing"
	"time"

	"github.com/tendant/simple-crm-core/pkg/ident"
)

func TestLoad_Defaults(t *testing.T) {
	// Set required AUTH_JWT_SECRET
	os.Setenv("AUTH_JWT_SECRET", "test-secret-key")
	defer os.Unsetenv("AUTH_JWT_SECRET")

	// Clear any other env vars that might interfere
	envVars := []string{"SERVER_ADDR", "SERVER_PORT", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE", "ID_ENCODING"}
	for _, v := range envVars {
		os.Unsetenv(v)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Check defaults
	if cfg.ServerAddr != "0.0.0.0" {
		t.Errorf("ServerAddr = %q, want %q", cfg.ServerAddr, "0.0.0.0")
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 8080)
	}
	if cfg.DBHost != "localhost" {
		t.Errorf("DBHost = %q, want %q", cfg.DBHost, "localhost")
	}
	if cfg.DBSSLMode != "disable" {
		t.Errorf("DBSSLMode = %q, want %q", cfg.DBSSLMode, "disable")
	}
	if cfg.IDEncoding != ident.Binary {
		t.Errorf("IDEncoding = %v, want binary", cfg.IDEncoding)
	}
	if !cfg.RateLimit.Enabled {
		t.Error("RateLimit should be enabled by default")
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 30s", cfg.ShutdownTimeout)
	}
}

func TestLoad_RequiredAuthSecret(t *testing.T) {
	os.Unsetenv("AUTH_JWT_SECRET")

	_, err := Load()
	if err == nil {
		t.Error("Load should fail when AUTH_JWT_SECRET is not set")
	}
}

func TestLoad_IDEncoding(t *testing.T) {
	os.Setenv("AUTH_JWT_SECRET", "test-secret-key")
	defer func() {
		os.Unsetenv("AUTH_JWT_SECRET")
		os.Unsetenv("ID_ENCODING")
	}()

	tests := []struct {
		value   string
		want    ident.Encoding
		wantErr bool
	}{
		{value: "binary", want: ident.Binary},
		{value: "compact", want: ident.CompactText},
		{value: "canonical", want: ident.CanonicalText},
		{value: "base64", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			os.Setenv("ID_ENCODING", tt.value)

			cfg, err := Load()
			if tt.wantErr {
				if err == nil {
					t.Error("Load should fail for unknown encoding")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if cfg.IDEncoding != tt.want {
				t.Errorf("IDEncoding = %v, want %v", cfg.IDEncoding, tt.want)
			}
		})
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Setenv("AUTH_JWT_SECRET", "custom-secret")
	os.Setenv("SERVER_PORT", "9090")
	os.Setenv("DB_HOST", "db.example.com")
	os.Setenv("RATE_LIMIT_ENABLED", "false")
	defer func() {
		os.Unsetenv("AUTH_JWT_SECRET")
		os.Unsetenv("SERVER_PORT")
		os.Unsetenv("DB_HOST")
		os.Unsetenv("RATE_LIMIT_ENABLED")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ServerPort != 9090 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 9090)
	}
	if cfg.DBHost != "db.example.com" {
		t.Errorf("DBHost = %q, want %q", cfg.DBHost, "db.example.com")
	}
	if cfg.RateLimit.Enabled {
		t.Error("RateLimit should be disabled")
	}
}

func TestGetEnvInt_InvalidValue(t *testing.T) {
	os.Setenv("TEST_INT", "not-a-number")
	defer os.Unsetenv("TEST_INT")

	result := getEnvInt("TEST_INT", 42)
	if result != 42 {
		t.Errorf("getEnvInt should return default for invalid value, got %d", result)
	}
}

func TestGetEnvBool_InvalidValue(t *testing.T) {
	os.Setenv("TEST_BOOL", "maybe")
	defer os.Unsetenv("TEST_BOOL")

	result := getEnvBool("TEST_BOOL", true)
	if !result {
		t.Error("getEnvBool should return default for invalid value")
	}
}

func TestGetEnvDuration_InvalidValue(t *testing.T) {
	os.Setenv("TEST_DURATION", "invalid")
	defer os.Unsetenv("TEST_DURATION")

	result := getEnvDuration("TEST_DURATION", 5*time.Minute)
	if result != 5*time.Minute {
		t.Errorf("getEnvDuration should return default for invalid value, got %v", result)
	}
}
