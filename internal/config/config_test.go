package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		wantErr     bool
		errorString string
	}{
		{
			name: "valid config",
			config: Config{
				Port:                 "8080",
				SQLiteDBPath:         "./test.db",
				SessionTTL:           30 * 24 * time.Hour,
				SessionSweepInterval: time.Hour,
			},
			wantErr: false,
		},
		{
			name: "invalid port - non-numeric",
			config: Config{
				Port:                 "abc",
				SQLiteDBPath:         "./test.db",
				SessionTTL:           time.Hour,
				SessionSweepInterval: time.Hour,
			},
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name: "invalid port - out of range",
			config: Config{
				Port:                 "70000",
				SQLiteDBPath:         "./test.db",
				SessionTTL:           time.Hour,
				SessionSweepInterval: time.Hour,
			},
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name: "empty db path",
			config: Config{
				Port:                 "8080",
				SQLiteDBPath:         "",
				SessionTTL:           time.Hour,
				SessionSweepInterval: time.Hour,
			},
			wantErr:     true,
			errorString: "SQLite database path cannot be empty",
		},
		{
			name: "session TTL too short",
			config: Config{
				Port:                 "8080",
				SQLiteDBPath:         "./test.db",
				SessionTTL:           time.Second,
				SessionSweepInterval: time.Hour,
			},
			wantErr:     true,
			errorString: "invalid session TTL",
		},
		{
			name: "sweep interval too short",
			config: Config{
				Port:                 "8080",
				SQLiteDBPath:         "./test.db",
				SessionTTL:           time.Hour,
				SessionSweepInterval: time.Second,
			},
			wantErr:     true,
			errorString: "invalid session sweep interval",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Use a temp dir so path validation does not touch the repo
			if tt.config.SQLiteDBPath != "" {
				tt.config.SQLiteDBPath = filepath.Join(t.TempDir(), tt.config.SQLiteDBPath)
			}
			err := tt.config.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected validation error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errorString) {
					t.Fatalf("expected error containing %q, got %q", tt.errorString, err.Error())
				}
			} else if err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("SECURE_COOKIES", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.SessionTTL != 30*24*time.Hour {
		t.Fatalf("expected default session TTL of 30 days, got %v", cfg.SessionTTL)
	}
	if cfg.SecureCookies {
		t.Fatal("expected secure cookies to default to false")
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("FINTRACK_TEST_STR", "value")
	if got := getEnv("FINTRACK_TEST_STR", "fallback"); got != "value" {
		t.Fatalf("expected value, got %s", got)
	}
	if got := getEnv("FINTRACK_TEST_MISSING", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %s", got)
	}

	t.Setenv("FINTRACK_TEST_DUR", "90s")
	if got := getEnvDuration("FINTRACK_TEST_DUR", time.Minute); got != 90*time.Second {
		t.Fatalf("expected 90s, got %v", got)
	}
	t.Setenv("FINTRACK_TEST_DUR", "nonsense")
	if got := getEnvDuration("FINTRACK_TEST_DUR", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback minute, got %v", got)
	}

	t.Setenv("FINTRACK_TEST_BOOL", "true")
	if !getEnvBool("FINTRACK_TEST_BOOL", false) {
		t.Fatal("expected true")
	}
}
