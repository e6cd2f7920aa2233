package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

// Requirement: every key has a usable default when nothing is configured.
func TestLoad_Defaults(t *testing.T) {
	// Act
	c, err := Load(missingEnvFile(t))

	// Assert
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q", c.HTTPAddr)
	}
	if c.Session.MaxAge != 24*time.Hour || c.Session.Single || c.Session.SweepInterval != time.Hour {
		t.Errorf("Session = %+v", c.Session)
	}
	if c.Cache.Driver != CacheMemory || c.Cache.TTL != 5*time.Minute || c.Cache.MaxSize != 500 {
		t.Errorf("Cache = %+v", c.Cache)
	}
	if c.Client.TTL != 30*time.Minute || c.Client.MaxSize != 10000 {
		t.Errorf("Client = %+v", c.Client)
	}
	if c.Password.Algorithm != "argon2id" || !c.LogRequests {
		t.Errorf("Password = %+v, LogRequests = %v", c.Password, c.LogRequests)
	}
}

// Requirement: STUDYPLAN_ variables override defaults, nested keys joined by underscores.
func TestLoad_Environment(t *testing.T) {
	// Arrange
	t.Setenv("STUDYPLAN_HTTP_ADDR", ":9000")
	t.Setenv("STUDYPLAN_SESSION_MAXAGE", "2h")
	t.Setenv("STUDYPLAN_SESSION_SINGLE", "true")
	t.Setenv("STUDYPLAN_CACHE_DRIVER", "Redis")
	t.Setenv("STUDYPLAN_REDIS_ADDR", "localhost:6379")
	t.Setenv("STUDYPLAN_CLIENT_MAXSIZE", "25")
	t.Setenv("STUDYPLAN_PASSWORD_ALGORITHM", "bcrypt")

	// Act
	c, err := Load(missingEnvFile(t))

	// Assert
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.HTTPAddr != ":9000" {
		t.Errorf("HTTPAddr = %q", c.HTTPAddr)
	}
	if c.Session.MaxAge != 2*time.Hour || !c.Session.Single {
		t.Errorf("Session = %+v", c.Session)
	}
	if c.Cache.Driver != CacheRedis || c.Redis.Addr != "localhost:6379" {
		t.Errorf("Cache = %+v, Redis = %+v", c.Cache, c.Redis)
	}
	if c.Client.MaxSize != 25 {
		t.Errorf("Client.MaxSize = %d", c.Client.MaxSize)
	}
	if c.Password.Algorithm != "bcrypt" {
		t.Errorf("Password.Algorithm = %q", c.Password.Algorithm)
	}
}

// Requirement: a .env file supplies values the environment does not set.
func TestLoad_EnvFile(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), ".env")
	content := "STUDYPLAN_SECRET=from-file-secret-0123456789abcdef\nSTUDYPLAN_LOG_REQUESTS=false\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("STUDYPLAN_LOG_REQUESTS", "true")
	t.Cleanup(func() { os.Unsetenv("STUDYPLAN_SECRET") })

	// Act
	c, err := Load(path)

	// Assert
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Secret != "from-file-secret-0123456789abcdef" {
		t.Errorf("Secret = %q", c.Secret)
	}
	if !c.LogRequests {
		t.Error("environment should win over the .env file")
	}
}

func TestLoad_RejectsBadSettings(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr error
	}{
		{name: "unknown cache driver", env: map[string]string{"STUDYPLAN_CACHE_DRIVER": "memcached"}, wantErr: ErrUnknownCacheDriver},
		{name: "redis without address", env: map[string]string{"STUDYPLAN_CACHE_DRIVER": "redis"}, wantErr: ErrRedisAddrRequired},
		{name: "unknown password algorithm", env: map[string]string{"STUDYPLAN_PASSWORD_ALGORITHM": "md5"}, wantErr: ErrUnknownPasswordAlgorithm},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			for k, v := range test.env {
				t.Setenv(k, v)
			}
			if _, err := Load(missingEnvFile(t)); !errors.Is(err, test.wantErr) {
				t.Fatalf("Load() error = %v, want %v", err, test.wantErr)
			}
		})
	}
}
