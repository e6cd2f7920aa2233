// Package config loads runtime settings from defaults, an optional .env
// file and STUDYPLAN_ prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/lborres/studyplan/pkg/crypto"
)

const EnvPrefix = "STUDYPLAN"

const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

var (
	ErrUnknownCacheDriver       = errors.New("unknown cache driver")
	ErrUnknownPasswordAlgorithm = errors.New("unknown password algorithm")
	ErrRedisAddrRequired        = errors.New("redis.addr is required for the redis cache driver")
)

type Config struct {
	HTTPAddr    string
	DatabaseURL string
	Secret      string

	Session  Session
	Cache    Cache
	Redis    Redis
	Client   Client
	Password Password

	LogRequests bool
}

type Session struct {
	MaxAge        time.Duration
	Single        bool
	CookieSecure  bool
	SweepInterval time.Duration
}

type Cache struct {
	Driver  string
	TTL     time.Duration
	MaxSize int
}

type Redis struct {
	Addr     string
	Password string
	DB       int
}

type Client struct {
	TTL     time.Duration
	MaxSize int
}

type Password struct {
	Algorithm string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("database.url", "")
	v.SetDefault("secret", "")

	v.SetDefault("session.maxAge", 24*time.Hour)
	v.SetDefault("session.single", false)
	v.SetDefault("session.cookieSecure", false)
	v.SetDefault("session.sweepInterval", time.Hour)

	v.SetDefault("cache.driver", CacheMemory)
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("cache.maxSize", 500)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("client.ttl", 30*time.Minute)
	v.SetDefault("client.maxSize", 10000)

	v.SetDefault("password.algorithm", crypto.AlgorithmArgon2)

	v.SetDefault("log.requests", true)
}

// Load reads envFile (".env" when empty) if it exists, then the environment.
// Variables already set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat %s: %w", envFile, err)
	}

	v := viper.New()
	v.SetTypeByDefaultValue(true)
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	c := &Config{
		HTTPAddr:    v.GetString("http.addr"),
		DatabaseURL: v.GetString("database.url"),
		Secret:      v.GetString("secret"),
		Session: Session{
			MaxAge:        v.GetDuration("session.maxAge"),
			Single:        v.GetBool("session.single"),
			CookieSecure:  v.GetBool("session.cookieSecure"),
			SweepInterval: v.GetDuration("session.sweepInterval"),
		},
		Cache: Cache{
			Driver:  strings.ToLower(v.GetString("cache.driver")),
			TTL:     v.GetDuration("cache.ttl"),
			MaxSize: v.GetInt("cache.maxSize"),
		},
		Redis: Redis{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Client: Client{
			TTL:     v.GetDuration("client.ttl"),
			MaxSize: v.GetInt("client.maxSize"),
		},
		Password: Password{
			Algorithm: strings.ToLower(v.GetString("password.algorithm")),
		},
		LogRequests: v.GetBool("log.requests"),
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks enumerated settings. Secret and database URL are checked
// by the commands that need them.
func (c *Config) Validate() error {
	if !slices.Contains([]string{CacheMemory, CacheRedis, CacheNone}, c.Cache.Driver) {
		return fmt.Errorf("%w: %q", ErrUnknownCacheDriver, c.Cache.Driver)
	}
	if c.Cache.Driver == CacheRedis && c.Redis.Addr == "" {
		return ErrRedisAddrRequired
	}
	if !slices.Contains([]string{crypto.AlgorithmArgon2, crypto.AlgorithmBcrypt}, c.Password.Algorithm) {
		return fmt.Errorf("%w: %q", ErrUnknownPasswordAlgorithm, c.Password.Algorithm)
	}
	return nil
}
