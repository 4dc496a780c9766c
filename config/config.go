package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	Storage      StorageConfig      `yaml:"storage"`
	Voting       VotingConfig       `yaml:"voting"`
	Registration RegistrationConfig `yaml:"registration"`
	Admin        AdminConfig        `yaml:"admin"`
	Publication  PublicationConfig  `yaml:"publication"`
	Push         PushConfig         `yaml:"push"`
	WorkerPool   WorkerPoolConfig   `yaml:"worker_pool"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// StorageConfig points at the S3-compatible bucket holding vehicle photos.
type StorageConfig struct {
	Bucket        string `yaml:"bucket"`
	Region        string `yaml:"region"`
	Endpoint      string `yaml:"endpoint"`
	AccessKey     string `yaml:"access_key"`
	SecretKey     string `yaml:"secret_key"`
	PublicBaseURL string `yaml:"public_base_url"`
	Prefix        string `yaml:"prefix"`
	UsePathStyle  bool   `yaml:"use_path_style"`
	PublicACL     bool   `yaml:"public_acl"`
}

// VotingConfig controls the voter cookie.
type VotingConfig struct {
	CookieName       string `yaml:"cookie_name"`
	CookieSecret     string `yaml:"cookie_secret"`
	CookieMaxAgeDays int    `yaml:"cookie_max_age_days"`
	CookieSecure     bool   `yaml:"cookie_secure"`
}

// RegistrationConfig holds registration limits.
type RegistrationConfig struct {
	MaxEntries     int   `yaml:"max_entries"`
	MaxPhotos      int   `yaml:"max_photos"`
	MaxPhotoBytes  int64 `yaml:"max_photo_bytes"`
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
}

// AdminConfig holds the shared key for admin routes.
type AdminConfig struct {
	APIKey string `yaml:"api_key"`
}

// PublicationConfig controls the optional server-side publication sweeper.
type PublicationConfig struct {
	SweeperEnabled  bool          `yaml:"sweeper_enabled"`
	IntervalSeconds int           `yaml:"interval_seconds"`
	Interval        time.Duration `yaml:"-"` // Ignored by YAML parser
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills unset fields with their defaults.
func (cfg *Config) ApplyDefaults() {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 30
	}

	if cfg.Storage.Prefix == "" {
		cfg.Storage.Prefix = "vehicle-photos"
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}

	if cfg.Voting.CookieName == "" {
		cfg.Voting.CookieName = "voter_id"
	}
	if cfg.Voting.CookieMaxAgeDays <= 0 {
		cfg.Voting.CookieMaxAgeDays = 365
	}
	if cfg.Voting.CookieSecret == "" {
		log.Printf("voting.cookie_secret is not set; voter cookies will not survive a restart")
	}

	if cfg.Registration.MaxEntries <= 0 {
		cfg.Registration.MaxEntries = 50
	}
	if cfg.Registration.MaxPhotos <= 0 {
		cfg.Registration.MaxPhotos = 5
	}
	if cfg.Registration.MaxPhotoBytes <= 0 {
		cfg.Registration.MaxPhotoBytes = 5 << 20
	}
	if cfg.Registration.MaxUploadBytes <= 0 {
		cfg.Registration.MaxUploadBytes = 10 << 20
	}

	if cfg.Publication.IntervalSeconds <= 0 {
		cfg.Publication.IntervalSeconds = 30
	}
	cfg.Publication.Interval = time.Duration(cfg.Publication.IntervalSeconds) * time.Second

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}
}
