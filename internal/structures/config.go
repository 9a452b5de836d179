package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type Persistence struct {
	Dir                string        `yaml:"dir" validate:"required|unixPath"`
	SaveInterval       time.Duration `yaml:"saveInterval" validate:"required|min:1"`
	StalenessThreshold time.Duration `yaml:"stalenessThreshold"`
}

type SessionConfig struct {
	Secret         string        `yaml:"secret"`
	ValidityWindow time.Duration `yaml:"validityWindow" validate:"required|min:1"`
	BaseURL        string        `yaml:"baseUrl" validate:"required"`
}

type IdentityConfig struct {
	MaxPinAttempts int           `yaml:"maxPinAttempts" validate:"required|uint|min:1"`
	Cooldown       time.Duration `yaml:"cooldown"`
}

type PhotoConfig struct {
	Dir string `yaml:"dir" validate:"required|unixPath"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	WebServer   Server         `yaml:"webServer"`
	Persistence Persistence    `yaml:"persistence"`
	Session     SessionConfig  `yaml:"session"`
	Identity    IdentityConfig `yaml:"identity"`
	Photos      PhotoConfig    `yaml:"photos"`
	Logger      LoggerConfig   `yaml:"logger"`
	Cache       CacheConfig    `yaml:"cache"`
	Metrics     MetricsConfig  `yaml:"metrics"`
}
