package domain

import "time"

// Config is the batch configuration loaded from a YAML file.
type Config struct {
	HTTP        HTTPConfig
	Concurrency int // 0 means unlimited
	Items       []Item
}

type HTTPConfig struct {
	Timeout      time.Duration
	MaxBodyBytes int64
	UserAgent    string

	// RequestsPerSecond caps outbound calls across all items; 0 means unlimited.
	RequestsPerSecond float64
}

// DefaultConfig provides sane defaults if the batch file is partially missing.
func DefaultConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			MaxBodyBytes: 4 << 20,
			UserAgent:    "docmapr",
		},
	}
}
