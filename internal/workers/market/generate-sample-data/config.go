// internal/workers/market/generate-sample-data/config.go
package generatesampledata

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 20 * time.Second,
	}
}
