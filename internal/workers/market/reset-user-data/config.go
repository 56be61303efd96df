// internal/workers/market/reset-user-data/config.go
package resetuserdata

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 20 * time.Second,
	}
}
