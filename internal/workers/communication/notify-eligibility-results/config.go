package notifyeligibilityresults

import "time"

type Config struct {
	EmailEnabled bool
	FromEmail    string
	Timeout      time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}
