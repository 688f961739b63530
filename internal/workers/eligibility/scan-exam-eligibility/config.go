package scanexameligibility

import "time"

type Config struct {
	Timeout        time.Duration
	DefaultSession string
	// ProgressEvery controls how often scan progress is logged at info
	// level; every exam is still logged at debug level.
	ProgressEvery int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       2 * time.Minute,
		ProgressEvery: 25,
	}
}
