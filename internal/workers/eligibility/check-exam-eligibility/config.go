package checkexameligibility

import "time"

type Config struct {
	Timeout time.Duration
	// DefaultSession fills DivisionVerdict.Session when the exam has none.
	DefaultSession string
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}
