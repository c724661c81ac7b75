package chat

import "time"

// Defaults applied by Config.withDefaults for unset fields.
const (
	DefaultTemperature = 0.7
	DefaultTimeout     = 45 * time.Second
	DefaultMaxRetries  = 2
)

// Config carries everything one completion call needs. The caller sources it
// once (flags, environment) and passes it by value; the client never reads
// ambient state.
type Config struct {
	Endpoint     string
	APIKey       string
	Model        string
	SystemPrompt string
	Temperature  float64
	Timeout      time.Duration
	// MaxRetries is the number of transport retries after the first attempt.
	// Zero means unset; pass a negative value to disable retries.
	MaxRetries int
}

func (c Config) withDefaults() Config {
	if c.Temperature == 0 {
		c.Temperature = DefaultTemperature
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	return c
}
