package catalog

import retry "github.com/avast/retry-go/v4"

// RetryConfig controls how transient catalog failures are retried.
// Delays are in milliseconds. Attempts counts the first request, so 1
// disables retries.
type RetryConfig struct {
	Attempts     int    `mapstructure:"attempts" json:"attempts" yaml:"attempts"`
	InitialDelay int    `mapstructure:"initial_delay" json:"initial_delay" yaml:"initial_delay"`
	MaxDelay     int    `mapstructure:"max_delay" json:"max_delay" yaml:"max_delay"`
	BackoffType  string `mapstructure:"backoff_type" json:"backoff_type" yaml:"backoff_type"`
}

// DefaultRetryConfig makes a single attempt; a failed search is terminal
// unless catalog.retry.attempts opts in to more
var DefaultRetryConfig = RetryConfig{
	Attempts:     1,
	InitialDelay: 500,
	MaxDelay:     5000,
	BackoffType:  "exponential",
}

func (r RetryConfig) withDefaults() RetryConfig {
	if r.Attempts <= 0 {
		r.Attempts = DefaultRetryConfig.Attempts
	}
	if r.InitialDelay < 0 {
		r.InitialDelay = 0
	}
	if r.MaxDelay <= 0 {
		r.MaxDelay = DefaultRetryConfig.MaxDelay
	}
	if r.BackoffType == "" {
		r.BackoffType = DefaultRetryConfig.BackoffType
	}
	return r
}

func (r RetryConfig) delayType() retry.DelayTypeFunc {
	switch r.BackoffType {
	case "fixed":
		return retry.FixedDelay
	default:
		return retry.BackOffDelay
	}
}
