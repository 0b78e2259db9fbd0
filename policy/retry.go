package policy

import (
	"math"
	"strings"
	"time"
)

// Retry strategy types
const (
	RetryFixed       = "fixed"
	RetryExponential = "exponential"
	RetryNone        = "none"
)

// Retry describes how many times and how often an action is re-attempted.
type Retry struct {
	Type        string        `json:"type,omitempty" yaml:"type,omitempty"`
	MaxAttempts int           `json:"maxAttempts,omitempty" yaml:"maxAttempts,omitempty"`
	Delay       time.Duration `json:"delay,omitempty" yaml:"delay,omitempty"`
	Multiplier  float64       `json:"multiplier,omitempty" yaml:"multiplier,omitempty"`
	MaxDelay    time.Duration `json:"maxDelay,omitempty" yaml:"maxDelay,omitempty"`
}

// DefaultRetry is three attempts with exponential backoff starting at one second.
func DefaultRetry() *Retry {
	return &Retry{Type: RetryExponential, MaxAttempts: 3, Delay: time.Second, Multiplier: 2, MaxDelay: 10 * time.Second}
}

// Next reports whether another attempt is allowed after attempts tries and the delay before it.
func (r *Retry) Next(attempts int) (bool, time.Duration) {
	if r == nil || strings.ToLower(r.Type) == RetryNone {
		return false, 0
	}
	max := r.MaxAttempts
	if max == 0 {
		max = 1
	}
	if attempts >= max {
		return false, 0
	}
	switch strings.ToLower(r.Type) {
	case RetryExponential:
		mult := r.Multiplier
		if mult <= 1 {
			mult = 2
		}
		delay := time.Duration(float64(r.Delay) * math.Pow(mult, float64(attempts-1)))
		if r.MaxDelay > 0 && delay > r.MaxDelay {
			delay = r.MaxDelay
		}
		return true, delay
	default:
		return true, r.Delay
	}
}
