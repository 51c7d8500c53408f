package paste

import "time"

// Config holds the runtime knobs for paste creation.
type Config struct {
	KeyLength      int
	MaxKeyAttempts int
	DefaultSyntax  string
	PublicBaseURL  string
}

// SweepConfig drives the background expiry sweep.
type SweepConfig struct {
	Interval     time.Duration
	InitialDelay time.Duration
	Timeout      time.Duration
}
