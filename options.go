package frost

import (
	"time"

	"github.com/gogpu/frost/strength"
)

// Option configures an Effect during creation.
//
// Example:
//
//	effect, err := frost.New(host, device, cfg, frost.WithStrengthTable(table))
type Option func(*effectOptions)

// effectOptions holds optional configuration for Effect creation.
type effectOptions struct {
	table *strength.Table
	now   func() time.Time
}

// defaultOptions returns the default effect options.
func defaultOptions() effectOptions {
	return effectOptions{
		table: nil, // strength.Default() if nil
		now:   time.Now,
	}
}

// WithStrengthTable replaces the default strength ladder.
func WithStrengthTable(t *strength.Table) Option {
	return func(o *effectOptions) {
		o.table = t
	}
}

// WithClock sets the clock the noise generator is seeded from.
func WithClock(now func() time.Time) Option {
	return func(o *effectOptions) {
		if now != nil {
			o.now = now
		}
	}
}
