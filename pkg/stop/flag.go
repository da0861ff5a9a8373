// Package stop provides the cancellation flag shared between a running job and its controller.
package stop

import "sync/atomic"

// Flag is a one-bit cancellation signal. Each run owns a fresh Flag.
type Flag struct {
	set atomic.Bool
}

// NewFlag returns a cleared flag
func NewFlag() *Flag {
	return &Flag{}
}

// Set requests cancellation. Calling it more than once has no further effect.
func (f *Flag) Set() {
	f.set.Store(true)
}

// IsSet reports whether cancellation was requested. A nil flag is never set.
func (f *Flag) IsSet() bool {
	if f == nil {
		return false
	}
	return f.set.Load()
}
