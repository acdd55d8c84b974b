//go:build tinygo

package core

import "runtime/interrupt"

// Critical runs fn with interrupts disabled so the USB interrupt cannot
// preempt it, then restores the previous interrupt state
func Critical(fn func()) {
	state := interrupt.Disable()
	defer interrupt.Restore(state)
	fn()
}
