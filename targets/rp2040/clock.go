//go:build rp2040 || rp2350

package main

import (
	"runtime/volatile"
	"unsafe"
)

// Raw (unlatched) low word of the 1 MHz timer; timerBase is per chip
var timerRawL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerBase + 0x28)))

// GetHardwareTime reads the low 32 bits of the microsecond counter
func GetHardwareTime() uint32 {
	return timerRawL.Get()
}

// busyDelay implements core.Delayer by spinning on the hardware timer.
// The matrix settle time is a few microseconds, below what the scheduler
// can sleep for.
type busyDelay struct{}

func (busyDelay) DelayMicroseconds(us uint32) {
	start := GetHardwareTime()
	for GetHardwareTime()-start < us {
	}
}
