package core

// PWMOutput is a single PWM channel.
// Duty values range from 0 (fully off) to MaxDuty() (fully on).
type PWMOutput interface {
	// SetDuty sets the duty cycle of the channel
	SetDuty(value uint32)

	// MaxDuty returns the duty value that keeps the output permanently on
	MaxDuty() uint32

	// Enable starts driving the channel
	Enable()

	// Disable stops the channel and leaves the pin idle
	Disable()
}
