package core

// Vibrator drives a haptic motor through a finite, decaying pulse.
// Each Update is one decay step; the duty follows max - max/remaining.
type Vibrator struct {
	motor     PWMOutput
	maxDuty   uint32
	active    bool
	remaining uint16
}

// NewVibrator binds the motor channel and silences the ground channel
// of the same PWM peripheral when one is given.
func NewVibrator(motor PWMOutput, ground PWMOutput) (*Vibrator, error) {
	if motor == nil {
		return nil, ErrNilCapability
	}

	if ground != nil {
		ground.SetDuty(0)
	}

	v := &Vibrator{
		motor:   motor,
		maxDuty: motor.MaxDuty(), // cache
	}
	motor.SetDuty(v.maxDuty)

	return v, nil
}

// Enable arms a pulse of cycles decay steps.
// While a pulse is running, or when cycles is zero, Enable does nothing.
func (v *Vibrator) Enable(cycles uint16) {
	if v.active || cycles == 0 {
		return
	}

	v.remaining = cycles
	v.motor.SetDuty(v.maxDuty)
	v.motor.Enable()
	v.active = true
}

// Update advances the running pulse by one step
func (v *Vibrator) Update() {
	if !v.active {
		return
	}

	if v.remaining <= 1 {
		v.stop()
		return
	}

	v.remaining--
	v.motor.SetDuty(v.maxDuty - v.maxDuty/uint32(v.remaining))
}

// Disable stops a running pulse immediately
func (v *Vibrator) Disable() {
	if v.active {
		v.stop()
	}
}

func (v *Vibrator) stop() {
	v.motor.Disable()
	v.active = false
	v.remaining = 0
}

// Active reports whether a pulse is running
func (v *Vibrator) Active() bool {
	return v.active
}

// Remaining returns the number of Update calls left in the running pulse
func (v *Vibrator) Remaining() uint16 {
	return v.remaining
}

// MaxDuty returns the cached maximum duty of the motor channel
func (v *Vibrator) MaxDuty() uint32 {
	return v.maxDuty
}
