package device

import (
	"time"

	"macropad/protocol"
)

// Identify asks for the firmware version
func (d *Device) Identify(timeout time.Duration) (string, error) {
	if err := d.Send(protocol.CmdIdentify, nil); err != nil {
		return "", err
	}
	r, err := d.await(protocol.MsgIdentifyResponse, timeout)
	if err != nil {
		return "", err
	}
	return r.Text, nil
}

// Rumble starts a vibration pulse of the given number of loop iterations.
// Zero cycles stops a running pulse.
func (d *Device) Rumble(cycles uint16) error {
	return d.Send(protocol.CmdRumble, protocol.RumbleArgs(cycles))
}

// ClearDisplay blanks the device's screen
func (d *Device) ClearDisplay() error {
	return d.Send(protocol.CmdClearDisplay, nil)
}

// SetDebug switches the firmware's debug output on or off
func (d *Device) SetDebug(enable bool) error {
	return d.Send(protocol.CmdSetDebug, protocol.SetDebugArgs(enable))
}

// QueryEncoders returns the raw counts of encoder A and B
func (d *Device) QueryEncoders(timeout time.Duration) ([2]uint32, error) {
	var counts [2]uint32
	if err := d.Send(protocol.CmdQueryEncoders, nil); err != nil {
		return counts, err
	}

	var seen [2]bool
	deadline := time.Now().Add(timeout)
	for !seen[0] || !seen[1] {
		r, err := d.await(protocol.MsgEncoderCount, time.Until(deadline))
		if err != nil {
			return counts, err
		}
		if i := r.Arg(0); i < 2 {
			counts[i] = r.Arg(1)
			seen[i] = true
		}
	}
	return counts, nil
}

// DumpEvents fetches and clears the device's event ring. The ring has no
// end marker, so events are collected until idle passes without one.
func (d *Device) DumpEvents(idle time.Duration) ([]Report, error) {
	if err := d.Send(protocol.CmdDumpEvents, nil); err != nil {
		return nil, err
	}

	var events []Report
	for {
		r, err := d.await(protocol.MsgEventLog, idle)
		if err == ErrReportTimeout {
			return events, nil
		}
		if err != nil {
			return events, err
		}
		events = append(events, r)
	}
}

// await returns the next report with the given ID, discarding others
func (d *Device) await(id uint16, timeout time.Duration) (Report, error) {
	deadline := time.After(timeout)
	for {
		select {
		case r := <-d.reports:
			if r.ID == id {
				return r, nil
			}
			d.log.Debugf("Skipped %v while waiting for %s", r, protocol.MessageName(id))
		case <-deadline:
			return Report{}, ErrReportTimeout
		case <-d.done:
			return Report{}, ErrClosed
		}
	}
}
