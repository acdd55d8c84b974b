package controller

import (
	"errors"
	"testing"

	"macropad/core"
	"macropad/protocol"
)

func dispatch(t *testing.T, r *rig, id uint16, args func(protocol.OutputBuffer)) error {
	t.Helper()
	reg := protocol.NewCommandRegistry()
	r.ctrl.RegisterCommands(reg)

	out := protocol.NewScratchOutput()
	if args != nil {
		args(out)
	}
	data := out.Result()
	return reg.Dispatch(id, &data)
}

func TestRegisterCommands(t *testing.T) {
	r := newRig(t)
	reg := protocol.NewCommandRegistry()
	r.ctrl.RegisterCommands(reg)

	if reg.Count() != 6 {
		t.Errorf("Expected 6 commands, got %d", reg.Count())
	}
}

func TestIdentifyCommand(t *testing.T) {
	r := newRig(t)
	if err := dispatch(t, r, protocol.CmdIdentify, nil); err != nil {
		t.Fatalf("identify: %v", err)
	}

	resp := r.link.named("identify_response")
	if len(resp) != 1 || resp[0].Text != protocol.Version {
		t.Errorf("Unexpected identify_response %+v", resp)
	}
}

func TestRumbleCommand(t *testing.T) {
	r := newRig(t)
	if err := dispatch(t, r, protocol.CmdRumble, protocol.RumbleArgs(2)); err != nil {
		t.Fatalf("rumble: %v", err)
	}
	if !r.motor.enabled {
		t.Fatal("rumble should start the motor")
	}

	r.poll(t)
	if !r.motor.enabled {
		t.Error("Motor stopped after one of two steps")
	}
	r.poll(t)
	if r.motor.enabled {
		t.Error("Motor should stop after two steps")
	}
}

func TestRumbleMissingArgument(t *testing.T) {
	r := newRig(t)
	err := dispatch(t, r, protocol.CmdRumble, nil)
	if !errors.Is(err, protocol.ErrBufferTooSmall) {
		t.Errorf("Expected ErrBufferTooSmall, got %v", err)
	}
	if r.motor.enabled {
		t.Error("Malformed rumble must not start the motor")
	}
}

func lastEvent(r *rig, kind uint8) (core.Event, bool) {
	events := r.ctrl.Events().Snapshot()
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Kind == kind {
			return events[i], true
		}
	}
	return core.Event{}, false
}

func TestRumbleZeroStopsPulse(t *testing.T) {
	r := newRig(t)
	if err := dispatch(t, r, protocol.CmdRumble, protocol.RumbleArgs(10)); err != nil {
		t.Fatalf("rumble: %v", err)
	}
	r.poll(t)

	if err := dispatch(t, r, protocol.CmdRumble, protocol.RumbleArgs(0)); err != nil {
		t.Fatalf("rumble 0: %v", err)
	}
	if r.motor.enabled {
		t.Fatal("rumble 0 should stop the motor")
	}

	stop, ok := lastEvent(r, core.EvtPulseStop)
	if !ok {
		t.Fatal("Expected a pulse_stop event")
	}
	if stop.A != 9 {
		t.Errorf("Expected 9 steps left, got %d", stop.A)
	}

	// Nothing running: no second stop event
	before := r.ctrl.Events().Len()
	if err := dispatch(t, r, protocol.CmdRumble, protocol.RumbleArgs(0)); err != nil {
		t.Fatalf("rumble 0: %v", err)
	}
	if r.ctrl.Events().Len() != before+1 {
		t.Errorf("Expected only the command event, got %d new events", r.ctrl.Events().Len()-before)
	}
}

func TestPulseCompletionRecordsNoStepsLeft(t *testing.T) {
	r := newRig(t)
	if err := dispatch(t, r, protocol.CmdRumble, protocol.RumbleArgs(1)); err != nil {
		t.Fatalf("rumble: %v", err)
	}
	r.poll(t)

	stop, ok := lastEvent(r, core.EvtPulseStop)
	if !ok || stop.A != 0 {
		t.Errorf("Expected pulse_stop with 0 steps left, got %+v (found=%t)", stop, ok)
	}
}

func TestClearDisplayCommand(t *testing.T) {
	r := newRig(t)
	if err := dispatch(t, r, protocol.CmdClearDisplay, nil); err != nil {
		t.Fatalf("clear_display: %v", err)
	}
	if r.display.clears != 1 {
		t.Errorf("Expected 1 clear, got %d", r.display.clears)
	}
}

func TestQueryEncodersCommand(t *testing.T) {
	r := newRig(t)
	r.counters[EncoderA].n = 7
	r.counters[EncoderB].n = 9

	if err := dispatch(t, r, protocol.CmdQueryEncoders, nil); err != nil {
		t.Fatalf("query_encoders: %v", err)
	}

	counts := r.link.named("encoder_count")
	if len(counts) != 2 || counts[0].Arg(1) != 7 || counts[1].Arg(1) != 9 {
		t.Errorf("Unexpected encoder counts %+v", counts)
	}
}

func TestSetDebugCommand(t *testing.T) {
	r := newRig(t)
	defer core.SetDebugEnabled(false)

	if err := dispatch(t, r, protocol.CmdSetDebug, protocol.SetDebugArgs(true)); err != nil {
		t.Fatalf("set_debug: %v", err)
	}
	if !core.IsDebugEnabled() {
		t.Error("set_debug 1 should enable debug output")
	}

	if err := dispatch(t, r, protocol.CmdSetDebug, protocol.SetDebugArgs(false)); err != nil {
		t.Fatalf("set_debug: %v", err)
	}
	if core.IsDebugEnabled() {
		t.Error("set_debug 0 should disable debug output")
	}
}

func TestDumpEventsCommand(t *testing.T) {
	r := newRig(t)
	r.kb.press(core.Coord{Col: 1, Row: 1})
	r.poll(t)

	recorded := r.ctrl.Events().Len()
	if recorded == 0 {
		t.Fatal("Expected events from the key press")
	}

	var lines []string
	core.SetDebugWriter(func(s string) { lines = append(lines, s) })
	defer core.SetDebugWriter(nil)

	if err := dispatch(t, r, protocol.CmdDumpEvents, nil); err != nil {
		t.Fatalf("dump_events: %v", err)
	}

	logs := r.link.named("event_log")
	if len(logs) != recorded {
		t.Errorf("Expected %d event_log reports, got %d", recorded, len(logs))
	}
	if logs[0].Arg(0) != core.EvtKeyEdge || logs[0].Arg(1) != 1 || logs[0].Arg(2) != 5 {
		t.Errorf("Expected key edge for cell 5 at clock 1, got %v", logs[0].Args)
	}
	if r.ctrl.Events().Len() != 0 {
		t.Error("Event ring should be empty after a dump")
	}
	if len(lines) != recorded+2 {
		t.Errorf("Expected %d dump lines, got %d", recorded+2, len(lines))
	}
}
