package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// Event kinds captured by an EventRing
const (
	EvtKeyEdge    = 1 // a: cell index (row*GridSize+col), b: new KeyState
	EvtPulseStart = 2 // a: cycles
	EvtPulseStop  = 3 // a: steps left when stopped (0 = ran to completion)
	EvtScanFault  = 4 // a: col<<8 | row, b: PinOp
	EvtCommand    = 5 // a: command ID
	EvtButton     = 6 // a: encoder index
)

// EventRingSize is the number of events kept for post-mortem dumps
const EventRingSize = 32

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether DebugPrintln output is active
	debugEnabled bool
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, USB, etc.
func SetDebugWriter(writer DebugWriter) {
	if writer == nil {
		writer = func(string) {}
	}
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled {
		debugPrintln(msg)
	}
}

// Event is one entry of an EventRing
type Event struct {
	Kind  uint8
	Clock uint32 // loop iteration the event happened in
	A     uint32
	B     uint32
}

// EventRing keeps the most recent events in a fixed buffer.
// Recording never allocates or blocks.
type EventRing struct {
	events [EventRingSize]Event
	head   uint8
	count  uint8
}

// Record appends an event, overwriting the oldest once full
func (r *EventRing) Record(kind uint8, clock, a, b uint32) {
	r.events[r.head] = Event{Kind: kind, Clock: clock, A: a, B: b}
	r.head = (r.head + 1) % EventRingSize
	if r.count < EventRingSize {
		r.count++
	}
}

// Len returns the number of recorded events
func (r *EventRing) Len() int {
	return int(r.count)
}

// Snapshot returns the recorded events from oldest to newest
func (r *EventRing) Snapshot() []Event {
	out := make([]Event, 0, r.count)
	start := (r.head + EventRingSize - r.count) % EventRingSize
	for i := uint8(0); i < r.count; i++ {
		out = append(out, r.events[(start+i)%EventRingSize])
	}
	return out
}

// Clear empties the ring
func (r *EventRing) Clear() {
	*r = EventRing{}
}

// Dump writes every recorded event to the debug writer regardless of
// whether debug output is enabled (call on shutdown/error)
func (r *EventRing) Dump() {
	debugPrintln("[EVENTS] === Event Ring Dump ===")
	for _, evt := range r.Snapshot() {
		debugPrintln("[EVENTS] " + EventName(evt.Kind) +
			" clock=" + utoa(evt.Clock) +
			" a=" + utoa(evt.A) +
			" b=" + utoa(evt.B))
	}
	debugPrintln("[EVENTS] === End Dump ===")
}

// EventName returns the log name of an event kind
func EventName(kind uint8) string {
	switch kind {
	case EvtKeyEdge:
		return "KEY_EDGE"
	case EvtPulseStart:
		return "PULSE_START"
	case EvtPulseStop:
		return "PULSE_STOP"
	case EvtScanFault:
		return "SCAN_FAULT!"
	case EvtCommand:
		return "COMMAND"
	case EvtButton:
		return "BUTTON"
	default:
		return "UNKNOWN"
	}
}
