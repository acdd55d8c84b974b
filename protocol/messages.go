package protocol

// Reports sent by the device
const (
	MsgIdentifyResponse uint16 = 0
	MsgKeyState         uint16 = 1
	MsgEncoderCount     uint16 = 2
	MsgEncoderButton    uint16 = 3
	MsgScanFault        uint16 = 4
	MsgEventLog         uint16 = 5
)

// Commands sent by the host
const (
	CmdIdentify      uint16 = 16
	CmdRumble        uint16 = 17
	CmdClearDisplay  uint16 = 18
	CmdQueryEncoders uint16 = 19
	CmdSetDebug      uint16 = 20
	CmdDumpEvents    uint16 = 21
)

// messageFormat describes the arguments following a message ID
type messageFormat struct {
	name string
	args int  // number of VLQ integer arguments
	text bool // a single string argument instead of integers
}

func lookupFormat(id uint16) (messageFormat, bool) {
	switch id {
	case MsgIdentifyResponse:
		return messageFormat{name: "identify_response", text: true}, true
	case MsgKeyState:
		return messageFormat{name: "key_state", args: 3}, true
	case MsgEncoderCount:
		return messageFormat{name: "encoder_count", args: 2}, true
	case MsgEncoderButton:
		return messageFormat{name: "encoder_button", args: 2}, true
	case MsgScanFault:
		return messageFormat{name: "scan_fault", args: 3}, true
	case MsgEventLog:
		return messageFormat{name: "event_log", args: 4}, true
	case CmdIdentify:
		return messageFormat{name: "identify"}, true
	case CmdRumble:
		return messageFormat{name: "rumble", args: 1}, true
	case CmdClearDisplay:
		return messageFormat{name: "clear_display"}, true
	case CmdQueryEncoders:
		return messageFormat{name: "query_encoders"}, true
	case CmdSetDebug:
		return messageFormat{name: "set_debug", args: 1}, true
	case CmdDumpEvents:
		return messageFormat{name: "dump_events"}, true
	}
	return messageFormat{}, false
}

// MessageName returns the wire name of a message ID, or "" if unknown
func MessageName(id uint16) string {
	f, _ := lookupFormat(id)
	return f.name
}

// Message is one decoded message of a frame payload
type Message struct {
	ID   uint16
	Args []uint32
	Text string
}

// Name returns the wire name of the message
func (m Message) Name() string {
	return MessageName(m.ID)
}

// Arg returns argument i, or 0 when absent
func (m Message) Arg(i int) uint32 {
	if i < 0 || i >= len(m.Args) {
		return 0
	}
	return m.Args[i]
}

// DecodeMessages decodes every message in a frame payload. Decoding stops
// at the first unknown ID since its argument layout is not known.
func DecodeMessages(payload []byte) ([]Message, error) {
	var msgs []Message
	for len(payload) > 0 {
		id, err := DecodeVLQUint(&payload)
		if err != nil {
			return msgs, err
		}
		format, ok := lookupFormat(uint16(id))
		if !ok {
			return msgs, &UnknownCommandError{ID: uint16(id)}
		}

		msg := Message{ID: uint16(id)}
		if format.text {
			if msg.Text, err = DecodeVLQString(&payload); err != nil {
				return msgs, err
			}
		}
		for i := 0; i < format.args; i++ {
			v, err := DecodeVLQUint(&payload)
			if err != nil {
				return msgs, err
			}
			msg.Args = append(msg.Args, v)
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// Argument encoders for the device reports

// IdentifyResponseArgs encodes the firmware version string
func IdentifyResponseArgs(version string) func(OutputBuffer) {
	return func(output OutputBuffer) {
		EncodeVLQString(output, version)
	}
}

// KeyStateArgs encodes a key_state report
func KeyStateArgs(col, row, state uint8) func(OutputBuffer) {
	return func(output OutputBuffer) {
		EncodeVLQUint(output, uint32(col))
		EncodeVLQUint(output, uint32(row))
		EncodeVLQUint(output, uint32(state))
	}
}

// EncoderCountArgs encodes an encoder_count report
func EncoderCountArgs(encoder uint8, count uint32) func(OutputBuffer) {
	return func(output OutputBuffer) {
		EncodeVLQUint(output, uint32(encoder))
		EncodeVLQUint(output, count)
	}
}

// EncoderButtonArgs encodes an encoder_button report
func EncoderButtonArgs(encoder uint8, pressed bool) func(OutputBuffer) {
	return func(output OutputBuffer) {
		EncodeVLQUint(output, uint32(encoder))
		EncodeVLQUint(output, boolArg(pressed))
	}
}

// ScanFaultArgs encodes a scan_fault report
func ScanFaultArgs(col, row, op uint8) func(OutputBuffer) {
	return func(output OutputBuffer) {
		EncodeVLQUint(output, uint32(col))
		EncodeVLQUint(output, uint32(row))
		EncodeVLQUint(output, uint32(op))
	}
}

// EventLogArgs encodes one event_log entry
func EventLogArgs(kind uint8, clock, a, b uint32) func(OutputBuffer) {
	return func(output OutputBuffer) {
		EncodeVLQUint(output, uint32(kind))
		EncodeVLQUint(output, clock)
		EncodeVLQUint(output, a)
		EncodeVLQUint(output, b)
	}
}

// Argument encoders for the host commands

// RumbleArgs encodes a rumble command
func RumbleArgs(cycles uint16) func(OutputBuffer) {
	return func(output OutputBuffer) {
		EncodeVLQUint(output, uint32(cycles))
	}
}

// SetDebugArgs encodes a set_debug command
func SetDebugArgs(enable bool) func(OutputBuffer) {
	return func(output OutputBuffer) {
		EncodeVLQUint(output, boolArg(enable))
	}
}

func boolArg(v bool) uint32 {
	if v {
		return 1
	}
	return 0
}
