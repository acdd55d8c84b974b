package device

import (
	"fmt"
	"time"

	"macropad/protocol"
)

// key states as sent in key_state reports
var keyStates = []string{"released", "pressing", "pressed", "releasing"}

// pin operations as sent in scan_fault reports
var pinOps = []string{"", "read", "write", "configure"}

// event kinds as sent in event_log reports
var eventKinds = map[uint32]string{
	1: "key_edge",
	2: "pulse_start",
	3: "pulse_stop",
	4: "scan_fault",
	5: "command",
	6: "button",
}

// Report is one message received from the device
type Report struct {
	protocol.Message
	Received time.Time
}

func lookup(names []string, v uint32) string {
	if int(v) < len(names) {
		return names[v]
	}
	return fmt.Sprintf("%d", v)
}

// String formats the report for humans
func (r Report) String() string {
	switch r.ID {
	case protocol.MsgIdentifyResponse:
		return fmt.Sprintf("identify_response version=%s", r.Text)
	case protocol.MsgKeyState:
		return fmt.Sprintf("key_state col=%d row=%d state=%s",
			r.Arg(0), r.Arg(1), lookup(keyStates, r.Arg(2)))
	case protocol.MsgEncoderCount:
		return fmt.Sprintf("encoder_count encoder=%s count=%d",
			encoderName(r.Arg(0)), r.Arg(1))
	case protocol.MsgEncoderButton:
		return fmt.Sprintf("encoder_button encoder=%s pressed=%t",
			encoderName(r.Arg(0)), r.Arg(1) != 0)
	case protocol.MsgScanFault:
		return fmt.Sprintf("scan_fault col=%d row=%d op=%s",
			r.Arg(0), r.Arg(1), lookup(pinOps, r.Arg(2)))
	case protocol.MsgEventLog:
		kind, ok := eventKinds[r.Arg(0)]
		if !ok {
			kind = fmt.Sprintf("%d", r.Arg(0))
		}
		return fmt.Sprintf("event_log kind=%s clock=%d a=%d b=%d",
			kind, r.Arg(1), r.Arg(2), r.Arg(3))
	}
	return fmt.Sprintf("%s %v", r.Name(), r.Args)
}

func encoderName(i uint32) string {
	switch i {
	case 0:
		return "A"
	case 1:
		return "B"
	}
	return fmt.Sprintf("%d", i)
}
