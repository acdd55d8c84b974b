package protocol

// CommandHandler handles one decoded command. data points at the command's
// arguments and must be advanced past them.
type CommandHandler func(cmdID uint16, data *[]byte) error

// Transport is the device end of the link: it validates incoming frames,
// acknowledges them, dispatches their commands and frames outgoing reports.
// It is driven from the main loop only.
type Transport struct {
	scanner FrameScanner

	// nextSeq is the sequence expected from the host; ACKs and reports
	// carry it back
	nextSeq uint8

	output  OutputBuffer
	handler CommandHandler

	resetCallback func()
	flushCallback func()
	errorCallback func(cmdID uint16, err error)
}

// NewTransport creates a new Transport
func NewTransport(output OutputBuffer, handler CommandHandler) *Transport {
	return &Transport{
		nextSeq: MessageDest,
		output:  output,
		handler: handler,
	}
}

// Receive processes incoming data and pops whatever it consumed
func (t *Transport) Receive(input InputBuffer) {
	resyncs := t.scanner.Resyncs()
	consumed := t.scanner.Scan(input.Data(), t.handleFrame)
	if t.scanner.Resyncs() != resyncs {
		// Tell the host which sequence we still expect
		t.encodeAckNak()
	}
	if consumed > 0 {
		input.Pop(consumed)
	}
}

func (t *Transport) handleFrame(f Frame) {
	// Sequence back at the start means the host restarted
	if f.Sequence == MessageDest && t.nextSeq != MessageDest {
		t.nextSeq = MessageDest
		if t.resetCallback != nil {
			t.resetCallback()
		}
	}

	if f.Sequence == t.nextSeq {
		t.nextSeq = nextSequence(f.Sequence)
		// ACK goes out before any report the commands produce
		t.encodeAckNak()
		t.parseFrame(f.Payload)
		return
	}

	// Out of sequence: NAK with the sequence we expect
	t.encodeAckNak()
}

// parseFrame dispatches each command in the payload. A handler error stops
// processing of the remaining commands in the frame.
func (t *Transport) parseFrame(payload []byte) {
	for len(payload) > 0 {
		cmdID, err := DecodeVLQUint(&payload)
		if err != nil {
			t.reportError(0, err)
			return
		}
		if t.handler == nil {
			return
		}
		if err := t.handler(uint16(cmdID), &payload); err != nil {
			t.reportError(uint16(cmdID), err)
			return
		}
	}
}

func (t *Transport) reportError(cmdID uint16, err error) {
	if t.errorCallback != nil {
		t.errorCallback(cmdID, err)
	}
}

func (t *Transport) encodeAckNak() {
	EncodeAck(t.output, t.nextSeq)
	if t.flushCallback != nil {
		t.flushCallback()
	}
}

// Send frames a single message. Reports share the current sequence; the
// sequence only advances when a host frame is accepted.
func (t *Transport) Send(msgID uint16, args func(output OutputBuffer)) error {
	return EncodeFrame(t.output, t.nextSeq, func(output OutputBuffer) {
		EncodeVLQUint(output, uint32(msgID))
		if args != nil {
			args(output)
		}
	})
}

// Reset returns the transport to its power-on state (USB reconnect)
func (t *Transport) Reset() {
	t.scanner.Reset()
	t.nextSeq = MessageDest
	if t.resetCallback != nil {
		t.resetCallback()
	}
}

// NextSequence returns the sequence expected from the host
func (t *Transport) NextSequence() uint8 {
	return t.nextSeq
}

// Synchronized reports whether the receive side is aligned on frames
func (t *Transport) Synchronized() bool {
	return t.scanner.Synchronized()
}

// SetResetCallback sets a callback for host resets. It runs while Receive
// is still scanning the input, before the reset frame is acknowledged, so it
// may drop stale output but must leave the input buffer alone: bytes after
// the reset frame belong to the new session.
func (t *Transport) SetResetCallback(callback func()) {
	t.resetCallback = callback
}

// SetFlushCallback sets a callback that pushes ACKs out immediately
func (t *Transport) SetFlushCallback(callback func()) {
	t.flushCallback = callback
}

// SetErrorCallback sets a callback for malformed payloads and handler errors
func (t *Transport) SetErrorCallback(callback func(cmdID uint16, err error)) {
	t.errorCallback = callback
}
