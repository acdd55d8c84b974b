package protocol

import "errors"

var (
	ErrFrameTooLong = errors.New("frame exceeds maximum length")
	ErrFrameCorrupt = errors.New("corrupt frame")
)

// Frame is a validated frame. Payload aliases the scanned input and is only
// valid for the duration of the callback that received it.
type Frame struct {
	Sequence uint8
	Payload  []byte
}

// IsAck reports whether the frame is an empty ACK/NAK frame
func (f Frame) IsAck() bool {
	return len(f.Payload) == 0
}

// EncodeFrame writes a complete frame with the given sequence byte to output.
// The frame is assembled in a fixed buffer first, so nothing is written when
// the body does not fit.
func EncodeFrame(output OutputBuffer, seq uint8, body func(output OutputBuffer)) error {
	var f frameBuffer
	f.Output([]byte{0, seq})
	if body != nil {
		body(&f)
	}
	if f.overflow || f.pos+MessageTrailerSize > MessageLengthMax {
		return ErrFrameTooLong
	}

	f.buf[MessagePositionLen] = uint8(f.pos + MessageTrailerSize)
	crc := CRC16(f.buf[:f.pos])
	f.Output([]byte{
		uint8((crc & 0xFF00) >> 8),
		uint8(crc & 0xFF),
		MessageValueSync,
	})

	output.Output(f.buf[:f.pos])
	return nil
}

// EncodeAck writes an empty frame carrying seq
func EncodeAck(output OutputBuffer, seq uint8) {
	_ = EncodeFrame(output, seq, nil)
}

// checkFrame validates the frame at the start of data.
// It returns the frame length, 0 if more data is needed, or ErrFrameCorrupt.
func checkFrame(data []byte) (int, error) {
	if len(data) < MessageLengthMin {
		return 0, nil
	}

	msgLen := int(data[MessagePositionLen])
	if msgLen < MessageLengthMin || msgLen > MessageLengthMax {
		return 0, ErrFrameCorrupt
	}
	if data[MessagePositionSeq]&^MessageSeqMask != MessageDest {
		return 0, ErrFrameCorrupt
	}
	if len(data) < msgLen {
		return 0, nil
	}
	if data[msgLen-MessageTrailerSync] != MessageValueSync {
		return 0, ErrFrameCorrupt
	}

	frameCRC := uint16(data[msgLen-MessageTrailerCRC])<<8 |
		uint16(data[msgLen-MessageTrailerCRC+1])
	if frameCRC != CRC16(data[:msgLen-MessageTrailerSize]) {
		return 0, ErrFrameCorrupt
	}
	return msgLen, nil
}

// FrameScanner splits a byte stream into frames. After a corrupt frame it
// discards input up to and including the next sync byte.
type FrameScanner struct {
	desynced bool
	resyncs  uint32
}

// Scan calls fn for every complete frame in data and returns the number of
// bytes consumed. Unconsumed bytes are a partial frame and must be passed
// again, followed by more input, on the next call.
func (s *FrameScanner) Scan(data []byte, fn func(Frame)) int {
	total := len(data)

	for len(data) > 0 {
		if s.desynced {
			syncPos := -1
			for i, b := range data {
				if b == MessageValueSync {
					syncPos = i
					break
				}
			}
			if syncPos < 0 {
				data = nil
				break
			}
			data = data[syncPos+1:]
			s.desynced = false
			s.resyncs++
			continue
		}

		// Leading sync bytes separate frames
		if data[0] == MessageValueSync {
			data = data[1:]
			continue
		}

		msgLen, err := checkFrame(data)
		if err != nil {
			s.desynced = true
			continue
		}
		if msgLen == 0 {
			break
		}

		fn(Frame{
			Sequence: data[MessagePositionSeq],
			Payload:  data[MessageHeaderSize : msgLen-MessageTrailerSize],
		})
		data = data[msgLen:]
	}

	return total - len(data)
}

// Synchronized reports whether the scanner is aligned on frame boundaries
func (s *FrameScanner) Synchronized() bool {
	return !s.desynced
}

// Resyncs returns how many times the scanner recovered from a corrupt frame
func (s *FrameScanner) Resyncs() uint32 {
	return s.resyncs
}

// Reset returns the scanner to the synchronized state
func (s *FrameScanner) Reset() {
	s.desynced = false
}
