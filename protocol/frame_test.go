package protocol

import (
	"bytes"
	"errors"
	"testing"
)

// buildFrame encodes one frame holding a single message
func buildFrame(t *testing.T, seq uint8, id uint16, args func(OutputBuffer)) []byte {
	t.Helper()
	out := NewScratchOutput()
	err := EncodeFrame(out, seq, func(output OutputBuffer) {
		EncodeVLQUint(output, uint32(id))
		if args != nil {
			args(output)
		}
	})
	if err != nil {
		t.Fatalf("EncodeFrame failed: %v", err)
	}
	return append([]byte(nil), out.Result()...)
}

// collectFrames scans data and copies every frame found
func collectFrames(data []byte) []Frame {
	var s FrameScanner
	var frames []Frame
	s.Scan(data, func(f Frame) {
		frames = append(frames, Frame{
			Sequence: f.Sequence,
			Payload:  append([]byte(nil), f.Payload...),
		})
	})
	return frames
}

func TestEncodeAck(t *testing.T) {
	out := NewScratchOutput()
	EncodeAck(out, 0x11)

	crc := CRC16([]byte{5, 0x11})
	expected := []byte{5, 0x11, byte(crc >> 8), byte(crc), MessageValueSync}
	if !bytes.Equal(out.Result(), expected) {
		t.Errorf("ACK = % X, expected % X", out.Result(), expected)
	}
}

func TestFrameRoundTrip(t *testing.T) {
	data := buildFrame(t, 0x13, CmdRumble, RumbleArgs(4))

	if int(data[MessagePositionLen]) != len(data) {
		t.Errorf("Length byte %d does not match frame size %d", data[0], len(data))
	}

	frames := collectFrames(data)
	if len(frames) != 1 {
		t.Fatalf("Expected 1 frame, got %d", len(frames))
	}
	if frames[0].Sequence != 0x13 {
		t.Errorf("Expected sequence 0x13, got 0x%02X", frames[0].Sequence)
	}

	msgs, err := DecodeMessages(frames[0].Payload)
	if err != nil {
		t.Fatalf("DecodeMessages failed: %v", err)
	}
	if len(msgs) != 1 || msgs[0].ID != CmdRumble || msgs[0].Arg(0) != 4 {
		t.Errorf("Unexpected messages: %+v", msgs)
	}
}

func TestEncodeFrameTooLong(t *testing.T) {
	out := NewScratchOutput()
	err := EncodeFrame(out, MessageDest, func(output OutputBuffer) {
		output.Output(make([]byte, MessageLengthMax))
	})
	if !errors.Is(err, ErrFrameTooLong) {
		t.Errorf("Expected ErrFrameTooLong, got %v", err)
	}
	if out.CurPosition() != 0 {
		t.Errorf("Nothing should be written for an oversized frame, got %d bytes", out.CurPosition())
	}

	// Largest payload that still fits
	out.Reset()
	err = EncodeFrame(out, MessageDest, func(output OutputBuffer) {
		output.Output(make([]byte, MessageLengthMax-MessageLengthMin))
	})
	if err != nil {
		t.Errorf("Maximum frame rejected: %v", err)
	}
	if out.CurPosition() != MessageLengthMax {
		t.Errorf("Expected %d bytes, got %d", MessageLengthMax, out.CurPosition())
	}
}

func TestFrameScannerPartial(t *testing.T) {
	data := buildFrame(t, 0x10, CmdIdentify, nil)

	var s FrameScanner
	count := 0
	n := s.Scan(data[:3], func(Frame) { count++ })
	if n != 0 || count != 0 {
		t.Errorf("Partial frame: consumed %d, frames %d", n, count)
	}

	n = s.Scan(data, func(Frame) { count++ })
	if n != len(data) || count != 1 {
		t.Errorf("Complete frame: consumed %d of %d, frames %d", n, len(data), count)
	}
}

func TestFrameScannerResync(t *testing.T) {
	first := buildFrame(t, 0x10, CmdIdentify, nil)
	second := buildFrame(t, 0x11, CmdClearDisplay, nil)

	// Flip a payload bit so the CRC check fails
	bad := append([]byte(nil), first...)
	bad[MessageHeaderSize] ^= 0x01

	var stream []byte
	stream = append(stream, bad...)
	stream = append(stream, second...)

	var s FrameScanner
	var seqs []uint8
	n := s.Scan(stream, func(f Frame) { seqs = append(seqs, f.Sequence) })

	if n != len(stream) {
		t.Errorf("Expected all %d bytes consumed, got %d", len(stream), n)
	}
	if len(seqs) != 1 || seqs[0] != 0x11 {
		t.Errorf("Expected only the second frame, got %v", seqs)
	}
	if s.Resyncs() == 0 {
		t.Error("Expected the scanner to record a resync")
	}
	if !s.Synchronized() {
		t.Error("Scanner should be synchronized after the sync byte")
	}
}

func TestFrameScannerGarbage(t *testing.T) {
	var s FrameScanner
	n := s.Scan([]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}, func(Frame) {
		t.Error("No frame expected from garbage")
	})
	if n != 6 {
		t.Errorf("Garbage should be discarded, consumed %d", n)
	}
	if s.Synchronized() {
		t.Error("Scanner should still be hunting for a sync byte")
	}

	// The next sync byte realigns the stream
	frame := buildFrame(t, 0x10, CmdIdentify, nil)
	stream := append([]byte{0xAA, MessageValueSync}, frame...)
	count := 0
	s.Scan(stream, func(Frame) { count++ })
	if count != 1 {
		t.Errorf("Expected 1 frame after resync, got %d", count)
	}
}

func TestFrameScannerBadDestination(t *testing.T) {
	data := buildFrame(t, 0x10, CmdIdentify, nil)
	data[MessagePositionSeq] = 0x21

	frames := collectFrames(data)
	if len(frames) != 0 {
		t.Errorf("Frame with wrong destination nibble accepted: %+v", frames)
	}
}
