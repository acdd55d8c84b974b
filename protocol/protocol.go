// Package protocol implements the framed serial link between the macropad
// and a host.
//
// A frame is [len][seq][payload...][crc16 hi][crc16 lo][0x7E]. The payload
// holds one or more messages, each a VLQ message ID followed by VLQ
// arguments. The framing follows Klipper's serial protocol, so the same
// CRC and VLQ rules apply.
package protocol

// Version is the link protocol version reported by identify_response
const Version = "macropad-0.1.0"

// Frame layout constants
const (
	MessageHeaderSize  = 2
	MessageTrailerSize = 3
	MessageLengthMin   = MessageHeaderSize + MessageTrailerSize
	MessageLengthMax   = 64
	MessagePositionLen = 0
	MessagePositionSeq = 1
	MessageTrailerCRC  = 3
	MessageTrailerSync = 1
	MessageValueSync   = 0x7E

	// Sequence byte: high nibble is always MessageDest, low nibble counts
	MessageDest     = 0x10
	MessageSeqMask  = 0x0F
	MessageSeqShift = 4

	// MessageMax is the capacity of a ScratchOutput (several frames)
	MessageMax = 512
)

// nextSequence returns the sequence byte that follows seq
func nextSequence(seq uint8) uint8 {
	return ((seq + 1) & MessageSeqMask) | MessageDest
}
