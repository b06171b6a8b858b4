// Package protocol frames the reports a touchscreen controller sends to its
// host: VLQ-encoded integers inside length-prefixed, CRC-checked blocks
// terminated by a sync byte.
package protocol

// Frame layout constants
const (
	MessageMax     = 64 // Largest frame, header and trailer included
	MessageHeader  = 2  // Length and sequence bytes
	MessageTrailer = 3  // CRC16 and sync byte
	MessageMin     = MessageHeader + MessageTrailer

	MessagePositionLen = 0
	MessagePositionSeq = 1

	MessageSync = 0x7E

	// The sequence byte carries a 4-bit counter under a fixed high nibble.
	MessageSeqMask = 0x0F
	MessageDest    = 0x10
)

// NextSeq returns the sequence number that follows seq.
func NextSeq(seq uint8) uint8 {
	return (seq + 1) & MessageSeqMask
}
