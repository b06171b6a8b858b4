package protocol

import "errors"

var (
	// ErrIncomplete means more bytes are needed before a frame can be
	// judged.
	ErrIncomplete = errors.New("protocol: incomplete frame")

	// ErrBadFrame means the bytes at the front of the input are not a frame.
	ErrBadFrame = errors.New("protocol: malformed frame")
)

// Frame is one decoded block.
type Frame struct {
	Seq     uint8
	Payload []byte
}

// EncodeFrame appends a frame with sequence seq to output. payload writes
// the frame contents. It returns false when the contents do not fit in
// MessageMax, in which case the output is rolled back.
func EncodeFrame(output OutputBuffer, seq uint8, payload func(OutputBuffer)) bool {
	start := output.CurPosition()
	output.Output([]byte{0, MessageDest | seq&MessageSeqMask})
	payload(output)

	length := len(output.DataSince(start)) + MessageTrailer
	if length > MessageMax {
		if r, ok := output.(interface{ Rewind(pos int) }); ok {
			r.Rewind(start)
		}
		return false
	}
	output.Update(start+MessagePositionLen, uint8(length))

	crc := CRC16(output.DataSince(start))
	output.Output([]byte{uint8(crc >> 8), uint8(crc), MessageSync})
	return true
}

// ParseFrame decodes the frame at the front of data and returns it with the
// number of bytes it occupied. Payload aliases data.
func ParseFrame(data []byte) (Frame, int, error) {
	if len(data) < MessageMin {
		return Frame{}, 0, ErrIncomplete
	}
	n := int(data[MessagePositionLen])
	if n < MessageMin || n > MessageMax {
		return Frame{}, 0, ErrBadFrame
	}
	seq := data[MessagePositionSeq]
	if seq&^MessageSeqMask != MessageDest {
		return Frame{}, 0, ErrBadFrame
	}
	if len(data) < n {
		return Frame{}, 0, ErrIncomplete
	}
	if data[n-1] != MessageSync {
		return Frame{}, 0, ErrBadFrame
	}
	want := uint16(data[n-3])<<8 | uint16(data[n-2])
	if CRC16(data[:n-MessageTrailer]) != want {
		return Frame{}, 0, ErrBadFrame
	}
	return Frame{Seq: seq & MessageSeqMask, Payload: data[MessageHeader : n-MessageTrailer]}, n, nil
}

// Deframer pulls frames out of an InputBuffer. After a malformed frame it
// discards input up to the next sync byte and carries on.
type Deframer struct {
	synced  bool
	resyncs uint32
	skipped uint32
}

// NewDeframer returns a Deframer that expects the stream to start on a
// frame boundary.
func NewDeframer() *Deframer {
	return &Deframer{synced: true}
}

// Next returns the next complete frame, consuming it from input. The
// payload is only valid until input is next modified.
func (d *Deframer) Next(input InputBuffer) (Frame, bool) {
	for {
		data := input.Data()
		if len(data) == 0 {
			return Frame{}, false
		}

		if !d.synced {
			i := 0
			for i < len(data) && data[i] != MessageSync {
				i++
			}
			d.skipped += uint32(i)
			if i == len(data) {
				input.Pop(i)
				return Frame{}, false
			}
			input.Pop(i + 1)
			d.synced = true
			continue
		}

		if data[0] == MessageSync {
			input.Pop(1)
			continue
		}

		f, n, err := ParseFrame(data)
		switch err {
		case nil:
			input.Pop(n)
			return f, true
		case ErrIncomplete:
			return Frame{}, false
		default:
			d.synced = false
			d.resyncs++
		}
	}
}

// Resyncs returns how many times the stream lost framing.
func (d *Deframer) Resyncs() uint32 { return d.resyncs }

// Skipped returns how many bytes were discarded while resynchronizing.
func (d *Deframer) Skipped() uint32 { return d.skipped }
