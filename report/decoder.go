package report

import (
	"errors"
	"fmt"

	"pentouch/protocol"
	"pentouch/ts"
)

// Kind tells which fields of a Message are set.
type Kind uint8

const (
	KindTouch Kind = iota + 1
	KindBattery
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindTouch:
		return "touch"
	case KindBattery:
		return "battery"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// Message is one decoded report.
type Message struct {
	Kind       Kind
	Seq        uint8
	Touch      ts.TouchEvent
	Millivolts uint32
	Text       string
}

func (m Message) String() string {
	switch m.Kind {
	case KindTouch:
		if !m.Touch.Down {
			return "touch up"
		}
		return fmt.Sprintf("touch down x=%d y=%d pressure=%d", m.Touch.X, m.Touch.Y, m.Touch.Pressure)
	case KindBattery:
		return fmt.Sprintf("battery %dmV", m.Millivolts)
	case KindText:
		return "text " + m.Text
	default:
		return "unknown"
	}
}

var errUnknownMessage = errors.New("report: unknown message id")

// Decoder reassembles reports from a byte stream that may start mid-frame,
// drop bytes or carry noise.
type Decoder struct {
	in       *protocol.FifoBuffer
	deframer *protocol.Deframer

	haveSeq  bool
	nextSeq  uint8
	lost     uint32
	messages uint32
	bad      uint32
	lastErr  error
}

// NewDecoder returns a Decoder.
func NewDecoder() *Decoder {
	return &Decoder{
		in:       protocol.NewFifoBuffer(4 * protocol.MessageMax),
		deframer: protocol.NewDeframer(),
	}
}

// Feed consumes p and calls fn for every complete message.
func (d *Decoder) Feed(p []byte, fn func(Message)) {
	for len(p) > 0 {
		n := d.in.Write(p)
		p = p[n:]
		d.drain(fn)
		if n == 0 {
			// Cannot happen while the buffer holds more than one frame;
			// recover rather than spin.
			d.in.Reset()
		}
	}
}

func (d *Decoder) drain(fn func(Message)) {
	for {
		f, ok := d.deframer.Next(d.in)
		if !ok {
			return
		}
		d.track(f.Seq)
		msg, err := decodeMessage(f)
		if err != nil {
			d.bad++
			d.lastErr = err
			continue
		}
		d.messages++
		fn(msg)
	}
}

// track counts frames missing from the sequence.
func (d *Decoder) track(seq uint8) {
	if d.haveSeq && seq != d.nextSeq {
		d.lost += uint32((seq - d.nextSeq) & protocol.MessageSeqMask)
	}
	d.haveSeq = true
	d.nextSeq = protocol.NextSeq(seq)
}

func decodeMessage(f protocol.Frame) (Message, error) {
	data := f.Payload
	id, err := protocol.DecodeVLQUint(&data)
	if err != nil {
		return Message{}, err
	}

	var args [4]uint32
	var n int
	var msg Message
	switch id {
	case MsgText:
		return decodeText(f.Seq, data)
	case MsgTouch:
		n, msg.Kind = 4, KindTouch
	case MsgBattery:
		n, msg.Kind = 1, KindBattery
	default:
		return Message{}, fmt.Errorf("%w %d", errUnknownMessage, id)
	}
	for i := 0; i < n; i++ {
		if args[i], err = protocol.DecodeVLQUint(&data); err != nil {
			return Message{}, fmt.Errorf("report: %v message: %w", msg.Kind, err)
		}
	}
	if len(data) != 0 {
		return Message{}, fmt.Errorf("report: %v message has %d trailing bytes", msg.Kind, len(data))
	}

	msg.Seq = f.Seq
	switch msg.Kind {
	case KindTouch:
		if args[3] != 0 {
			msg.Touch = ts.Press(uint16(args[0]), uint16(args[1]), uint16(args[2]))
		} else {
			msg.Touch = ts.Release()
		}
	case KindBattery:
		msg.Millivolts = args[0]
	}
	return msg, nil
}

func decodeText(seq uint8, data []byte) (Message, error) {
	text, err := protocol.DecodeVLQBytes(&data)
	if err != nil {
		return Message{}, fmt.Errorf("report: text message: %w", err)
	}
	if len(data) != 0 {
		return Message{}, fmt.Errorf("report: text message has %d trailing bytes", len(data))
	}
	return Message{Kind: KindText, Seq: seq, Text: string(text)}, nil
}

// Stats summarizes what the decoder has seen.
type Stats struct {
	Messages uint32 // decoded successfully
	Bad      uint32 // well framed but undecodable
	Lost     uint32 // frames missing from the sequence
	Resyncs  uint32 // framing errors
	Skipped  uint32 // bytes discarded while resynchronizing
}

// Stats returns the decoder counters.
func (d *Decoder) Stats() Stats {
	return Stats{
		Messages: d.messages,
		Bad:      d.bad,
		Lost:     d.lost,
		Resyncs:  d.deframer.Resyncs(),
		Skipped:  d.deframer.Skipped(),
	}
}

// Err returns the last payload decoding error.
func (d *Decoder) Err() error {
	return d.lastErr
}
