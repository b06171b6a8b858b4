// Package report carries touch and battery reports over a byte stream:
// Sink encodes them on the device, Decoder turns the stream back into
// messages on the host.
package report

import (
	"io"
	"sync"

	"pentouch/protocol"
	"pentouch/ts"
)

// Message ids. Arguments follow as VLQ integers.
const (
	MsgTouch   = 1 // x, y, pressure, down
	MsgBattery = 2 // millivolts
	MsgText    = 3 // length-prefixed diagnostic string
)

// Sink writes one frame per report to w. Write errors are counted and the
// report dropped; the acquisition side never sees them.
type Sink struct {
	mu  sync.Mutex
	w   io.Writer
	out protocol.ScratchOutput
	seq uint8

	frames      uint32
	writeErrors uint32
	dropped     uint32
}

// NewSink returns a Sink writing to w.
func NewSink(w io.Writer) *Sink {
	return &Sink{w: w}
}

// ReportTouch implements ts.EventSink.
func (s *Sink) ReportTouch(ev ts.TouchEvent) {
	var down uint32
	if ev.Down {
		down = 1
	}
	s.send(func(out protocol.OutputBuffer) {
		protocol.EncodeVLQUint(out, MsgTouch)
		protocol.EncodeVLQUint(out, uint32(ev.X))
		protocol.EncodeVLQUint(out, uint32(ev.Y))
		protocol.EncodeVLQUint(out, uint32(ev.Pressure))
		protocol.EncodeVLQUint(out, down)
	})
}

// ReportBattery sends a battery reading.
func (s *Sink) ReportBattery(millivolts uint32) {
	s.send(func(out protocol.OutputBuffer) {
		protocol.EncodeVLQUint(out, MsgBattery)
		protocol.EncodeVLQUint(out, millivolts)
	})
}

// ReportText sends a diagnostic line. Text that does not fit in one frame
// is dropped, not split.
func (s *Sink) ReportText(text string) {
	s.send(func(out protocol.OutputBuffer) {
		protocol.EncodeVLQUint(out, MsgText)
		protocol.EncodeVLQBytes(out, []byte(text))
	})
}

// send frames one message. A message too large for a frame is dropped
// without using up a sequence number.
func (s *Sink) send(payload func(protocol.OutputBuffer)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.out.Reset()
	if !protocol.EncodeFrame(&s.out, s.seq, payload) || s.out.Overflowed() {
		s.dropped++
		return
	}
	s.seq = protocol.NextSeq(s.seq)

	if _, err := s.w.Write(s.out.Result()); err != nil {
		s.writeErrors++
		return
	}
	s.frames++
}

// Frames returns how many frames were written.
func (s *Sink) Frames() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// WriteErrors returns how many frames the writer rejected.
func (s *Sink) WriteErrors() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeErrors
}

// Dropped returns how many messages did not fit in a frame.
func (s *Sink) Dropped() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

var _ ts.EventSink = (*Sink)(nil)
