// Package monitor reads report frames from a controller and tracks what
// the panel is doing.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"pentouch/report"
)

// Summary is the running state of a monitored panel.
type Summary struct {
	Strokes    uint32 // pen-down to pen-up sequences
	Touches    uint32 // pen-down reports
	Down       bool
	Last       report.Message // last touch report
	Millivolts uint32
	Decoder    report.Stats
}

// Monitor pulls bytes from a reader, decodes them and hands every message
// to a callback.
type Monitor struct {
	r      io.Reader
	dec    *report.Decoder
	onMsg  func(report.Message)
	follow bool
	buf    []byte

	mu      sync.Mutex
	summary Summary
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithHandler sets the function called for every decoded message.
func WithHandler(fn func(report.Message)) Option {
	return func(m *Monitor) {
		m.onMsg = fn
	}
}

// WithFollow treats io.EOF as a read timeout rather than the end of input,
// which is how a serial port with a read timeout reports silence.
func WithFollow() Option {
	return func(m *Monitor) {
		m.follow = true
	}
}

// New returns a Monitor reading from r.
func New(r io.Reader, opts ...Option) *Monitor {
	m := &Monitor{
		r:     r,
		dec:   report.NewDecoder(),
		onMsg: func(report.Message) {},
		buf:   make([]byte, 256),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run reads until ctx is cancelled, the input ends, or a read fails.
// Cancellation is noticed between reads, so a port with a read timeout
// bounds how long Run takes to return.
func (m *Monitor) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		n, err := m.r.Read(m.buf)
		if n > 0 {
			m.dec.Feed(m.buf[:n], m.handle)
			m.mu.Lock()
			m.summary.Decoder = m.dec.Stats()
			m.mu.Unlock()
		}
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			if !m.follow {
				return nil
			}
		default:
			return fmt.Errorf("monitor: read: %w", err)
		}
	}
}

func (m *Monitor) handle(msg report.Message) {
	m.mu.Lock()
	s := &m.summary
	switch msg.Kind {
	case report.KindTouch:
		if msg.Touch.Down {
			if !s.Down {
				s.Strokes++
			}
			s.Touches++
		}
		s.Down = msg.Touch.Down
		s.Last = msg
	case report.KindBattery:
		s.Millivolts = msg.Millivolts
	}
	m.mu.Unlock()

	m.onMsg(msg)
}

// Summary returns the state so far.
func (m *Monitor) Summary() Summary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.summary
}
