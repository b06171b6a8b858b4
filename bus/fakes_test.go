package bus

import (
	"errors"

	"pentouch/core"
	"pentouch/ts"
)

// tickClock advances by step on every read, so busy-waits make progress.
type tickClock struct {
	now  uint32
	step uint32
}

func (c *tickClock) Now() uint32 {
	c.now += c.step
	return c.now
}

type pinState struct {
	output bool
	level  bool
	pull   bool
}

type fakeGPIO struct {
	pins    map[core.GPIOPin]*pinState
	failPin core.GPIOPin
	fail    bool
}

func newFakeGPIO() *fakeGPIO {
	return &fakeGPIO{pins: map[core.GPIOPin]*pinState{}}
}

func (g *fakeGPIO) pin(p core.GPIOPin) *pinState {
	st, ok := g.pins[p]
	if !ok {
		st = &pinState{}
		g.pins[p] = st
	}
	return st
}

func (g *fakeGPIO) check(p core.GPIOPin) error {
	if g.fail && p == g.failPin {
		return errors.New("gpio: pin fault")
	}
	return nil
}

func (g *fakeGPIO) ConfigureOutput(p core.GPIOPin) error {
	g.pin(p).output = true
	return g.check(p)
}

func (g *fakeGPIO) ConfigureInputPullUp(p core.GPIOPin) error {
	st := g.pin(p)
	st.output, st.pull, st.level = false, true, true
	return g.check(p)
}

func (g *fakeGPIO) ConfigureInputPullDown(p core.GPIOPin) error {
	st := g.pin(p)
	st.output, st.pull, st.level = false, true, false
	return g.check(p)
}

func (g *fakeGPIO) SetPin(p core.GPIOPin, v bool) error {
	g.pin(p).level = v
	return g.check(p)
}

func (g *fakeGPIO) GetPin(p core.GPIOPin) (bool, error) {
	return g.pin(p).level, g.check(p)
}

// converter answers ADS7846 control bytes with fixed per-command values.
type converter map[byte]uint16

// frames returns the three frames clocked back for cmd.
func (c converter) frames(cmd byte) [3]byte {
	v := c[cmd]
	return [3]byte{0, byte(v >> 5), byte(v << 3)}
}

// fakeFIFO is a FIFO port in front of a converter.
type fakeFIFO struct {
	conv    converter
	rx      []uint32
	sent    []byte
	cmd     byte
	stuckTx bool
	stuckRx bool
}

func (f *fakeFIFO) TxFull() bool  { return f.stuckTx }
func (f *fakeFIFO) RxEmpty() bool { return f.stuckRx || len(f.rx) == 0 }

func (f *fakeFIFO) Put(v uint32) {
	pos := len(f.sent) % 3
	f.sent = append(f.sent, byte(v))
	if pos == 0 {
		f.cmd = byte(v)
	}
	if !f.stuckRx {
		f.rx = append(f.rx, uint32(f.conv.frames(f.cmd)[pos]))
	}
}

func (f *fakeFIFO) Get() uint32 {
	v := f.rx[0]
	f.rx = f.rx[1:]
	return v
}

type fakeSPI struct {
	conv converter
	err  error
	txs  [][]byte
}

func (s *fakeSPI) Tx(w, r []byte) error {
	s.txs = append(s.txs, append([]byte(nil), w...))
	if s.err != nil {
		return s.err
	}
	fr := s.conv.frames(w[0])
	copy(r, fr[:])
	return nil
}

func (s *fakeSPI) Transfer(b byte) (byte, error) {
	return 0, s.err
}

type fakeADC struct {
	values     map[core.ADCChannelID]core.ADCValue
	configured []core.ADCChannelID
	inits      int
	err        error
	reads      []core.ADCChannelID
}

func (a *fakeADC) Init(cfg core.ADCConfig) error {
	a.inits++
	return nil
}

func (a *fakeADC) ConfigureChannel(ch core.ADCChannelID) error {
	a.configured = append(a.configured, ch)
	return nil
}

func (a *fakeADC) ReadRaw(ch core.ADCChannelID) (core.ADCValue, error) {
	a.reads = append(a.reads, ch)
	if a.err != nil {
		return 0, a.err
	}
	return a.values[ch], nil
}

type scriptTransport struct {
	values map[ts.Channel]uint16
	err    error
}

func (s *scriptTransport) Configure(ts.BusConfig) error { return nil }
func (s *scriptTransport) Power(bool) error             { return nil }

func (s *scriptTransport) Sample(ch ts.Channel) (ts.RawSample, error) {
	if s.err != nil {
		return ts.RawSample{}, s.err
	}
	return ts.RawSample{Channel: ch, Value: s.values[ch]}, nil
}

type fakeLine struct {
	handler func()
	enabled bool
}

func (l *fakeLine) SetHandler(h func()) { l.handler = h }
func (l *fakeLine) Enable() error       { l.enabled = true; return nil }
func (l *fakeLine) Disable() error      { l.enabled = false; return nil }
func (l *fakeLine) SetWake(bool) error  { return nil }
func (l *fakeLine) Asserted() bool      { return true }
func (l *fakeLine) fire() {
	if l.enabled {
		l.handler()
	}
}
