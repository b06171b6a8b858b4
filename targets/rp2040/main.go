//go:build rp2040 || rp2350

package main

import (
	"machine"
	"time"

	"tinygo.org/x/drivers"

	"pentouch/bus"
	"pentouch/core"
	"pentouch/report"
	"pentouch/ts"
)

const batteryPeriodUS = 5000000

func main() {
	// Clear any watchdog state left from before the reset.
	if err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0}); err != nil {
		return
	}

	InitUSB()
	core.TimerInit()
	UpdateSystemTime()

	out := &usbWriter{}
	sink := report.NewSink(out)
	// Diagnostics travel as text reports so they never break framing.
	core.SetDebugWriter(sink.ReportText)

	cfg, err := ts.Preset(preset)
	if err != nil {
		halt("preset: " + err.Error())
	}

	gpio := NewRPGPIODriver()
	transport, hasAux, err := newTransport(gpio, cfg)
	if err != nil {
		halt("transport: " + err.Error())
	}

	sched := core.NewScheduler()
	arb := &bus.Arbiter{}

	dev, err := ts.NewDevice(cfg, transport, newPenLine(pinPen), sink, sched,
		ts.WithBusLock(arb), ts.WithClock(hardwareClock{}))
	if err != nil {
		halt("attach: " + err.Error())
	}

	var battery *bus.BatteryMonitor
	if hasAux {
		battery = bus.NewBatteryMonitor(transport, arb, batteryRefMV, batteryDivider)
	}
	nextBattery := core.GetTime()

	blank := pinBlank
	blank.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
	blanked := false

	for {
		func() {
			defer func() {
				if r := recover(); r != nil {
					core.DebugPrintln("main loop recovered from panic")
					core.DumpTrace()
				}
			}()

			UpdateSystemTime()
			now := core.GetTime()
			sched.Dispatch(now)

			if n := out.takeOutage(); n > 0 {
				core.DebugPrintln("usb: host resumed after " + core.Utoa(n) + " failed writes")
			}

			if b := blank.Get(); b != blanked {
				blanked = b
				setBlanked(dev, b)
			}

			if battery != nil && !blanked && core.TimeReached(now, nextBattery) {
				nextBattery = now + core.TimerFromUS(batteryPeriodUS)
				if err := battery.Update(drivers.Voltage); err != nil {
					core.DebugPrintln("battery: " + err.Error())
				} else {
					sink.ReportBattery(battery.Millivolts())
				}
			}
		}()

		time.Sleep(100 * time.Microsecond)
	}
}

func setBlanked(dev *ts.Device, blanked bool) {
	var err error
	if blanked {
		err = dev.Suspend()
	} else {
		err = dev.Resume()
	}
	if err != nil {
		core.DebugPrintln("power: " + err.Error())
	}
}

// halt reports a fatal setup error and parks the core.
func halt(msg string) {
	core.SetDebugEnabled(true)
	for {
		core.DebugPrintln(msg)
		time.Sleep(time.Second)
	}
}
