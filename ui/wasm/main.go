//go:build js && wasm

// Command wasm exposes the report decoder to a browser page that reads the
// controller through Web Serial and draws the strokes.
package main

import (
	"bytes"
	"encoding/hex"
	"syscall/js"

	"pentouch/protocol"
	"pentouch/report"
	"pentouch/ts"
)

var decoder = report.NewDecoder()

func main() {
	js.Global().Set("pentouchWasm", js.ValueOf(map[string]interface{}{
		"feed":        js.FuncOf(feedWrapper),
		"stats":       js.FuncOf(statsWrapper),
		"reset":       js.FuncOf(resetWrapper),
		"encodeTouch": js.FuncOf(encodeTouchWrapper),
		"encodeVLQ":   js.FuncOf(encodeVLQWrapper),
		"decodeVLQ":   js.FuncOf(decodeVLQWrapper),
		"crc16":       js.FuncOf(crc16Wrapper),
	}))

	select {}
}

// feedWrapper pushes received bytes into the decoder.
// Args: hexString (string)
// Returns: array of {kind, seq, x, y, pressure, down, millivolts, text} or {error}
func feedWrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("missing hex string argument")
	}
	data, err := hex.DecodeString(args[0].String())
	if err != nil {
		return errorResult("invalid hex string: " + err.Error())
	}

	var out []interface{}
	decoder.Feed(data, func(msg report.Message) {
		out = append(out, map[string]interface{}{
			"kind":       msg.Kind.String(),
			"seq":        int(msg.Seq),
			"x":          int(msg.Touch.X),
			"y":          int(msg.Touch.Y),
			"pressure":   int(msg.Touch.Pressure),
			"down":       msg.Touch.Down,
			"millivolts": int(msg.Millivolts),
			"text":       msg.Text,
		})
	})
	return js.ValueOf(out)
}

func statsWrapper(this js.Value, args []js.Value) interface{} {
	s := decoder.Stats()
	return js.ValueOf(map[string]interface{}{
		"messages": int(s.Messages),
		"bad":      int(s.Bad),
		"lost":     int(s.Lost),
		"resyncs":  int(s.Resyncs),
		"skipped":  int(s.Skipped),
	})
}

func resetWrapper(this js.Value, args []js.Value) interface{} {
	decoder = report.NewDecoder()
	return js.Undefined()
}

// encodeTouchWrapper builds the frame a controller would send, for the
// page's offline demo.
// Args: x, y, pressure (number), down (bool)
// Returns: hex string
func encodeTouchWrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 {
		return errorResult("want x, y, pressure, down")
	}
	ev := ts.Release()
	if args[3].Bool() {
		ev = ts.Press(uint16(args[0].Int()), uint16(args[1].Int()), uint16(args[2].Int()))
	}
	var buf bytes.Buffer
	report.NewSink(&buf).ReportTouch(ev)
	return js.ValueOf(hex.EncodeToString(buf.Bytes()))
}

// encodeVLQWrapper encodes a signed integer to VLQ format
// Args: value (int32)
// Returns: hex string
func encodeVLQWrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("missing value argument")
	}
	output := protocol.NewScratchOutput()
	protocol.EncodeVLQInt(output, int32(args[0].Int()))
	return js.ValueOf(hex.EncodeToString(output.Result()))
}

// decodeVLQWrapper decodes a VLQ from hex string
// Args: hexString (string)
// Returns: {value: number, consumed: number} or {error}
func decodeVLQWrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("missing hex string argument")
	}
	data, err := hex.DecodeString(args[0].String())
	if err != nil {
		return errorResult("invalid hex string: " + err.Error())
	}
	rest := data
	value, err := protocol.DecodeVLQInt(&rest)
	if err != nil {
		return errorResult(err.Error())
	}
	return js.ValueOf(map[string]interface{}{
		"value":    int(value),
		"consumed": len(data) - len(rest),
	})
}

// crc16Wrapper calculates the frame checksum
// Args: hexString (string)
// Returns: number (uint16)
func crc16Wrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(0)
	}
	data, err := hex.DecodeString(args[0].String())
	if err != nil {
		return js.ValueOf(0)
	}
	return js.ValueOf(int(protocol.CRC16(data)))
}

func errorResult(msg string) interface{} {
	return js.ValueOf(map[string]interface{}{"error": msg})
}
