// tsmon prints the touch and battery reports a pentouch controller sends
// over its serial link. It can also replay a captured byte stream.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warthog618/config"
	"github.com/warthog618/config/blob"
	"github.com/warthog618/config/blob/decoder/json"
	"github.com/warthog618/config/dict"
	"github.com/warthog618/config/env"
	"github.com/warthog618/config/pflag"

	"pentouch/host/monitor"
	"pentouch/host/serial"
	"pentouch/report"
)

func main() {
	cfg := loadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	in, follow, err := openInput(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tsmon: %s\n", err)
		os.Exit(1)
	}
	defer in.Close()

	opts := []monitor.Option{
		monitor.WithHandler(func(msg report.Message) {
			fmt.Printf("%3d %s\n", msg.Seq, msg)
		}),
	}
	if follow {
		opts = append(opts, monitor.WithFollow())
	}
	m := monitor.New(in, opts...)

	if period := cfg.MustGet("stats").Duration(); period > 0 {
		go printStats(ctx, m, period)
	}

	err = m.Run(ctx)
	printSummary(m.Summary())
	if err != nil {
		fmt.Fprintf(os.Stderr, "tsmon: %s\n", err)
		os.Exit(1)
	}
}

func openInput(cfg *config.Config) (io.ReadCloser, bool, error) {
	if path := cfg.MustGet("replay").String(); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, false, err
		}
		return serial.Wrap(f), false, nil
	}
	sc := serial.DefaultConfig(cfg.MustGet("device").String())
	sc.Baud = cfg.MustGet("baud").Int()
	sc.ReadTimeout = cfg.MustGet("read.timeout").Duration()
	p, err := serial.Open(sc)
	if err != nil {
		return nil, false, err
	}
	// Drop whatever the controller sent before we attached.
	if err := p.Flush(); err != nil {
		p.Close()
		return nil, false, err
	}
	return p, true, nil
}

func printStats(ctx context.Context, m *monitor.Monitor, period time.Duration) {
	t := time.NewTicker(period)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			printSummary(m.Summary())
		}
	}
}

func printSummary(s monitor.Summary) {
	fmt.Printf("strokes=%d touches=%d battery=%dmV messages=%d bad=%d lost=%d resyncs=%d skipped=%d\n",
		s.Strokes, s.Touches, s.Millivolts,
		s.Decoder.Messages, s.Decoder.Bad, s.Decoder.Lost, s.Decoder.Resyncs, s.Decoder.Skipped)
}

func loadConfig() *config.Config {
	defaultConfig := map[string]interface{}{
		"device":       "/dev/ttyACM0",
		"baud":         115200,
		"read.timeout": "100ms",
		"replay":       "",
		"stats":        "0s",
	}
	def := dict.New(dict.WithMap(defaultConfig))
	flags := []pflag.Flag{
		{Short: 'c', Name: "config-file"},
		{Short: 'd', Name: "device"},
		{Short: 'r', Name: "replay"},
	}
	cfg := config.New(
		pflag.New(pflag.WithFlags(flags)),
		env.New(env.WithEnvPrefix("TSMON_")),
		config.WithDefault(def))
	cfg.Append(
		blob.NewConfigFile(cfg, "config.file", "tsmon.json", json.NewDecoder()))
	cfg = cfg.GetConfig("", config.WithMust)
	return cfg
}
