// Command pmphello connects to a Platform M+ and prints every fader,
// button, and encoder event until interrupted. Pressing a button toggles
// its light.
package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/pmpcontrol/platformmidi/platform/mplus"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	faderSync := flag.Bool("sync", false, "enable fader drift correction")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	c := mplus.New(
		mplus.WithFaderSync(*faderSync),
		mplus.WithLogger(logger),
	)

	in, out, err := c.Connect()
	if err != nil {
		logger.Error("connect failed", "err", err)
		os.Exit(1)
	}
	logger.Info("connected", "in", in, "out", out)
	defer c.Disconnect()

	c.AddFaderListener(func(index int, position float64) {
		logger.Info("fader", "index", index, "position", position)
	})
	c.AddButtonListener(func(index int, pressed, light bool) {
		logger.Info("button", "index", index, "pressed", pressed, "light", light)
		if pressed {
			if err := c.SetButton(index, !light); err != nil {
				logger.Warn("set button failed", "index", index, "err", err)
			}
		}
	})
	c.AddEncoderListener(func(index int, value uint8) {
		e := mplus.EncoderTurned{Index: index, Value: value}
		logger.Info("encoder", "index", index, "direction", e.Direction(), "magnitude", e.Magnitude())
	})

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	if err := c.Reset(); err != nil {
		logger.Warn("reset failed", "err", err)
	}
}
