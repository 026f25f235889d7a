// Command pmpsweep exercises the motorized faders: each fader sweeps
// bottom to top and back, then everything resets.
package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pmpcontrol/platformmidi/midi/miditransport"
	"github.com/pmpcontrol/platformmidi/platform/mplus"
)

const sweepStep = 40 * time.Millisecond

func main() {
	portmidiBackend := flag.Bool("portmidi", false, "use the portmidi transport instead of rtmidi")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	opts := []mplus.Option{mplus.WithLogger(logger)}
	if *portmidiBackend {
		t, err := miditransport.NewPortmidiTransport()
		if err != nil {
			logger.Error("portmidi init failed", "err", err)
			os.Exit(1)
		}
		opts = append(opts, mplus.WithTransport(t))
	}

	c := mplus.New(opts...)
	if _, _, err := c.Connect(); err != nil {
		logger.Error("connect failed", "err", err)
		os.Exit(1)
	}
	defer c.Disconnect()

	for fader := 0; fader < mplus.NumFaders; fader++ {
		logger.Info("sweeping", "fader", fader)
		for _, pos := range []float64{0.25, 0.5, 0.75, 1, 0.75, 0.5, 0.25, 0} {
			if err := c.SetFader(fader, pos); err != nil {
				logger.Error("set fader failed", "fader", fader, "err", err)
				os.Exit(1)
			}
			time.Sleep(sweepStep)
		}
	}

	if err := c.Reset(); err != nil {
		logger.Error("reset failed", "err", err)
		os.Exit(1)
	}
}
