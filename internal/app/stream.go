// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/em_tracker/internal/config"
	"github.com/relabs-tech/em_tracker/internal/format"
	"github.com/relabs-tech/em_tracker/internal/sink"
	"github.com/relabs-tech/em_tracker/internal/tracker"
)

// progressEvery is how often the capture loop reports frame counts on
// stderr, matching the tracker's reference tooling.
const progressEvery = 100

// StreamOptions are the CLI-level knobs of the capture loop.
type StreamOptions struct {
	Format   string        // "csv" or "json"
	Output   string        // output file path, "" for stdout
	Mock     bool          // use the mock source instead of the device
	Interval time.Duration // poll cadence; 0 means use the configured one
}

// recordSink is the part of sink.Sink the capture loop needs; tests swap
// in a capturing fake.
type recordSink interface {
	Write(record string) error
	Close() error
}

// RunStream runs the capture loop: open device and sink, poll at a fixed
// cadence, format, write, until interrupted or the device fails.
func RunStream(opts StreamOptions) error {
	cfg := config.Get()

	fmtr, err := format.New(opts.Format)
	if err != nil {
		return err
	}

	src, err := openSource(opts.Mock, cfg)
	if err != nil {
		return err
	}

	snk, err := sink.New(opts.Output)
	if err != nil {
		src.Close()
		return err
	}
	log.Infof("stream: writing %s records to %s", opts.Format, snk.Name())

	interval := opts.Interval
	if interval <= 0 {
		interval = time.Duration(cfg.SampleInterval) * time.Millisecond
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	return streamLoop(src, fmtr, snk, interval, sigCh)
}

// streamLoop is the RUNNING state: {poll → format → write} every tick.
// It returns nil on interrupt; any device or sink error ends the session.
// The source is released before the sink on the way out.
func streamLoop(src tracker.Source, fmtr format.Formatter, snk recordSink, interval time.Duration, stop <-chan os.Signal) error {
	defer func() {
		if err := snk.Close(); err != nil {
			log.Errorf("stream: closing sink: %v", err)
		}
	}()
	defer func() {
		if err := src.Close(); err != nil {
			log.Errorf("stream: closing source: %v", err)
		}
	}()

	if h := fmtr.Header(); h != "" {
		if err := snk.Write(h); err != nil {
			return err
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	frames := 0
	for {
		select {
		case <-stop:
			log.Infof("stream: interrupted, stopping after %d frames", frames)
			return nil
		case <-ticker.C:
			frame, err := src.Next()
			if err != nil {
				return err
			}
			record, err := fmtr.Format(frame)
			if err != nil {
				return err
			}
			if err := snk.Write(record); err != nil {
				return err
			}
			frames++
			if frames%progressEvery == 0 {
				log.Infof("stream: %d frames captured", frames)
			}
		}
	}
}

// RunProbe opens the tracker, reads one frame to learn the attached
// sensors, reports them, and exits.
func RunProbe(mock bool) error {
	cfg := config.Get()

	src, err := openSource(mock, cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	frame, err := src.Next()
	if err != nil {
		return err
	}

	log.Infof("probe: attached sensors: %v (first frame at t=%dms)", src.Sensors(), frame.T)
	return nil
}

func openSource(mock bool, cfg *config.Config) (tracker.Source, error) {
	if mock {
		log.Infof("using mock tracker source")
		return tracker.NewMockSource([]int{1, 2, 3, 4}), nil
	}
	return tracker.NewSerialSource(cfg.TrackerSerialPort, uint(cfg.TrackerBaudRate))
}
