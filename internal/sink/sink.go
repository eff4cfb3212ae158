// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sink

import (
	"bufio"
	"fmt"
	"os"
)

// A Sink owns one output stream for the life of a capture session. Every
// record is flushed as soon as it is written, so abrupt termination loses
// at most the record currently being formatted.
type Sink struct {
	f      *os.File
	w      *bufio.Writer
	isFile bool
}

// New opens the output stream: the named file when path is non-empty,
// stdout otherwise.
func New(path string) (*Sink, error) {
	if path == "" {
		return &Sink{f: os.Stdout, w: bufio.NewWriter(os.Stdout)}, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	return &Sink{f: f, w: bufio.NewWriter(f), isFile: true}, nil
}

// Write appends one fully formatted record and flushes it.
func (s *Sink) Write(record string) error {
	if _, err := s.w.WriteString(record); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

// Close flushes and releases the stream. Stdout is flushed but left open.
func (s *Sink) Close() error {
	if err := s.w.Flush(); err != nil {
		return err
	}
	if !s.isFile {
		return nil
	}
	return s.f.Close()
}

// Name reports where records are going, for log messages.
func (s *Sink) Name() string {
	if !s.isFile {
		return "stdout"
	}
	return s.f.Name()
}
