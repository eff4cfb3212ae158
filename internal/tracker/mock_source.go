// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package tracker

import (
	"math"
	"time"
)

type mockSource struct {
	start   time.Time
	sensors []int
}

// NewMockSource creates a mock tracker source that generates smooth
// changing poses for the given sensor ids.
func NewMockSource(sensors []int) Source {
	return &mockSource{start: time.Now(), sensors: append([]int(nil), sensors...)}
}

func (m *mockSource) Next() (Frame, error) {
	elapsed := time.Since(m.start)
	sec := elapsed.Seconds()

	f := Frame{T: elapsed.Milliseconds()}
	for i, id := range m.sensors {
		phase := float64(i) * math.Pi / 4

		f.Samples = append(f.Samples, Sample{
			SensorID: id,
			Pos: [3]float64{
				120 * math.Sin(sec+phase),
				120 * math.Cos(sec*0.7+phase),
				240 + 40*math.Sin(sec*0.3+phase),
			},
			Ori: [3]float64{
				math.Mod(sec*30+phase*57.2958, 360) - 180,
				15 * math.Cos(sec*0.7+phase),
				20 * math.Sin(sec+phase),
			},
			Quality: 0,
		})
	}
	return f, nil
}

func (m *mockSource) Sensors() []int {
	return append([]int(nil), m.sensors...)
}

func (m *mockSource) Close() error { return nil }
