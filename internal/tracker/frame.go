package tracker

import "fmt"

// Sample is one sensor's pose at a single polling instant. Position is in
// millimeters, orientation is azimuth/elevation/roll in degrees. Quality 0
// is a good reading; any nonzero code means degraded.
type Sample struct {
	SensorID int
	Pos      [3]float64
	Ori      [3]float64
	Quality  int
}

// Frame is the set of samples captured at one polling instant. T is
// milliseconds since the start of the session. Samples are ordered by
// ascending sensor id and ids are unique within a frame.
type Frame struct {
	T       int64
	Samples []Sample
}

// Source is anything that can provide tracker frames over time: the real
// device, a mock for development without hardware, maybe a replay source
// from a recording later.
type Source interface {
	Next() (Frame, error)
	Sensors() []int
	Close() error
}

// DeviceError reports a tracker driver failure. A disconnected tracker
// cannot self-recover, so callers treat it as fatal and stop the capture
// loop instead of retrying.
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string { return fmt.Sprintf("tracker %s: %v", e.Op, e.Err) }

func (e *DeviceError) Unwrap() error { return e.Err }
