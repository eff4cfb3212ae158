package format

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/relabs-tech/em_tracker/internal/tracker"
)

// CSVHeader is the column layout of CSV output, one row per sensor per
// frame.
const CSVHeader = "timestamp_ms,sensor_id,x,y,z,azimuth,elevation,roll,quality"

// A Formatter turns one frame into its serialized text form, trailing
// newline included. Formatting is pure: no side effects, same frame in,
// same text out.
type Formatter interface {
	// Header is written once before the first record; "" means none.
	Header() string
	Format(f tracker.Frame) (string, error)
}

// New returns the formatter registered under name, "csv" or "json".
func New(name string) (Formatter, error) {
	switch name {
	case "csv":
		return csvFormatter{}, nil
	case "json":
		return jsonFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want csv or json)", name)
	}
}

type csvFormatter struct{}

func (csvFormatter) Header() string { return CSVHeader + "\n" }

func (csvFormatter) Format(f tracker.Frame) (string, error) {
	var b strings.Builder
	for _, s := range f.Samples {
		b.WriteString(strconv.FormatInt(f.T, 10))
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(s.SensorID))
		for _, v := range [6]float64{s.Pos[0], s.Pos[1], s.Pos[2], s.Ori[0], s.Ori[1], s.Ori[2]} {
			b.WriteByte(',')
			b.WriteString(strconv.FormatFloat(v, 'f', 4, 64))
		}
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(s.Quality))
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// FrameRecord is the JSON Lines schema for one frame, keyed by decimal
// sensor id. The MQTT payload uses the same shape.
type FrameRecord struct {
	T       int64                   `json:"t"`
	Sensors map[string]SensorRecord `json:"sensors"`
}

// SensorRecord is one sensor's entry within a FrameRecord.
type SensorRecord struct {
	Pos [3]float64 `json:"pos"`
	Ori [3]float64 `json:"ori"`
	Q   int        `json:"q"`
}

type jsonFormatter struct{}

func (jsonFormatter) Header() string { return "" }

func (jsonFormatter) Format(f tracker.Frame) (string, error) {
	rec := FrameRecord{T: f.T, Sensors: make(map[string]SensorRecord, len(f.Samples))}
	for _, s := range f.Samples {
		rec.Sensors[strconv.Itoa(s.SensorID)] = SensorRecord{
			Pos: [3]float64{round4(s.Pos[0]), round4(s.Pos[1]), round4(s.Pos[2])},
			Ori: [3]float64{round4(s.Ori[0]), round4(s.Ori[1]), round4(s.Ori[2])},
			Q:   s.Quality,
		}
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}
	return string(raw) + "\n", nil
}

// round4 matches the tracker's documented 4-decimal output precision.
func round4(v float64) float64 { return math.Round(v*1e4) / 1e4 }
