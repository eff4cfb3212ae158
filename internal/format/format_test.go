package format

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/em_tracker/internal/tracker"
)

func sampleFrame() tracker.Frame {
	return tracker.Frame{
		T: 1234567,
		Samples: []tracker.Sample{{
			SensorID: 1,
			Pos:      [3]float64{12.3456, -23.4567, 145.6789},
			Ori:      [3]float64{45.1234, 12.4567, -5.7890},
			Quality:  0,
		}},
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	_, err := New("xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")
}

func TestCSVKnownFrame(t *testing.T) {
	f, err := New("csv")
	require.NoError(t, err)

	out, err := f.Format(sampleFrame())
	require.NoError(t, err)
	assert.Equal(t, "1234567,1,12.3456,-23.4567,145.6789,45.1234,12.4567,-5.7890,0\n", out)
}

func TestCSVHeaderColumns(t *testing.T) {
	f, err := New("csv")
	require.NoError(t, err)
	assert.Equal(t, CSVHeader+"\n", f.Header())
	assert.Equal(t,
		[]string{"timestamp_ms", "sensor_id", "x", "y", "z", "azimuth", "elevation", "roll", "quality"},
		strings.Split(CSVHeader, ","))
}

func TestCSVOneRowPerSensor(t *testing.T) {
	f, err := New("csv")
	require.NoError(t, err)

	frame := tracker.Frame{
		T: 42,
		Samples: []tracker.Sample{
			{SensorID: 1, Quality: 0},
			{SensorID: 2, Quality: 3},
			{SensorID: 4, Quality: 0},
		},
	}
	out, err := f.Format(frame)
	require.NoError(t, err)

	rows := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, rows, 3)
	for i, row := range rows {
		fields := strings.Split(row, ",")
		assert.Len(t, fields, 9, "row %d", i)
		assert.Equal(t, "42", fields[0])
	}
	assert.Equal(t, "3", strings.Split(rows[1], ",")[8])
}

func TestJSONKnownFrame(t *testing.T) {
	f, err := New("json")
	require.NoError(t, err)

	out, err := f.Format(sampleFrame())
	require.NoError(t, err)
	// -5.7890 carries no information in its trailing zero, so it prints as
	// -5.789, same as the reference stream.
	assert.Equal(t,
		`{"t":1234567,"sensors":{"1":{"pos":[12.3456,-23.4567,145.6789],"ori":[45.1234,12.4567,-5.789],"q":0}}}`+"\n",
		out)
}

func TestJSONSchema(t *testing.T) {
	f, err := New("json")
	require.NoError(t, err)
	assert.Empty(t, f.Header())

	frame := tracker.Frame{
		T: 99,
		Samples: []tracker.Sample{
			{SensorID: 2, Pos: [3]float64{1, 2, 3}, Ori: [3]float64{4, 5, 6}, Quality: 7},
			{SensorID: 3},
		},
	}
	out, err := f.Format(frame)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Contains(t, decoded, "t")
	require.Contains(t, decoded, "sensors")
	require.Len(t, decoded, 2)

	var rec FrameRecord
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, int64(99), rec.T)
	require.Len(t, rec.Sensors, 2)
	assert.Equal(t, SensorRecord{Pos: [3]float64{1, 2, 3}, Ori: [3]float64{4, 5, 6}, Q: 7}, rec.Sensors["2"])

	var sensorKeys map[string]map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(decoded["sensors"], &sensorKeys))
	for id, entry := range sensorKeys {
		assert.Len(t, entry, 3, "sensor %s", id)
		assert.Contains(t, entry, "pos")
		assert.Contains(t, entry, "ori")
		assert.Contains(t, entry, "q")
	}
}

func TestJSONRoundsToFourDecimals(t *testing.T) {
	f, err := New("json")
	require.NoError(t, err)

	frame := tracker.Frame{
		T:       1,
		Samples: []tracker.Sample{{SensorID: 1, Pos: [3]float64{0.123456789, 0, 0}}},
	}
	out, err := f.Format(frame)
	require.NoError(t, err)

	var rec FrameRecord
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, 0.1235, rec.Sensors["1"].Pos[0])
}

func TestFormattingIsIdempotent(t *testing.T) {
	for _, name := range []string{"csv", "json"} {
		f, err := New(name)
		require.NoError(t, err)

		frame := sampleFrame()
		first, err := f.Format(frame)
		require.NoError(t, err)
		second, err := f.Format(frame)
		require.NoError(t, err)
		assert.Equal(t, first, second, "format %s", name)
	}
}
