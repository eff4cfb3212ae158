package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "emtracker_config.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
# tracker
TRACKER_SERIAL_PORT = /dev/ttyUSB3
TRACKER_BAUD_RATE = 57600
SAMPLE_INTERVAL = 20

TOPIC_FRAMES = lab/frames
WEB_SERVER_PORT = 9090
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyUSB3", cfg.TrackerSerialPort)
	assert.Equal(t, 57600, cfg.TrackerBaudRate)
	assert.Equal(t, 20, cfg.SampleInterval)
	assert.Equal(t, "lab/frames", cfg.TopicFrames)
	assert.Equal(t, 9090, cfg.WebServerPort)

	// Untouched keys keep their defaults.
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTTBroker)
	assert.Equal(t, "emtracker.db", cfg.RecorderDBPath)
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	path := writeConfig(t, "TRACKER_SREIAL_PORT=/dev/ttyUSB0\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config key")
}

func TestLoadRejectsBadValues(t *testing.T) {
	for _, line := range []string{
		"TRACKER_BAUD_RATE=fast",
		"SAMPLE_INTERVAL=0",
		"SAMPLE_INTERVAL=-5",
		"WEB_SERVER_PORT=http",
		"just a line without equals",
	} {
		_, err := Load(writeConfig(t, line+"\n"))
		assert.Error(t, err, "line %q", line)
	}
}

func TestLoadRejectsClearedRequiredKey(t *testing.T) {
	_, err := Load(writeConfig(t, "MQTT_BROKER=\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MQTT_BROKER")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().validate())
}
