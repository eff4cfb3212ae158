package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds all application configuration values.
type Config struct {
	// Tracker hardware
	TrackerSerialPort string
	TrackerBaudRate   int

	// Timing
	SampleInterval int // milliseconds between polls

	// MQTT
	MQTTBroker           string
	MQTTClientIDProducer string
	MQTTClientIDWeb      string
	MQTTClientIDRecorder string
	TopicFrames          string

	// Web server
	WebServerPort int

	// Recorder
	RecorderDBPath string
}

// Default returns the configuration used when no config file is given, so
// the stream CLI works out of the box.
func Default() *Config {
	return &Config{
		TrackerSerialPort:    "/dev/ttyUSB0",
		TrackerBaudRate:      115200,
		SampleInterval:       10,
		MQTTBroker:           "tcp://localhost:1883",
		MQTTClientIDProducer: "emtracker-frame-producer",
		MQTTClientIDWeb:      "emtracker-web-subscriber",
		MQTTClientIDRecorder: "emtracker-recorder",
		TopicFrames:          "emtracker/frames",
		WebServerPort:        8080,
		RecorderDBPath:       "emtracker.db",
	}
}

var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads a KEY=VALUE configuration file over the defaults. Empty lines
// and lines starting with # are skipped.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Default()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	case "TRACKER_SERIAL_PORT":
		c.TrackerSerialPort = value
	case "TRACKER_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid TRACKER_BAUD_RATE %q: %w", value, err)
		}
		c.TrackerBaudRate = rate

	case "SAMPLE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SAMPLE_INTERVAL %q: %w", value, err)
		}
		if interval <= 0 {
			return fmt.Errorf("SAMPLE_INTERVAL must be positive, got %d", interval)
		}
		c.SampleInterval = interval

	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_RECORDER":
		c.MQTTClientIDRecorder = value
	case "TOPIC_FRAMES":
		c.TopicFrames = value

	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	case "RECORDER_DB_PATH":
		c.RecorderDBPath = value

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.TrackerSerialPort == "" {
		return fmt.Errorf("TRACKER_SERIAL_PORT is required")
	}
	if c.TrackerBaudRate == 0 {
		return fmt.Errorf("TRACKER_BAUD_RATE is required")
	}
	if c.SampleInterval == 0 {
		return fmt.Errorf("SAMPLE_INTERVAL is required")
	}
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.TopicFrames == "" {
		return fmt.Errorf("TOPIC_FRAMES is required")
	}
	return nil
}

// InitGlobal initializes the global configuration. An empty path selects
// the built-in defaults. Uses sync.Once so repeated calls are harmless.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		if configPath == "" {
			globalConfig = Default()
			return
		}
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance. InitGlobal must be called
// first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
