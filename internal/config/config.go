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
	// Identity
	DeviceID string

	// MQTT
	MQTTBroker          string
	MQTTClientIDMonitor string
	MQTTClientIDConsole string

	// Topics. Defaulted from DeviceID when left empty.
	TopicSensors string
	TopicAlerts  string

	// Web server
	HTTPPort int
	HTTPUser string
	HTTPPass string

	// I2C devices
	I2CBus         string // empty = first available bus
	IMUI2CAddr     uint16
	BMPI2CAddr     uint16
	DisplayEnabled bool

	// Use synthetic sensors instead of hardware (development on a laptop).
	MockSensors bool

	// Timing
	SampleInterval int // control loop tick, milliseconds

	// Calibration window
	CalSampleCount     int
	CalSampleSpacingMS int

	// Offset store
	StorePath string
}

// Package-level singleton: set once via InitGlobal, read via Get.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := &Config{
		IMUI2CAddr:         0x68,
		BMPI2CAddr:         0x76,
		CalSampleCount:     800,
		CalSampleSpacingMS: 3,
	}
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
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
	case "DEVICE_ID":
		c.DeviceID = value

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_MONITOR":
		c.MQTTClientIDMonitor = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value

	// Topics
	case "TOPIC_SENSORS":
		c.TopicSensors = value
	case "TOPIC_ALERTS":
		c.TopicAlerts = value

	// Web server
	case "HTTP_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid HTTP_PORT %q: %w", value, err)
		}
		c.HTTPPort = port
	case "HTTP_USER":
		c.HTTPUser = value
	case "HTTP_PASS":
		c.HTTPPass = value

	// I2C devices
	case "I2C_BUS":
		c.I2CBus = value
	case "IMU_I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid IMU_I2C_ADDR %q: %w", value, err)
		}
		c.IMUI2CAddr = uint16(addr)
	case "BMP_I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid BMP_I2C_ADDR %q: %w", value, err)
		}
		c.BMPI2CAddr = uint16(addr)
	case "DISPLAY_ENABLED":
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_ENABLED %q: %w", value, err)
		}
		c.DisplayEnabled = enabled
	case "MOCK_SENSORS":
		mock, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid MOCK_SENSORS %q: %w", value, err)
		}
		c.MockSensors = mock

	// Timing
	case "SAMPLE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SAMPLE_INTERVAL %q: %w", value, err)
		}
		c.SampleInterval = interval

	// Calibration window
	case "CAL_SAMPLE_COUNT":
		count, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid CAL_SAMPLE_COUNT %q: %w", value, err)
		}
		if count <= 0 {
			return fmt.Errorf("CAL_SAMPLE_COUNT must be positive, got %d", count)
		}
		c.CalSampleCount = count
	case "CAL_SAMPLE_SPACING":
		spacing, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid CAL_SAMPLE_SPACING %q: %w", value, err)
		}
		if spacing < 0 {
			return fmt.Errorf("CAL_SAMPLE_SPACING must be >= 0, got %d", spacing)
		}
		c.CalSampleSpacingMS = spacing

	// Offset store
	case "STORE_PATH":
		c.StorePath = value

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks required fields and fills derived defaults.
func (c *Config) validate() error {
	if c.DeviceID == "" {
		return fmt.Errorf("DEVICE_ID is required")
	}
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.HTTPPort == 0 {
		return fmt.Errorf("HTTP_PORT is required")
	}
	if c.SampleInterval == 0 {
		return fmt.Errorf("SAMPLE_INTERVAL is required")
	}
	if c.StorePath == "" {
		return fmt.Errorf("STORE_PATH is required")
	}

	if c.TopicSensors == "" {
		c.TopicSensors = "iiot/sensors/" + c.DeviceID
	}
	if c.TopicAlerts == "" {
		c.TopicAlerts = "iiot/alerts/" + c.DeviceID
	}
	if c.MQTTClientIDMonitor == "" {
		c.MQTTClientIDMonitor = c.DeviceID + "-monitor"
	}
	if c.MQTTClientIDConsole == "" {
		c.MQTTClientIDConsole = c.DeviceID + "-console"
	}
	return nil
}

// InitGlobal initializes the global configuration from file. Safe to call
// more than once; only the first call loads.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance. InitGlobal must be
// called first, or this returns nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
