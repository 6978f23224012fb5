package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "monitor_config.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const minimalConfig = `
# test config
DEVICE_ID = unit-01
MQTT_BROKER = tcp://localhost:1883
HTTP_PORT = 8080
SAMPLE_INTERVAL = 100
STORE_PATH = /var/lib/monitor/offsets.db
`

func TestLoadMinimalConfigFillsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.TopicSensors != "iiot/sensors/unit-01" {
		t.Errorf("TopicSensors = %q", cfg.TopicSensors)
	}
	if cfg.TopicAlerts != "iiot/alerts/unit-01" {
		t.Errorf("TopicAlerts = %q", cfg.TopicAlerts)
	}
	if cfg.MQTTClientIDMonitor != "unit-01-monitor" {
		t.Errorf("MQTTClientIDMonitor = %q", cfg.MQTTClientIDMonitor)
	}
	if cfg.IMUI2CAddr != 0x68 || cfg.BMPI2CAddr != 0x76 {
		t.Errorf("I2C addrs = 0x%02X/0x%02X, want 0x68/0x76", cfg.IMUI2CAddr, cfg.BMPI2CAddr)
	}
	if cfg.CalSampleCount != 800 || cfg.CalSampleSpacingMS != 3 {
		t.Errorf("calibration window = %d×%dms, want 800×3ms", cfg.CalSampleCount, cfg.CalSampleSpacingMS)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig+`
IMU_I2C_ADDR = 0x69
TOPIC_SENSORS = factory/line3/telemetry
CAL_SAMPLE_COUNT = 400
DISPLAY_ENABLED = true
MOCK_SENSORS = 1
HTTP_USER = operator
HTTP_PASS = hunter2
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.IMUI2CAddr != 0x69 {
		t.Errorf("IMUI2CAddr = 0x%02X, want 0x69", cfg.IMUI2CAddr)
	}
	if cfg.TopicSensors != "factory/line3/telemetry" {
		t.Errorf("TopicSensors = %q", cfg.TopicSensors)
	}
	if cfg.CalSampleCount != 400 {
		t.Errorf("CalSampleCount = %d", cfg.CalSampleCount)
	}
	if !cfg.DisplayEnabled || !cfg.MockSensors {
		t.Error("boolean keys not parsed")
	}
	if cfg.HTTPUser != "operator" || cfg.HTTPPass != "hunter2" {
		t.Error("auth keys not parsed")
	}
}

func TestLoadRejectsMissingRequiredKeys(t *testing.T) {
	for _, drop := range []string{"DEVICE_ID", "MQTT_BROKER", "HTTP_PORT", "SAMPLE_INTERVAL", "STORE_PATH"} {
		var kept []string
		for _, line := range strings.Split(minimalConfig, "\n") {
			if !strings.HasPrefix(strings.TrimSpace(line), drop) {
				kept = append(kept, line)
			}
		}
		if _, err := Load(writeConfig(t, strings.Join(kept, "\n"))); err == nil {
			t.Errorf("config without %s accepted", drop)
		}
	}
}

func TestLoadRejectsUnknownKeyAndBadSyntax(t *testing.T) {
	if _, err := Load(writeConfig(t, minimalConfig+"NO_SUCH_KEY = 1\n")); err == nil {
		t.Error("unknown key accepted")
	}
	if _, err := Load(writeConfig(t, minimalConfig+"not a key value line\n")); err == nil {
		t.Error("malformed line accepted")
	}
	if _, err := Load(writeConfig(t, minimalConfig+"CAL_SAMPLE_COUNT = -5\n")); err == nil {
		t.Error("negative sample count accepted")
	}
}
