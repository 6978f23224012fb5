package sensors

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/bmxx80"

	"github.com/relabs-tech/sensor_monitor/internal/telemetry"
)

// Env reads temperature and pressure from a BMP280.
type Env struct {
	dev *bmxx80.Dev
}

// NewEnv initializes the BMP280 at addr (0x76 or 0x77) on the given bus.
func NewEnv(bus i2c.Bus, addr uint16) (*Env, error) {
	dev, err := bmxx80.NewI2C(bus, addr, &bmxx80.DefaultOpts)
	if err != nil {
		return nil, fmt.Errorf("env: BMP280 init: %w", err)
	}
	return &Env{dev: dev}, nil
}

// Read senses temperature (°C) and pressure (hPa). On failure the caller
// gets Available=false, never a half-filled reading.
func (e *Env) Read() (telemetry.EnvReading, error) {
	var env physic.Env
	if err := e.dev.Sense(&env); err != nil {
		return telemetry.EnvReading{}, fmt.Errorf("env: BMP280 sense: %w", err)
	}

	pressurePa := float64(env.Pressure) / float64(physic.Pascal)
	return telemetry.EnvReading{
		Temperature: env.Temperature.Celsius(),
		Pressure:    pressurePa / 100.0, // 1 hPa = 100 Pa
		Available:   true,
	}, nil
}
