package telemetry

import (
	"math"
	"time"
)

// EnvReading is one environmental measurement from the BMP280.
// Available distinguishes "sensor present and reading zero" from "sensor
// down": when false the numeric fields are meaningless and zero.
type EnvReading struct {
	Temperature float64 // °C
	Pressure    float64 // hPa
	Available   bool
}

// Snapshot is the derived telemetry exposed to polling consumers. Field
// names on the wire match the unit's CSV/JSON columns so the downstream
// ML pipeline keeps working unchanged.
//
// AngleZ comes from the continuously integrating heading estimator and is
// not bias-corrected; it drifts.
type Snapshot struct {
	UptimeMS int64 `json:"Uptime_ms"`

	Temperature float64 `json:"Temperature_C"`
	Pressure    float64 `json:"Pressure_hPa"`

	AngleX float64 `json:"AngleX"`
	AngleY float64 `json:"AngleY"`
	AngleZ float64 `json:"AngleZ"`

	AccX float64 `json:"AccX_g"`
	AccY float64 `json:"AccY_g"`
	AccZ float64 `json:"AccZ_g"`

	Altitude float64 `json:"Altitude_m"`

	EnvOK bool `json:"EnvAvailable"`
	IMUOK bool `json:"IMUAvailable"`

	Taken time.Time `json:"-"`
}

// seaLevelHPa is the standard-atmosphere reference used for the altitude
// derivation, same constant the unit's BMP280 library uses.
const seaLevelHPa = 1013.25

// AltitudeFromPressure converts a station pressure in hPa to meters via
// the international barometric formula.
func AltitudeFromPressure(hPa float64) float64 {
	return 44330.0 * (1.0 - math.Pow(hPa/seaLevelHPa, 0.1903))
}
