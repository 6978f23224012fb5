// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package display

import (
	"fmt"
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/relabs-tech/sensor_monitor/internal/telemetry"
)

// OLED renders telemetry on a 128x64 SSD1306 panel.
type OLED struct {
	dev *ssd1306.Dev
}

// NewOLED initializes the panel on the given I2C bus.
func NewOLED(bus i2c.Bus) (*OLED, error) {
	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return nil, fmt.Errorf("display: ssd1306 init: %w", err)
	}
	return &OLED{dev: dev}, nil
}

func (o *OLED) newDrawer() (*image1bit.VerticalLSB, *font.Drawer) {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	for i := range img.Pix {
		img.Pix[i] = 0
	}
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	return img, drawer
}

// RenderTelemetry draws the normal telemetry screen.
func (o *OLED) RenderTelemetry(snap telemetry.Snapshot) error {
	img, drawer := o.newDrawer()

	drawer.Dot = fixed.P(0, 13)
	if snap.EnvOK {
		drawer.DrawBytes([]byte(fmt.Sprintf("T%5.1fC P%6.1f", snap.Temperature, snap.Pressure)))
	} else {
		drawer.DrawBytes([]byte("ENV: n/a"))
	}

	drawer.Dot = fixed.P(0, 26)
	if snap.IMUOK {
		drawer.DrawBytes([]byte(fmt.Sprintf("X%6.1f Y%6.1f", snap.AngleX, snap.AngleY)))

		drawer.Dot = fixed.P(0, 39)
		drawer.DrawBytes([]byte(fmt.Sprintf("Z%6.1f", snap.AngleZ)))

		drawer.Dot = fixed.P(0, 52)
		drawer.DrawBytes([]byte(fmt.Sprintf("A %4.2f %4.2f %4.2f", snap.AccX, snap.AccY, snap.AccZ)))
	} else {
		drawer.DrawBytes([]byte("IMU: n/a"))
	}

	return o.dev.Draw(o.dev.Bounds(), img, image.Point{})
}

// RenderAlert draws the fixed anomaly screen.
func (o *OLED) RenderAlert() error {
	img, drawer := o.newDrawer()

	drawer.Dot = fixed.P(20, 26)
	drawer.DrawBytes([]byte("!! ANOMALY !!"))

	drawer.Dot = fixed.P(10, 43)
	drawer.DrawBytes([]byte("check machine"))

	return o.dev.Draw(o.dev.Bounds(), img, image.Point{})
}

// ShowSplash draws the boot screen.
func (o *OLED) ShowSplash() error {
	img, drawer := o.newDrawer()

	drawer.Dot = fixed.P(10, 26)
	drawer.DrawBytes([]byte("Sensor Monitor"))

	drawer.Dot = fixed.P(15, 43)
	drawer.DrawBytes([]byte("starting..."))

	return o.dev.Draw(o.dev.Bounds(), img, image.Point{})
}
