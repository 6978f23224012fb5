// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package sensors

import (
	"fmt"
	"log"
	"time"

	"periph.io/x/conn/v3/i2c"

	"github.com/relabs-tech/sensor_monitor/internal/imu"
)

// MPU6500 registers used by this driver.
const (
	regSmplrtDiv   = 0x19
	regConfig      = 0x1A
	regGyroConfig  = 0x1B
	regAccelConfig = 0x1C
	regAccelXoutH  = 0x3B
	regPwrMgmt1    = 0x6B
	regWhoAmI      = 0x75
)

// WHO_AM_I values for the supported parts.
const (
	whoAmIMPU6500 = 0x70
	whoAmIMPU6050 = 0x68
	whoAmIMPU9250 = 0x71
)

// Scale factors at the ranges this driver configures: ±2g and ±250 deg/s.
const (
	accelLSBPerG  = 16384.0
	gyroLSBPerDps = 131.0
)

// MPU6500 drives an MPU-6500 class accel/gyro over I2C and converts raw
// counts to g and deg/s. Implements imu.Source.
type MPU6500 struct {
	dev i2c.Dev
}

// NewMPU6500 probes and configures the device at addr (0x68, or 0x69
// with AD0 high) on the given bus.
func NewMPU6500(bus i2c.Bus, addr uint16) (*MPU6500, error) {
	m := &MPU6500{dev: i2c.Dev{Bus: bus, Addr: addr}}

	id, err := m.readReg(regWhoAmI)
	if err != nil {
		return nil, fmt.Errorf("imu: WHO_AM_I read: %w", err)
	}
	switch id {
	case whoAmIMPU6500, whoAmIMPU6050, whoAmIMPU9250:
		log.Printf("imu: found device at 0x%02X, WHO_AM_I=0x%02X", addr, id)
	default:
		return nil, fmt.Errorf("imu: unexpected WHO_AM_I 0x%02X at address 0x%02X", id, addr)
	}

	// Reset, then wake with the gyro X PLL as clock source.
	if err := m.writeReg(regPwrMgmt1, 0x80); err != nil {
		return nil, fmt.Errorf("imu: reset: %w", err)
	}
	time.Sleep(100 * time.Millisecond)
	if err := m.writeReg(regPwrMgmt1, 0x01); err != nil {
		return nil, fmt.Errorf("imu: wake: %w", err)
	}

	// DLPF 41 Hz, 1 kHz internal rate divided to 200 Hz.
	if err := m.writeReg(regConfig, 0x03); err != nil {
		return nil, fmt.Errorf("imu: set DLPF: %w", err)
	}
	if err := m.writeReg(regSmplrtDiv, 0x04); err != nil {
		return nil, fmt.Errorf("imu: set sample rate divider: %w", err)
	}

	// ±250 deg/s, ±2g.
	if err := m.writeReg(regGyroConfig, 0x00); err != nil {
		return nil, fmt.Errorf("imu: set gyro range: %w", err)
	}
	if err := m.writeReg(regAccelConfig, 0x00); err != nil {
		return nil, fmt.Errorf("imu: set accel range: %w", err)
	}

	return m, nil
}

// Next reads one accel+gyro sample. The 14-byte burst starting at
// ACCEL_XOUT_H covers accel, die temperature and gyro in one transaction
// so all channels come from the same sampling instant.
func (m *MPU6500) Next() (imu.Sample, error) {
	var buf [14]byte
	if err := m.dev.Tx([]byte{regAccelXoutH}, buf[:]); err != nil {
		return imu.Sample{}, fmt.Errorf("imu: burst read: %w", err)
	}

	ax := int16(uint16(buf[0])<<8 | uint16(buf[1]))
	ay := int16(uint16(buf[2])<<8 | uint16(buf[3]))
	az := int16(uint16(buf[4])<<8 | uint16(buf[5]))
	// buf[6:8] is die temperature, unused.
	gx := int16(uint16(buf[8])<<8 | uint16(buf[9]))
	gy := int16(uint16(buf[10])<<8 | uint16(buf[11]))
	gz := int16(uint16(buf[12])<<8 | uint16(buf[13]))

	return imu.Sample{
		Ax: float64(ax) / accelLSBPerG,
		Ay: float64(ay) / accelLSBPerG,
		Az: float64(az) / accelLSBPerG,
		Gx: float64(gx) / gyroLSBPerDps,
		Gy: float64(gy) / gyroLSBPerDps,
		Gz: float64(gz) / gyroLSBPerDps,
	}, nil
}

func (m *MPU6500) readReg(reg byte) (byte, error) {
	var buf [1]byte
	if err := m.dev.Tx([]byte{reg}, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (m *MPU6500) writeReg(reg, val byte) error {
	return m.dev.Tx([]byte{reg, val}, nil)
}
