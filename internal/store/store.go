// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


// Package store persists the calibration offsets across restarts.
//
// Layout mirrors the flash key/value store of the embedded unit: bucket
// "mpu" with float64 keys ax/ay/az (accel bias, g) and gx/gy/gz (gyro
// bias, deg/s), plus a one-byte "ok" presence marker. The six payload
// keys are committed before the marker, in a separate transaction, so a
// partial write is indistinguishable from an empty store on the next
// load: no marker, no model.
package store

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/relabs-tech/sensor_monitor/internal/bias"
)

const bucketName = "mpu"

const markerKey = "ok"

var fieldKeys = []string{"ax", "ay", "az", "gx", "gy", "gz"}

// Store is a bbolt-backed offset store.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if needed) the offset store at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying file.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load reads the persisted model. The second return value reports
// presence: false means the store has never been written (or only
// partially, marker missing), which is the expected first-boot state and
// not an error. Callers fall back to bias.Default() in that case.
func (s *Store) Load() (bias.Model, bool, error) {
	var m bias.Model
	present := false

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return nil
		}

		// Marker first: stale payload keys without it are ignored.
		ok := b.Get([]byte(markerKey))
		if len(ok) != 1 || ok[0] != 1 {
			return nil
		}

		vals := make([]float64, len(fieldKeys))
		for i, k := range fieldKeys {
			raw := b.Get([]byte(k))
			if len(raw) != 8 {
				// Marker set but payload incomplete: treat as absent
				// rather than failing the boot.
				return nil
			}
			vals[i] = math.Float64frombits(binary.BigEndian.Uint64(raw))
		}

		m = bias.Model{
			AccOffX: vals[0], AccOffY: vals[1], AccOffZ: vals[2],
			GyrOffX: vals[3], GyrOffY: vals[4], GyrOffZ: vals[5],
			Valid: true,
		}
		present = true
		return nil
	})
	if err != nil {
		return bias.Model{}, false, fmt.Errorf("store: load: %w", err)
	}
	return m, present, nil
}

// Save persists the model in two phases: clear the marker and write the
// six payload keys, then set the marker. The ordering is a correctness
// requirement, not an implementation detail: a crash between the phases
// leaves the store reading as absent instead of serving half-written
// offsets.
func (s *Store) Save(m bias.Model) error {
	vals := []float64{m.AccOffX, m.AccOffY, m.AccOffZ, m.GyrOffX, m.GyrOffY, m.GyrOffZ}

	err := s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		if err != nil {
			return err
		}
		if err := b.Delete([]byte(markerKey)); err != nil {
			return err
		}
		for i, k := range fieldKeys {
			var buf [8]byte
			binary.BigEndian.PutUint64(buf[:], math.Float64bits(vals[i]))
			if err := b.Put([]byte(k), buf[:]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("store: write offsets: %w", err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte(markerKey), []byte{1})
	})
	if err != nil {
		return fmt.Errorf("store: write marker: %w", err)
	}
	return nil
}
