package store

import (
	"math"
	"path/filepath"
	"testing"

	bolt "go.etcd.io/bbolt"

	"github.com/relabs-tech/sensor_monitor/internal/bias"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "offsets.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoadOnEmptyStoreReportsAbsent(t *testing.T) {
	s := openTestStore(t)

	m, present, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if present {
		t.Fatal("fresh store reported a persisted model")
	}
	if m.Valid {
		t.Error("absent model must not be valid")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)

	want := bias.Model{
		AccOffX: 0.13, AccOffY: -0.001, AccOffZ: -0.053,
		GyrOffX: 1.73, GyrOffY: -0.42, GyrOffZ: 0.015,
		Valid: true,
	}
	if err := s.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, present, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !present {
		t.Fatal("saved model not reported present")
	}
	if got != want {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestSaveOverwritesWholeModel(t *testing.T) {
	s := openTestStore(t)

	first := bias.Model{AccOffX: 1, GyrOffZ: 2, Valid: true}
	second := bias.Model{AccOffY: 0.5, Valid: true}

	if err := s.Save(first); err != nil {
		t.Fatalf("Save first: %v", err)
	}
	if err := s.Save(second); err != nil {
		t.Fatalf("Save second: %v", err)
	}

	got, present, err := s.Load()
	if err != nil || !present {
		t.Fatalf("Load: present=%t err=%v", present, err)
	}
	if got != second {
		t.Errorf("got %+v, want %+v", got, second)
	}
}

func TestLoadIgnoresPayloadWithoutMarker(t *testing.T) {
	s := openTestStore(t)

	if err := s.Save(bias.Model{AccOffX: 0.25, Valid: true}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Simulate a write that died between the payload phase and the
	// marker phase: fields are on disk, marker is not.
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Delete([]byte(markerKey))
	})
	if err != nil {
		t.Fatalf("delete marker: %v", err)
	}

	_, present, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if present {
		t.Error("stale payload without marker must read as absent")
	}
}

func TestLoadToleratesNaNFreeExtremes(t *testing.T) {
	s := openTestStore(t)

	want := bias.Model{
		AccOffX: math.MaxFloat64, AccOffZ: -math.SmallestNonzeroFloat64,
		Valid: true,
	}
	if err := s.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, present, err := s.Load()
	if err != nil || !present {
		t.Fatalf("Load: present=%t err=%v", present, err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}
