package throttle

import (
	"context"
	"testing"
	"time"
)

func TestBuntStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewBuntStore(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	h, err := store.Load(ctx, "device-1")
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if h.DeviceSubmissions != 0 || len(h.Emails) != 0 {
		t.Fatalf("expected zero history for unknown device, got %+v", h)
	}

	now := time.Now()
	saved := RecordSuccess(History{}, "jane@x.com", now)
	if err := store.Save(ctx, "device-1", saved); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.Load(ctx, "device-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.DeviceSubmissions != 1 {
		t.Fatalf("expected 1 submission, got %d", loaded.DeviceSubmissions)
	}
	if loaded.Emails["jane@x.com"] != now.UnixMilli() {
		t.Fatalf("expected email timestamp to round-trip, got %+v", loaded.Emails)
	}

	// Other devices stay isolated.
	other, err := store.Load(ctx, "device-2")
	if err != nil {
		t.Fatalf("load other: %v", err)
	}
	if other.DeviceSubmissions != 0 {
		t.Fatalf("expected empty history for other device, got %+v", other)
	}
}

func TestBuntStore_BlockedUntilSurvivesReload(t *testing.T) {
	ctx := context.Background()
	store, err := NewBuntStore(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	now := time.Now()
	h := History{}
	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		h = RecordSuccess(h, email, now)
	}
	if err := store.Save(ctx, "device-1", h); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.Load(ctx, "device-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.BlockedUntil == nil {
		t.Fatal("expected block deadline to survive a reload")
	}
	if *loaded.BlockedUntil != *h.BlockedUntil {
		t.Fatalf("expected deadline %d, got %d", *h.BlockedUntil, *loaded.BlockedUntil)
	}
}
