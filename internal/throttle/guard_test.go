package throttle

import (
	"testing"
	"time"
)

var base = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

func TestCanSubmit_FreshHistoryAllows(t *testing.T) {
	d := CanSubmit(History{}, "jane@x.com", base)
	if !d.Allowed {
		t.Fatalf("expected fresh history to allow, got %+v", d)
	}
}

func TestCanSubmit_EmailCooldownBoundary(t *testing.T) {
	almost := base.Add(-23*time.Hour - 59*time.Minute).UnixMilli()
	h := History{Emails: map[string]int64{"jane@x.com": almost}}

	d := CanSubmit(h, "jane@x.com", base)
	if d.Allowed || d.Reason != ReasonEmailCooldown {
		t.Fatalf("expected email cooldown denial at 23h59m, got %+v", d)
	}

	past := base.Add(-24*time.Hour - 1*time.Minute).UnixMilli()
	h = History{Emails: map[string]int64{"jane@x.com": past}}

	d = CanSubmit(h, "jane@x.com", base)
	if !d.Allowed {
		t.Fatalf("expected allow at 24h01m, got %+v", d)
	}
}

func TestCanSubmit_EmailNormalization(t *testing.T) {
	h := RecordSuccess(History{}, "  Jane@X.Com ", base)

	d := CanSubmit(h, "jane@x.com", base.Add(time.Hour))
	if d.Allowed || d.Reason != ReasonEmailCooldown {
		t.Fatalf("expected cooldown to match case-insensitively, got %+v", d)
	}
}

func TestRecordSuccess_ThirdSubmissionLocksDevice(t *testing.T) {
	h := History{}
	emails := []string{"a@x.com", "b@x.com", "c@x.com"}
	for i, email := range emails {
		h = RecordSuccess(h, email, base.Add(time.Duration(i)*time.Minute))
	}

	if h.DeviceSubmissions != 3 {
		t.Fatalf("expected 3 lifetime submissions, got %d", h.DeviceSubmissions)
	}
	if h.BlockedUntil == nil {
		t.Fatal("expected device block after third submission")
	}

	// A 4th attempt is denied regardless of the email used.
	d := CanSubmit(h, "fresh@x.com", base.Add(time.Hour))
	if d.Allowed || d.Reason != ReasonDeviceBlocked {
		t.Fatalf("expected device block, got %+v", d)
	}

	// The block holds for the full lockout window and lapses after it.
	d = CanSubmit(h, "fresh@x.com", base.Add(2*time.Minute).Add(DeviceLockout-time.Minute))
	if d.Allowed {
		t.Fatalf("expected block to hold until 15 days elapse, got %+v", d)
	}
	d = CanSubmit(h, "fresh@x.com", base.Add(2*time.Minute).Add(DeviceLockout+time.Minute))
	if !d.Allowed {
		t.Fatalf("expected block to lapse after 15 days, got %+v", d)
	}
}

func TestRecordSuccess_DoesNotMutateInput(t *testing.T) {
	original := History{Emails: map[string]int64{"a@x.com": base.UnixMilli()}}
	_ = RecordSuccess(original, "b@x.com", base)

	if len(original.Emails) != 1 || original.DeviceSubmissions != 0 {
		t.Fatalf("expected input history untouched, got %+v", original)
	}
}

func TestDeviceBlockCheckedBeforeCooldown(t *testing.T) {
	blocked := base.Add(DeviceLockout).UnixMilli()
	h := History{
		Emails:            map[string]int64{"jane@x.com": base.UnixMilli()},
		DeviceSubmissions: 3,
		BlockedUntil:      &blocked,
	}

	d := CanSubmit(h, "jane@x.com", base.Add(time.Hour))
	if d.Reason != ReasonDeviceBlocked {
		t.Fatalf("expected device block to win over cooldown, got %+v", d)
	}
}
