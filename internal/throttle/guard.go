// Package throttle decides whether a device may submit the lead form again.
// The policy is advisory: it is keyed on client-supplied device identity and
// must not be mistaken for a security control.
package throttle

import (
	"strings"
	"time"
)

const (
	// EmailCooldown is the minimum gap between submissions from one email.
	EmailCooldown = 24 * time.Hour
	// DeviceLimit is the lifetime submission count that locks a device.
	// The counter never decays; see the open-question note in DESIGN.md.
	DeviceLimit = 3
	// DeviceLockout is how long a device stays blocked once the limit hits.
	DeviceLockout = 15 * 24 * time.Hour
)

// Reason identifies why a submission was denied.
type Reason string

const (
	ReasonDeviceBlocked Reason = "device_blocked"
	ReasonEmailCooldown Reason = "email_cooldown"
)

// Decision is the outcome of a throttle check.
type Decision struct {
	Allowed bool
	Reason  Reason
	// RetryAt is when the denial lapses; zero when allowed.
	RetryAt time.Time
}

// Allowed is the decision for an unthrottled submission.
var Allowed = Decision{Allowed: true}

// History is the per-device submission record. Epoch milliseconds are used
// throughout so the record round-trips through JSON without precision loss.
type History struct {
	// Emails maps normalized email to the last submission time.
	Emails map[string]int64 `json:"emails"`
	// DeviceSubmissions counts successful sends for the device's lifetime.
	DeviceSubmissions int `json:"deviceSubmissions"`
	// BlockedUntil, once set, is honored until it elapses. It is never
	// cleared early.
	BlockedUntil *int64 `json:"blockedUntil,omitempty"`
}

// NormalizeEmail canonicalizes an email for history keying.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CanSubmit checks the history against the throttle rules, in order: device
// block first, then the per-email cooldown.
func CanSubmit(h History, email string, now time.Time) Decision {
	if h.BlockedUntil != nil {
		until := time.UnixMilli(*h.BlockedUntil)
		if now.Before(until) {
			return Decision{Reason: ReasonDeviceBlocked, RetryAt: until}
		}
	}

	if last, ok := h.Emails[NormalizeEmail(email)]; ok {
		lastAt := time.UnixMilli(last)
		if now.Sub(lastAt) < EmailCooldown {
			return Decision{Reason: ReasonEmailCooldown, RetryAt: lastAt.Add(EmailCooldown)}
		}
	}

	return Allowed
}

// RecordSuccess returns the history advanced past a successful send: the
// email timestamp is set, the lifetime counter incremented, and the device
// locked for DeviceLockout once the counter reaches DeviceLimit. The input
// history is not mutated.
func RecordSuccess(h History, email string, now time.Time) History {
	next := History{
		Emails:            make(map[string]int64, len(h.Emails)+1),
		DeviceSubmissions: h.DeviceSubmissions + 1,
		BlockedUntil:      h.BlockedUntil,
	}
	for k, v := range h.Emails {
		next.Emails[k] = v
	}
	next.Emails[NormalizeEmail(email)] = now.UnixMilli()

	if next.DeviceSubmissions >= DeviceLimit {
		blocked := now.Add(DeviceLockout).UnixMilli()
		next.BlockedUntil = &blocked
	}

	return next
}
