package workspace

import (
	"fmt"
	"time"
)

// DenialReason classifies why a workspace may not become current.
type DenialReason string

const (
	DenialNotYetStarted DenialReason = "not_yet_started"
	DenialExpired       DenialReason = "expired"
	DenialNotAvailable  DenialReason = "not_available"
)

// AccessDeniedError is returned when a workspace selection is blocked.
// At carries the offending window boundary when the denial is
// time-based, so the caller can render it.
type AccessDeniedError struct {
	Reason DenialReason
	At     *time.Time
}

func (e *AccessDeniedError) Error() string {
	switch e.Reason {
	case DenialNotYetStarted:
		return fmt.Sprintf("workspace access has not started (starts %s)", e.At.Format(time.RFC3339))
	case DenialExpired:
		return fmt.Sprintf("workspace access has expired (ended %s)", e.At.Format(time.RFC3339))
	default:
		return "workspace is not available"
	}
}

// Available reports whether ws may be used at the instant now. The
// check is pure and is recomputed from the wall clock on every call;
// callers driving a countdown must never cache or increment it.
func Available(ws Workspace, now time.Time) bool {
	return AvailabilityAt(ws, now) == nil
}

// AvailabilityAt returns nil when ws is usable at now, or the denial
// explaining why it is not. Start wins over end when both would deny.
func AvailabilityAt(ws Workspace, now time.Time) *AccessDeniedError {
	if ws.AccessStartDate != nil && now.Before(*ws.AccessStartDate) {
		return &AccessDeniedError{Reason: DenialNotYetStarted, At: ws.AccessStartDate}
	}
	if ws.AccessEndDate != nil && now.After(*ws.AccessEndDate) {
		return &AccessDeniedError{Reason: DenialExpired, At: ws.AccessEndDate}
	}
	if ws.Status != "" && ws.Status != StatusActive {
		return &AccessDeniedError{Reason: DenialNotAvailable}
	}
	return nil
}

// TimeUntil returns the remaining duration from now to target, or nil
// once target is no longer in the future.
func TimeUntil(target, now time.Time) *time.Duration {
	if !target.After(now) {
		return nil
	}
	d := target.Sub(now)
	return &d
}

// FormatRemaining renders d using its two largest adjacent units:
// days+hours, hours+minutes, minutes+seconds, or bare seconds.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	days := int(d / (24 * time.Hour))
	hours := int(d/time.Hour) % 24
	minutes := int(d/time.Minute) % 60
	seconds := int(d/time.Second) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
