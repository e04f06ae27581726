package controller

import "time"

// SendSchedule tracks when telemetry was last attempted and last confirmed.
// It lives only in memory; after a power cycle the first send is forced.
type SendSchedule struct {
	LastSendAt    time.Time
	LastSuccessAt time.Time
	ForceSend     bool
}

// IntervalDue reports whether the regular-cadence branch should send now.
// ForceSend is the one-shot override set on boot and on cover transitions.
func (s *SendSchedule) IntervalDue(now time.Time, interval time.Duration) bool {
	return s.ForceSend || now.Sub(s.LastSendAt) >= interval
}

// RetryDue reports whether the retry branch should send now. It is evaluated
// after the interval branch, so a send in the same cycle resets LastSendAt
// first and at most one send happens per cycle.
func (s *SendSchedule) RetryDue(now time.Time, retryTimeout time.Duration) bool {
	return now.Sub(s.LastSuccessAt) > retryTimeout && now.Sub(s.LastSendAt) > retryTimeout
}

// MarkAttempt records a send attempt and consumes any pending force flag
func (s *SendSchedule) MarkAttempt(now time.Time) {
	s.LastSendAt = now
	s.ForceSend = false
}

// MarkSuccess records a confirmed delivery. Failures leave LastSuccessAt
// untouched, which is what re-arms the retry branch.
func (s *SendSchedule) MarkSuccess(now time.Time) {
	s.LastSuccessAt = now
}
