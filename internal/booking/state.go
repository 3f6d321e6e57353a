package booking

import (
	"time"
)

// approvalDeadline is the earlier of now+ttl and the booking start.
func approvalDeadline(now, start time.Time, ttl time.Duration) time.Time {
	deadline := now.Add(ttl)
	if start.Before(deadline) {
		return start
	}
	return deadline
}

func (b *Booking) isAwaitingApproval() bool {
	return b.Status == StatusPending && b.ApprovalStatus == ApprovalPending
}

// approvalExpired reports whether now is at or past the approval deadline.
func (b *Booking) approvalExpired(now time.Time) bool {
	return b.AutoExpireAt != nil && !now.Before(*b.AutoExpireAt)
}

// checkAwaitingApproval validates the source state of approve and deny.
func (b *Booking) checkAwaitingApproval(now time.Time) error {
	if !b.isAwaitingApproval() {
		return ErrAlreadyResolved
	}
	if b.approvalExpired(now) {
		return ErrExpired
	}
	return nil
}

func (b *Booking) markApproved(now time.Time) {
	b.Status = StatusConfirmed
	b.ApprovalStatus = ApprovalApproved
	b.ApprovedAt = timePtr(now)
}

func (b *Booking) markDenied(now time.Time, reason string) {
	b.Status = StatusCancelled
	b.ApprovalStatus = ApprovalDenied
	b.DeniedAt = timePtr(now)
	b.CancelledAt = timePtr(now)
	if reason != "" {
		b.DenialReason = strPtr(reason)
	}
}

func (b *Booking) markAutoDeclined(now time.Time) {
	b.markDenied(now, autoDeclineReason)
}

func (b *Booking) markExpired(now time.Time) {
	b.Status = StatusCancelled
	b.ApprovalStatus = ApprovalExpired
	b.CancelledAt = timePtr(now)
}

// markCancelled leaves the approval status as it was.
func (b *Booking) markCancelled(now time.Time) {
	b.Status = StatusCancelled
	b.CancelledAt = timePtr(now)
}

// insideNotice reports whether start is closer to now than the notice window.
func (b *Booking) insideNotice(now time.Time, notice time.Duration) bool {
	return b.Start.Sub(now) < notice
}

// WasConfirmed reports whether the booking ever held its slot. A cancelled
// pending request keeps its PENDING approval status.
func (b *Booking) WasConfirmed() bool {
	return b.ApprovalStatus == ApprovalNotRequired || b.ApprovalStatus == ApprovalApproved
}
