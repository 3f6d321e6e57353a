package booking

import (
	"context"
	"time"
)

// guardPrivate must run inside the transaction that writes the booking. The
// advisory lock holds until commit, so a concurrent writer for the same coach
// sees this booking once it gets past the lock.
func guardPrivate(ctx context.Context, repo Repository, coachID string, start, end time.Time, excludeID string) error {
	if err := repo.LockCoach(ctx, coachID); err != nil {
		return err
	}
	taken, err := repo.HasConfirmedOverlap(ctx, coachID, start, end, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return ErrConflict
	}
	return nil
}

// declineOverlappingPending cancels other pending requests that overlap a
// freshly confirmed booking and returns them for notification.
func declineOverlappingPending(ctx context.Context, repo Repository, confirmed *Booking, now time.Time) ([]*Booking, error) {
	pending, err := repo.ListOverlappingPending(ctx, confirmed.OwnerCoachID, confirmed.Start, confirmed.End, confirmed.ID)
	if err != nil {
		return nil, err
	}
	for _, p := range pending {
		p.markAutoDeclined(now)
		if err := repo.UpdateState(ctx, p); err != nil {
			return nil, err
		}
	}
	return pending, nil
}
