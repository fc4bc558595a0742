package steps

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

type armer interface {
	Arm(userID int64)
}

// Recover re-arms every user whose counter was active before the process
// stopped and announces the restored session to live listeners.
func Recover(ctx context.Context, store Store, worker armer, notifier Notifier) (int, error) {
	userIDs, err := store.ActiveUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("list active step counters: %w", err)
	}

	for _, userID := range userIDs {
		worker.Arm(userID)

		if notifier == nil {
			continue
		}
		state, err := store.LoadState(ctx, userID)
		if err != nil {
			logrus.WithError(err).WithField("user_id", userID).Warn("steps: restored counter without state")
			continue
		}
		notifier.NotifySteps(Update{
			UserID: userID,
			Day:    state.Day,
			Steps:  state.StepsToday,
			Reason: UpdateReasonRestored,
		})
	}

	logrus.WithField("count", len(userIDs)).Info("steps: recovered active counters")
	return len(userIDs), nil
}
