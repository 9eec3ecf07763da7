package service

import "context"

const (
	MessageXPAwarded       = "XP_AWARDED"
	MessageStreakMilestone = "STREAK_MILESTONE"
	MessageGuildJoined     = "GUILD_MEMBER_JOINED"
)

var streakMilestones = map[int]struct{}{3: {}, 7: {}, 14: {}, 30: {}, 100: {}, 365: {}}

type Message struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Notifier receives events after their transaction has committed. Delivery
// is best effort and never affects the operation result.
type Notifier interface {
	Notify(ctx context.Context, userID int64, msg Message)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, int64, Message) {}

func orNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}

func isStreakMilestone(days int) bool {
	_, ok := streakMilestones[days]
	return ok
}
