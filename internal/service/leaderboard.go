package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"questlog/internal/model"

	"github.com/google/uuid"
)

type LeaderboardService struct {
	repo     LeaderboardRepository
	settings Settings
	now      func() time.Time
}

func NewLeaderboardService(repo LeaderboardRepository, settings Settings) *LeaderboardService {
	return &LeaderboardService{
		repo:     repo,
		settings: settings,
		now:      time.Now,
	}
}

// GetLeaderboard sums ledger XP for every current member of the group over the
// timeframe and ranks the result. It is computed on each call.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, callerID int64, groupID uuid.UUID, timeframe model.Timeframe) ([]*model.LeaderboardEntry, error) {
	var since *time.Time
	switch timeframe {
	case model.TimeframeWeekly:
		start := WeekStart(s.now(), s.settings.location())
		since = &start
	case model.TimeframeAllTime:
	default:
		return nil, fmt.Errorf("%w: unknown timeframe %q", ErrValidationFailed, timeframe)
	}

	if _, err := s.repo.GetGroup(ctx, groupID); err != nil {
		return nil, mapNotFound(err, ErrNotFound)
	}

	if !s.settings.AllowBrowse {
		member, err := s.repo.IsMember(ctx, groupID, callerID)
		if err != nil {
			return nil, fmt.Errorf("failed to check membership: %w", err)
		}
		if !member {
			return nil, ErrAuthorization
		}
	}

	entries, err := s.repo.GroupStandings(ctx, groupID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get group standings: %w", err)
	}

	return RankEntries(entries), nil
}

// RankEntries orders by XP descending, then display name, then user id, and
// assigns dense ranks: equal XP shares a rank and the next distinct XP value
// gets the following one.
func RankEntries(entries []*model.LeaderboardEntry) []*model.LeaderboardEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.XP != b.XP {
			return a.XP > b.XP
		}
		if a.DisplayName != b.DisplayName {
			return a.DisplayName < b.DisplayName
		}
		return a.UserID < b.UserID
	})

	rank := 0
	for i, e := range entries {
		if i == 0 || e.XP != entries[i-1].XP {
			rank++
		}
		e.Rank = rank
	}

	return entries
}

// WeekStart returns Monday 00:00 of the week containing now, in loc.
func WeekStart(now time.Time, loc *time.Location) time.Time {
	t := now.In(loc)
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, loc)
}
