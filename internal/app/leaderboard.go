package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"escaperoom-service/internal/domain"
)

// SortSubmissions orders submissions by percentage descending, then score
// descending, then submission time ascending (earlier wins ties). This is the
// single ordering rule used everywhere submissions are ranked.
func SortSubmissions(submissions []domain.Submission) {
	sort.SliceStable(submissions, func(i, j int) bool {
		if submissions[i].Percentage != submissions[j].Percentage {
			return submissions[i].Percentage > submissions[j].Percentage
		}
		if submissions[i].Score != submissions[j].Score {
			return submissions[i].Score > submissions[j].Score
		}
		return submissions[i].SubmittedAt.Before(submissions[j].SubmittedAt)
	})
}

// LeaderboardService aggregates submissions into ranked leaderboard views.
type LeaderboardService struct {
	submissions SubmissionRepository
	now         func() time.Time
}

func NewLeaderboardService(submissions SubmissionRepository) *LeaderboardService {
	return &LeaderboardService{submissions: submissions, now: time.Now}
}

// Global returns the cross-quiz leaderboard snapshot.
func (s *LeaderboardService) Global(ctx context.Context) (domain.Leaderboard, error) {
	submissions, err := s.submissions.ListAll(ctx)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	SortSubmissions(submissions)

	entries := make([]domain.LeaderboardEntry, len(submissions))
	for i, submission := range submissions {
		completion := 0
		if !submission.StartedAt.IsZero() && submission.SubmittedAt.After(submission.StartedAt) {
			completion = int(submission.SubmittedAt.Sub(submission.StartedAt).Seconds())
		}
		entries[i] = domain.LeaderboardEntry{
			TeamName:       submission.TeamName,
			Score:          submission.Score,
			Percentage:     submission.Percentage,
			TotalQuestions: len(submission.Answers),
			QuizTitle:      submission.QuizTitle,
			SubmittedAt:    submission.SubmittedAt,
			CompletionTime: completion,
		}
	}
	return domain.Leaderboard{Entries: entries, UpdatedAt: s.now()}, nil
}

// LeaderboardHub fans leaderboard snapshots out to websocket subscribers.
type LeaderboardHub struct {
	mu          sync.Mutex
	subscribers map[chan domain.Leaderboard]struct{}
}

func NewLeaderboardHub() *LeaderboardHub {
	return &LeaderboardHub{subscribers: make(map[chan domain.Leaderboard]struct{})}
}

// Subscribe returns a channel receiving leaderboard updates. The caller must
// invoke the returned cancel function to avoid leaks.
func (h *LeaderboardHub) Subscribe() (<-chan domain.Leaderboard, func()) {
	ch := make(chan domain.Leaderboard, 8)

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Broadcast delivers a snapshot to every subscriber. Slow subscribers have
// their oldest buffered update dropped rather than blocking the sender.
func (h *LeaderboardHub) Broadcast(lb domain.Leaderboard) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		select {
		case ch <- lb:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
}
