// Package jobs holds the background work scheduled next to the API.
package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// LeaderboardRefresher recomputes cached leaderboards.
type LeaderboardRefresher interface {
	RefreshAllLeaderboards(ctx context.Context) (int, error)
}

const refreshTimeout = 2 * time.Minute

// Scheduler runs the periodic leaderboard refresh.
type Scheduler struct {
	cron      *cron.Cron
	refresher LeaderboardRefresher
}

// NewScheduler registers the refresh job under schedule, a cron expression or
// descriptor such as "@every 10m".
func NewScheduler(schedule string, refresher LeaderboardRefresher) (*Scheduler, error) {
	s := &Scheduler{
		cron:      cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		refresher: refresher,
	}
	if _, err := s.cron.AddFunc(schedule, s.RefreshLeaderboards); err != nil {
		return nil, fmt.Errorf("schedule leaderboard refresh %q: %w", schedule, err)
	}
	return s, nil
}

// RefreshLeaderboards runs one refresh pass.
func (s *Scheduler) RefreshLeaderboards() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	n, err := s.refresher.RefreshAllLeaderboards(ctx)
	if err != nil {
		log.Printf("Leaderboard refresh failed after %d quizzes: %v", n, err)
		return
	}
	log.Printf("Refreshed leaderboards for %d quizzes", n)
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("Leaderboard refresh job scheduled")
}

// Stop halts scheduling and waits for a running refresh to finish.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}
