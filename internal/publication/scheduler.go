// Package publication decides when voting is open and when results are public.
package publication

import (
	"context"
	"errors"
	"log"
	"time"

	"carshow-backend/internal/model"
	"carshow-backend/internal/store"
)

// ResultsLiveMessage is pushed to subscribers when results become public.
const ResultsLiveMessage = "Best in Show results are live!"

// Status describes whether results are visible.
type Status struct {
	ArePublished bool       `json:"are_published"`
	PublishedAt  *time.Time `json:"published_at"`
	ScheduledFor *time.Time `json:"scheduled_for"`
	IsScheduled  bool       `json:"is_scheduled"`
}

// VotingState is the state of the voting window.
type VotingState string

const (
	VotingClosed   VotingState = "closed"
	VotingUpcoming VotingState = "upcoming"
	VotingOpen     VotingState = "open"
	VotingEnded    VotingState = "ended"
)

// Notifier is told when results go public.
type Notifier interface {
	Announce(message string)
}

// Scheduler evaluates the voting schedule row. It keeps no state between calls.
type Scheduler struct {
	store    store.Store
	notifier Notifier
	now      func() time.Time
}

// NewScheduler creates a Scheduler. notifier may be nil.
func NewScheduler(s store.Store, notifier Notifier) *Scheduler {
	return &Scheduler{store: s, notifier: notifier, now: time.Now}
}

// Evaluate computes the publication status of sched at now. Results count as
// published once the admin flag is set or the publish time has been reached,
// whichever comes first.
func Evaluate(sched *model.VotingSchedule, now time.Time) Status {
	if sched == nil {
		return Status{}
	}
	at := sched.ResultsPublishTime
	reached := at != nil && !now.Before(*at)

	st := Status{ArePublished: sched.ResultsPublished || reached}
	if at != nil {
		if sched.ResultsPublished {
			st.PublishedAt = at
		} else {
			st.ScheduledFor = at
			st.IsScheduled = true
		}
	}
	return st
}

// VotingStateAt computes the voting window state of sched at now.
func VotingStateAt(sched *model.VotingSchedule, now time.Time) VotingState {
	switch {
	case sched == nil || !sched.VotingOpen:
		return VotingClosed
	case sched.VotingStartTime != nil && now.Before(*sched.VotingStartTime):
		return VotingUpcoming
	case sched.VotingEndTime != nil && now.After(*sched.VotingEndTime):
		return VotingEnded
	default:
		return VotingOpen
	}
}

// Status loads the schedule and evaluates it. A missing row or a store error
// reads as "not published".
func (s *Scheduler) Status(ctx context.Context) Status {
	sched, err := s.load(ctx)
	if err != nil {
		return Status{}
	}
	return Evaluate(sched, s.now())
}

// VotingState loads the schedule and reports the voting window state. A store
// error reads as closed.
func (s *Scheduler) VotingState(ctx context.Context) VotingState {
	sched, err := s.load(ctx)
	if err != nil {
		return VotingClosed
	}
	return VotingStateAt(sched, s.now())
}

// Schedule returns the raw schedule row.
func (s *Scheduler) Schedule(ctx context.Context) (*model.VotingSchedule, error) {
	return s.store.GetSchedule(ctx)
}

// CheckAndUpdate persists the published flag once the publish time has passed.
// Running it again, or after results are already published, changes nothing.
// It reports whether this call published the results.
func (s *Scheduler) CheckAndUpdate(ctx context.Context) bool {
	promoted, err := s.store.PromoteScheduledPublication(ctx, s.now())
	if err != nil {
		log.Printf("Error updating scheduled publication: %v", err)
		return false
	}
	if promoted {
		log.Println("Scheduled publication time reached; results are now published")
		s.announce()
	}
	return promoted
}

// Update applies an admin change to the schedule.
func (s *Scheduler) Update(ctx context.Context, upd store.ScheduleUpdate) (*model.VotingSchedule, error) {
	before, err := s.store.GetSchedule(ctx)
	if err != nil {
		return nil, err
	}
	after, err := s.store.UpdateSchedule(ctx, upd, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if !before.ResultsPublished && after.ResultsPublished {
		log.Println("Results published by admin")
		s.announce()
	}
	return after, nil
}

func (s *Scheduler) load(ctx context.Context) (*model.VotingSchedule, error) {
	sched, err := s.store.GetSchedule(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("Error loading voting schedule: %v", err)
		}
		return nil, err
	}
	return sched, nil
}

func (s *Scheduler) announce() {
	if s.notifier != nil {
		s.notifier.Announce(ResultsLiveMessage)
	}
}
