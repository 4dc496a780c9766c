// Package ledger enforces one Best in Show vote per voter and reports counts.
package ledger

import (
	"context"
	"errors"
	"log"
	"time"

	"carshow-backend/internal/model"
	"carshow-backend/internal/store"
)

// Outcome tags the result of CastVote.
type Outcome string

const (
	Created      Outcome = "created"
	AlreadyVoted Outcome = "already_voted"
	Failed       Outcome = "failed"
)

// AlreadyVotedMessage is shown to voters who try to vote a second time.
const AlreadyVotedMessage = "You have already voted for Best in Show. Each voter can only vote once."

// Result is the outcome of a vote attempt. VoteID is set for Created and,
// when it could be looked up, for AlreadyVoted.
type Result struct {
	Outcome Outcome
	VoteID  int64
	Reason  string
}

// Success reports whether a new vote was recorded.
func (r Result) Success() bool {
	return r.Outcome == Created
}

// Standing is a ranked row of the Best in Show results.
type Standing struct {
	Rank int `json:"rank"`
	store.Tally
}

// Ledger records votes against the store.
type Ledger struct {
	store store.Store
	now   func() time.Time
}

// New creates a Ledger.
func New(s store.Store) *Ledger {
	return &Ledger{store: s, now: time.Now}
}

// CurrentVote returns the voter's vote, or nil if they have not voted.
// Store errors are logged and reported as "not voted".
func (l *Ledger) CurrentVote(ctx context.Context, voter string) *model.VoteWithVehicle {
	vote, err := l.store.FindVoteByVoter(ctx, voter)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("Error fetching current vote for voter %s: %v", shortVoter(voter), err)
		}
		return nil
	}
	return vote
}

// CastVote records the voter's Best in Show vote for vehicleID. The unique index
// on the voter is what guarantees a single vote; the lookup before the insert
// only saves a round trip for repeat voters.
func (l *Ledger) CastVote(ctx context.Context, vehicleID int64, voter string) Result {
	if voter == "" {
		return Result{Outcome: Failed, Reason: "voter identity is required"}
	}

	existing, err := l.store.FindVoteByVoter(ctx, voter)
	switch {
	case err == nil:
		log.Printf("Voter %s has already voted (vote %d)", shortVoter(voter), existing.ID)
		return Result{Outcome: AlreadyVoted, VoteID: existing.ID, Reason: AlreadyVotedMessage}
	case !errors.Is(err, store.ErrNotFound):
		log.Printf("Error checking existing vote for voter %s: %v", shortVoter(voter), err)
	}

	now := l.now().UTC()
	vote := model.Vote{
		VehicleID:    vehicleID,
		VoterIP:      voter,
		VoterSession: voter,
		CategoryID:   model.BestInShowCategoryID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := l.store.InsertVote(ctx, &vote); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			log.Printf("Duplicate vote from voter %s rejected by constraint", shortVoter(voter))
			res := Result{Outcome: AlreadyVoted, Reason: AlreadyVotedMessage}
			if winner, ferr := l.store.FindVoteByVoter(ctx, voter); ferr == nil {
				res.VoteID = winner.ID
			}
			return res
		}
		log.Printf("Error creating vote for vehicle %d: %v", vehicleID, err)
		return Result{Outcome: Failed, Reason: "failed to record vote"}
	}

	log.Printf("Vote %d created for vehicle %d", vote.ID, vehicleID)
	return Result{Outcome: Created, VoteID: vote.ID}
}

// VoteCount returns the Best in Show votes for a vehicle, or 0 on error.
func (l *Ledger) VoteCount(ctx context.Context, vehicleID int64) int64 {
	n, err := l.store.CountVotes(ctx, vehicleID, model.BestInShowCategoryID)
	if err != nil {
		log.Printf("Error getting vote count for vehicle %d: %v", vehicleID, err)
		return 0
	}
	return n
}

// AllVotes lists every Best in Show vote with its vehicle, or none on error.
func (l *Ledger) AllVotes(ctx context.Context) []model.VoteWithVehicle {
	votes, err := l.store.ListVotes(ctx, model.BestInShowCategoryID)
	if err != nil {
		log.Printf("Error fetching votes: %v", err)
		return []model.VoteWithVehicle{}
	}
	return votes
}

// Standings ranks vehicles by votes. Ties share a rank and the next rank skips.
func (l *Ledger) Standings(ctx context.Context) ([]Standing, error) {
	tallies, err := l.store.TallyVotes(ctx, model.BestInShowCategoryID)
	if err != nil {
		return nil, err
	}
	return rank(tallies), nil
}

func rank(tallies []store.Tally) []Standing {
	out := make([]Standing, 0, len(tallies))
	for i, t := range tallies {
		r := i + 1
		if i > 0 && t.Votes == tallies[i-1].Votes {
			r = out[i-1].Rank
		}
		out = append(out, Standing{Rank: r, Tally: t})
	}
	return out
}

func shortVoter(voter string) string {
	if len(voter) <= 10 {
		return voter
	}
	return voter[:10] + "..."
}
