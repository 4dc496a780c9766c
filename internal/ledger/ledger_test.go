package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carshow-backend/internal/model"
	"carshow-backend/internal/store"
)

// memStore models the votes table with its unique voter index.
type memStore struct {
	store.Store

	mu       sync.Mutex
	votes    []model.Vote
	findErr  error
	insertFn func(v *model.Vote) error
	countErr error
}

func (m *memStore) FindVoteByVoter(_ context.Context, voter string) (*model.VoteWithVehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, v := range m.votes {
		if v.VoterSession == voter {
			return &model.VoteWithVehicle{Vote: v}, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) InsertVote(_ context.Context, v *model.Vote) error {
	if m.insertFn != nil {
		return m.insertFn(v)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.votes {
		if existing.VoterSession == v.VoterSession {
			return store.ErrDuplicate
		}
	}
	v.ID = int64(len(m.votes) + 1)
	m.votes = append(m.votes, *v)
	return nil
}

func (m *memStore) CountVotes(_ context.Context, vehicleID, categoryID int64) (int64, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, v := range m.votes {
		if v.VehicleID == vehicleID && v.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

func (m *memStore) ListVotes(context.Context, int64) ([]model.VoteWithVehicle, error) {
	if m.countErr != nil {
		return nil, m.countErr
	}
	return nil, nil
}

func (m *memStore) TallyVotes(context.Context, int64) ([]store.Tally, error) {
	return []store.Tally{
		{VehicleID: 1, Votes: 5},
		{VehicleID: 2, Votes: 3},
		{VehicleID: 3, Votes: 3},
		{VehicleID: 4, Votes: 1},
	}, nil
}

func TestCastVote_SecondVoteFromSameVoter(t *testing.T) {
	s := &memStore{}
	l := New(s)
	ctx := context.Background()

	first := l.CastVote(ctx, 42, "abc123")
	require.Equal(t, Created, first.Outcome)
	assert.True(t, first.Success())

	second := l.CastVote(ctx, 42, "abc123")
	assert.Equal(t, AlreadyVoted, second.Outcome)
	assert.Equal(t, first.VoteID, second.VoteID)
	assert.Equal(t, AlreadyVotedMessage, second.Reason)

	other := l.CastVote(ctx, 7, "abc123")
	assert.Equal(t, AlreadyVoted, other.Outcome)

	assert.Len(t, s.votes, 1)
	assert.Equal(t, model.BestInShowCategoryID, s.votes[0].CategoryID)
	assert.Equal(t, "abc123", s.votes[0].VoterIP)
	assert.Equal(t, int64(1), l.VoteCount(ctx, 42))
	assert.Equal(t, int64(0), l.VoteCount(ctx, 7))
}

func TestCastVote_ConcurrentVotesFromOneVoter(t *testing.T) {
	s := &memStore{}
	l := New(s)

	const attempts = 20
	results := make([]Result, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = l.CastVote(context.Background(), int64(i%3+1), "same-browser")
		}(i)
	}
	wg.Wait()

	created := 0
	var voteID int64
	for _, r := range results {
		if r.Outcome == Created {
			created++
			voteID = r.VoteID
		}
	}
	require.Equal(t, 1, created)
	for _, r := range results {
		assert.Equal(t, voteID, r.VoteID)
		assert.NotEqual(t, Failed, r.Outcome)
	}
	assert.Len(t, s.votes, 1)
}

func TestCastVote_LostRaceReportsWinner(t *testing.T) {
	s := &memStore{}
	s.insertFn = func(v *model.Vote) error {
		// Another request wins between the lookup and the insert.
		s.mu.Lock()
		s.votes = append(s.votes, model.Vote{ID: 99, VehicleID: 5, VoterSession: v.VoterSession})
		s.mu.Unlock()
		return store.ErrDuplicate
	}
	l := New(s)

	res := l.CastVote(context.Background(), 42, "racer")
	assert.Equal(t, AlreadyVoted, res.Outcome)
	assert.Equal(t, int64(99), res.VoteID)
}

func TestCastVote_Failures(t *testing.T) {
	t.Run("empty voter", func(t *testing.T) {
		res := New(&memStore{}).CastVote(context.Background(), 1, "")
		assert.Equal(t, Failed, res.Outcome)
	})

	t.Run("insert error", func(t *testing.T) {
		s := &memStore{insertFn: func(*model.Vote) error { return errors.New("disk full") }}
		res := New(s).CastVote(context.Background(), 1, "voter")
		assert.Equal(t, Failed, res.Outcome)
		assert.Equal(t, "failed to record vote", res.Reason)
		assert.False(t, res.Success())
	})

	t.Run("lookup error still tries the insert", func(t *testing.T) {
		s := &memStore{findErr: errors.New("timeout")}
		res := New(s).CastVote(context.Background(), 1, "voter")
		assert.Equal(t, Created, res.Outcome)
	})
}

func TestReadPathsFailOpen(t *testing.T) {
	s := &memStore{findErr: errors.New("timeout"), countErr: errors.New("timeout")}
	l := New(s)
	ctx := context.Background()

	assert.Nil(t, l.CurrentVote(ctx, "voter"))
	assert.Equal(t, int64(0), l.VoteCount(ctx, 1))
	assert.NotNil(t, l.AllVotes(ctx))
	assert.Empty(t, l.AllVotes(ctx))
}

func TestCurrentVote(t *testing.T) {
	s := &memStore{}
	l := New(s)
	ctx := context.Background()

	assert.Nil(t, l.CurrentVote(ctx, "voter"))
	res := l.CastVote(ctx, 3, "voter")
	require.True(t, res.Success())

	vote := l.CurrentVote(ctx, "voter")
	require.NotNil(t, vote)
	assert.Equal(t, res.VoteID, vote.ID)
	assert.Equal(t, int64(3), vote.VehicleID)
}

func TestStandings_TiesShareRank(t *testing.T) {
	standings, err := New(&memStore{}).Standings(context.Background())
	require.NoError(t, err)

	ranks := make([]int, 0, len(standings))
	for _, s := range standings {
		ranks = append(ranks, s.Rank)
	}
	assert.Equal(t, []int{1, 2, 2, 4}, ranks)
}
