package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"carshow-backend/internal/model"
)

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// Any is a helper for sqlmock to match any argument.
type Any struct{}

// Match satisfies sqlmock.Argument interface
func (a Any) Match(v driver.Value) bool {
	return true
}

func TestGormStore_InsertVote(t *testing.T) {
	testCases := []struct {
		name    string
		dbErr   error
		wantErr error
	}{
		{name: "inserted"},
		{name: "unique violation", dbErr: &pgconn.PgError{Code: "23505"}, wantErr: ErrDuplicate},
		{name: "other failure", dbErr: errors.New("connection reset")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newTestDB(t)
			s := NewGormStore(db)

			mock.ExpectBegin()
			q := mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "votes"`)).
				WithArgs(int64(42), "abc123", "abc123", model.BestInShowCategoryID, Any{}, Any{})
			if tc.dbErr != nil {
				q.WillReturnError(tc.dbErr)
				mock.ExpectRollback()
			} else {
				q.WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
				mock.ExpectCommit()
			}

			now := time.Now()
			v := &model.Vote{VehicleID: 42, VoterIP: "abc123", VoterSession: "abc123",
				CategoryID: model.BestInShowCategoryID, CreatedAt: now, UpdatedAt: now}
			err := s.InsertVote(context.Background(), v)

			switch {
			case tc.dbErr == nil:
				require.NoError(t, err)
				assert.Equal(t, int64(7), v.ID)
			case tc.wantErr != nil:
				assert.ErrorIs(t, err, tc.wantErr)
			default:
				assert.Error(t, err)
				assert.NotErrorIs(t, err, ErrDuplicate)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGormStore_FindVoteByVoter(t *testing.T) {
	db, mock := newTestDB(t)
	s := NewGormStore(db)
	now := time.Now()
	cols := []string{"id", "vehicle_id", "voter_ip", "voter_session", "category_id", "created_at", "updated_at",
		"entry_number", "make", "model", "year", "full_name", "city", "state"}

	mock.ExpectQuery(`SELECT v\.id, .* FROM votes AS v LEFT JOIN vehicles AS vh ON v\.vehicle_id = vh\.id WHERE v\.voter_session = \$1 LIMIT \$2`).
		WithArgs("abc123", 1).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(5, 42, "abc123", "abc123", 25, now, now, 1234, "Ford", "Bronco", 1969, "Pat Driver", "Austin", "TX"))

	vote, err := s.FindVoteByVoter(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, int64(5), vote.ID)
	require.NotNil(t, vote.Vehicle)
	assert.Equal(t, 1234, vote.Vehicle.EntryNumber)
	assert.Equal(t, "Bronco", vote.Vehicle.Model)

	mock.ExpectQuery(`SELECT v\.id, .* FROM votes AS v`).
		WithArgs("nobody", 1).
		WillReturnRows(sqlmock.NewRows(cols))

	_, err = s.FindVoteByVoter(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_FindVoteByVoter_VehicleDeleted(t *testing.T) {
	db, mock := newTestDB(t)
	s := NewGormStore(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT v\.id, .* FROM votes AS v`).
		WithArgs("abc123", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "vehicle_id", "voter_ip", "voter_session", "category_id",
			"created_at", "updated_at", "entry_number", "make", "model", "year", "full_name", "city", "state"}).
			AddRow(5, 42, "abc123", "abc123", 25, now, now, nil, nil, nil, nil, nil, nil, nil))

	vote, err := s.FindVoteByVoter(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Nil(t, vote.Vehicle)
}

func TestGormStore_PromoteScheduledPublication(t *testing.T) {
	testCases := []struct {
		name     string
		affected int64
		want     bool
	}{
		{"publish time passed", 1, true},
		{"not yet, or already published", 0, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newTestDB(t)
			s := NewGormStore(db)
			now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

			mock.ExpectBegin()
			mock.ExpectExec(regexp.QuoteMeta(`UPDATE "voting_schedule" SET "results_published"=$1,"updated_at"=$2 WHERE id = $3 AND results_published = $4 AND results_publish_time IS NOT NULL AND results_publish_time <= $5`)).
				WithArgs(true, Any{}, model.ScheduleID, false, now).
				WillReturnResult(sqlmock.NewResult(0, tc.affected))
			mock.ExpectCommit()

			promoted, err := s.PromoteScheduledPublication(context.Background(), now)
			require.NoError(t, err)
			assert.Equal(t, tc.want, promoted)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGormStore_AttachPhotos_Missing(t *testing.T) {
	db, mock := newTestDB(t)
	s := NewGormStore(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "vehicles" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := s.AttachPhotos(context.Background(), 99, []string{"https://blob.test/a.png"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_CountCheckedIn(t *testing.T) {
	db, mock := newTestDB(t)
	s := NewGormStore(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "vehicles" WHERE checked_in = $1`)).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(50))

	n, err := s.CountCheckedIn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(50), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	testCases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("boom"), false},
		{&pgconn.PgError{Code: "23505"}, true},
		{&pgconn.PgError{Code: "23503"}, false},
		{fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "23505"}), true},
		{gorm.ErrDuplicatedKey, true},
		{ErrDuplicate, true},
		{errors.New("UNIQUE constraint failed: votes.voter_session"), true},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, IsUniqueViolation(tc.err), "%v", tc.err)
	}
}
