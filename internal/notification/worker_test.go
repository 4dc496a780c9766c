package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"carshow-backend/internal/store"
)

type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

func newTestStore(t *testing.T) (store.Store, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return store.NewGormStore(gormDB), mock
}

func response(status int) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(bytes.NewBufferString(""))}
}

func TestWorkerPool_Announce(t *testing.T) {
	s, _ := newTestStore(t)
	wp := NewWorkerPool(1, s, &webpush.Options{})

	wp.Announce("hello")

	select {
	case job := <-wp.Jobs():
		assert.Equal(t, "hello", job)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for job to be queued")
	}
}

func TestWorkerPool_AnnounceDropsWhenFull(t *testing.T) {
	s, _ := newTestStore(t)
	wp := NewWorkerPool(1, s, &webpush.Options{})

	wp.Announce("first")
	wp.Announce("second")

	assert.Len(t, wp.Jobs(), 1)
	assert.Equal(t, "first", <-wp.Jobs())
}

func TestWorkerPool_WorkerLogic(t *testing.T) {
	s, mock := newTestStore(t)
	wp := NewWorkerPool(1, s, &webpush.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	t.Run("sends the announcement to every subscription", func(t *testing.T) {
		var wg sync.WaitGroup
		wg.Add(2)

		var mu sync.Mutex
		var endpoints []string
		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				var p Payload
				assert.NoError(t, json.Unmarshal(payload, &p))
				assert.Equal(t, "Best in Show results are live!", p.Body)
				mu.Lock()
				endpoints = append(endpoints, sub.Endpoint)
				mu.Unlock()
				wg.Done()
				return response(http.StatusCreated), nil
			},
		}

		mock.ExpectQuery(`SELECT \* FROM "push_subscriptions"`).
			WillReturnRows(sqlmock.NewRows([]string{"endpoint", "p256dh", "auth", "created_at"}).
				AddRow("https://example.com/a", "k1", "a1", time.Now()).
				AddRow("https://example.com/b", "k2", "a2", time.Now()))

		wp.Announce("Best in Show results are live!")
		wg.Wait()
		assert.ElementsMatch(t, []string{"https://example.com/a", "https://example.com/b"}, endpoints)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("deletes expired subscription", func(t *testing.T) {
		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				return response(http.StatusGone), nil
			},
		}

		mock.ExpectQuery(`SELECT \* FROM "push_subscriptions"`).
			WillReturnRows(sqlmock.NewRows([]string{"endpoint", "p256dh", "auth", "created_at"}).
				AddRow("https://example.com/expired", "k", "a", time.Now()))
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "push_subscriptions" WHERE "push_subscriptions"."endpoint" = \$1`).
			WithArgs("https://example.com/expired").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		wp.Announce("Best in Show results are live!")

		assert.Eventually(t, func() bool {
			return mock.ExpectationsWereMet() == nil
		}, time.Second, 10*time.Millisecond)
	})
}
