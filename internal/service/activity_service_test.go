package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-center-api/internal/models"
)

type stubActivityRepo struct {
	mu      sync.Mutex
	created []models.Activity
	recent  []models.Activity
	err     error
}

func (s *stubActivityRepo) Create(ctx context.Context, activity *models.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, *activity)
	return nil
}

func (s *stubActivityRepo) ListRecent(ctx context.Context, limit int) ([]models.Activity, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.recent) > limit {
		return s.recent[:limit], nil
	}
	return s.recent, nil
}

func TestActivityServiceWritesInBackground(t *testing.T) {
	repo := &stubActivityRepo{}
	svc := NewActivityService(repo, nil, ActivityConfig{Workers: 1, RetryDelay: time.Millisecond})
	svc.Start(context.Background())

	svc.Record("created", "batch Math101", ActivityBatch, "admin-1")
	svc.Record("deleted", "student Ria", ActivityStudent, "")
	svc.Stop()

	repo.mu.Lock()
	defer repo.mu.Unlock()
	require.Len(t, repo.created, 2)
	byAction := map[string]models.Activity{}
	for _, a := range repo.created {
		byAction[a.Action] = a
	}
	require.NotNil(t, byAction["created"].UserID)
	assert.Equal(t, "admin-1", *byAction["created"].UserID)
	assert.Equal(t, ActivityBatch, byAction["created"].Type)
	assert.Nil(t, byAction["deleted"].UserID)
}

func TestActivityServiceRecordNeverFails(t *testing.T) {
	repo := &stubActivityRepo{}
	svc := NewActivityService(repo, nil, ActivityConfig{})

	// Not started: the queue refuses the job and Record only logs.
	svc.Record("created", "batch Math101", ActivityBatch, "admin-1")
	assert.Empty(t, repo.created)

	var nilSvc *ActivityService
	nilSvc.Record("created", "x", ActivityBatch, "")
	activityOrNoop(nil).Record("created", "x", ActivityBatch, "")
}

func TestActivityServiceList(t *testing.T) {
	repo := &stubActivityRepo{recent: []models.Activity{{ID: "1"}, {ID: "2"}, {ID: "3"}}}
	svc := NewActivityService(repo, nil, ActivityConfig{})

	items, err := svc.List(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	repo.err = errors.New("db down")
	_, err = svc.List(context.Background(), 2)
	require.Error(t, err)

	repo.err = nil
	repo.recent = nil
	items, err = svc.List(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, items)
}
