package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-center-api/internal/models"
	"github.com/noah-isme/coaching-center-api/pkg/jobs"
)

// Activity kinds written to the feed.
const (
	ActivityBatch        = "batch"
	ActivityFaculty      = "faculty"
	ActivityStudent      = "student"
	ActivitySubstitution = "substitution"
	ActivityAttendance   = "attendance"
	ActivityUser         = "user"
)

type activityRepository interface {
	Create(ctx context.Context, activity *models.Activity) error
	ListRecent(ctx context.Context, limit int) ([]models.Activity, error)
}

type activityRecorder interface {
	Record(action, item, kind, userID string)
}

type noopActivity struct{}

func (noopActivity) Record(string, string, string, string) {}

func activityOrNoop(recorder activityRecorder) activityRecorder {
	if recorder == nil {
		return noopActivity{}
	}
	return recorder
}

// ActivityConfig sizes the background writer.
type ActivityConfig struct {
	Workers    int
	Retries    int
	RetryDelay time.Duration
}

// ActivityService writes the activity feed on a background queue so that
// logging never delays or fails the request that triggered it.
type ActivityService struct {
	repo   activityRepository
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewActivityService constructs an ActivityService and its queue.
func NewActivityService(repo activityRepository, logger *zap.Logger, cfg ActivityConfig) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &ActivityService{repo: repo, logger: logger}
	svc.queue = jobs.NewQueue("activities", svc.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: 256,
		MaxRetries: cfg.Retries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return svc
}

// Start launches the background workers.
func (s *ActivityService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains workers.
func (s *ActivityService) Stop() {
	s.queue.Stop()
}

// Record enqueues an activity. Failures are logged and swallowed.
func (s *ActivityService) Record(action, item, kind, userID string) {
	if s == nil {
		return
	}
	activity := models.Activity{
		ID:        uuid.NewString(),
		Action:    action,
		Item:      item,
		Type:      kind,
		CreatedAt: time.Now().UTC(),
	}
	if userID != "" {
		activity.UserID = &userID
	}
	if err := s.queue.Enqueue(jobs.Job{ID: activity.ID, Type: kind, Payload: activity}); err != nil {
		s.logger.Warn("failed to enqueue activity", zap.String("action", action), zap.String("item", item), zap.Error(err))
	}
}

// List returns the newest activities.
func (s *ActivityService) List(ctx context.Context, limit int) ([]models.Activity, error) {
	activities, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, internalError(err, "failed to list activities")
	}
	if activities == nil {
		activities = []models.Activity{}
	}
	return activities, nil
}

func (s *ActivityService) handle(ctx context.Context, job jobs.Job) error {
	activity, ok := job.Payload.(models.Activity)
	if !ok {
		return fmt.Errorf("unexpected activity payload %T", job.Payload)
	}
	return s.repo.Create(ctx, &activity)
}
