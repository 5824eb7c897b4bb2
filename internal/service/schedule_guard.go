package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/coaching-center-api/internal/models"
	"github.com/noah-isme/coaching-center-api/internal/scheduling"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
)

type availabilityReader interface {
	ListAvailability(ctx context.Context, facultyID string) ([]models.AvailabilityWindow, error)
}

type batchScheduleReader interface {
	ListSchedules(ctx context.Context, filter models.BatchFilter) ([]models.Batch, error)
}

type substituteReader interface {
	ListBySubstitute(ctx context.Context, facultyID string, today time.Time) ([]models.SubstitutionDetail, error)
}

// ScheduleCheck describes a proposed assignment of a faculty to a schedule.
type ScheduleCheck struct {
	Operation             string
	FacultyID             string
	Schedule              scheduling.Schedule
	ExcludeBatchID        string
	ExcludeSubstitutionID string
	SkipAvailability      bool
}

// ScheduleGuard runs the availability and conflict checks that gate every
// write assigning a faculty to teaching time.
type ScheduleGuard struct {
	availability  availabilityReader
	batches       batchScheduleReader
	substitutions substituteReader
	clock         scheduling.Clock
	metrics       *MetricsService
	logger        *zap.Logger
}

// NewScheduleGuard constructs a ScheduleGuard.
func NewScheduleGuard(availability availabilityReader, batches batchScheduleReader, substitutions substituteReader, clock scheduling.Clock, metrics *MetricsService, logger *zap.Logger) *ScheduleGuard {
	if clock == nil {
		clock = scheduling.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleGuard{
		availability:  availability,
		batches:       batches,
		substitutions: substitutions,
		clock:         clock,
		metrics:       metrics,
		logger:        logger,
	}
}

// Today returns the guard's notion of the current date.
func (g *ScheduleGuard) Today() time.Time {
	return scheduling.Today(g.clock)
}

// Check validates availability first, then conflicts against permanent
// batches and active substitutions. Nothing is written.
func (g *ScheduleGuard) Check(ctx context.Context, check ScheduleCheck) error {
	if check.FacultyID == "" {
		return nil
	}
	if !check.SkipAvailability {
		windows, err := g.availability.ListAvailability(ctx, check.FacultyID)
		if err != nil {
			return internalError(err, "failed to load faculty availability")
		}
		if err := scheduling.CheckAvailability(windows, check.Schedule.Days, check.Schedule.StartTime, check.Schedule.EndTime); err != nil {
			return g.reject(check, RejectionAvailability, err)
		}
	}

	commitments, err := g.commitments(ctx, check)
	if err != nil {
		return err
	}
	if err := scheduling.CheckConflict(check.Schedule, commitments); err != nil {
		return g.reject(check, RejectionConflict, err)
	}
	return nil
}

func (g *ScheduleGuard) commitments(ctx context.Context, check ScheduleCheck) ([]scheduling.Commitment, error) {
	today := g.Today()
	batches, err := g.batches.ListSchedules(ctx, models.BatchFilter{FacultyID: check.FacultyID, EndOnOrFrom: &today})
	if err != nil {
		return nil, internalError(err, "failed to load faculty batches")
	}
	subs, err := g.substitutions.ListBySubstitute(ctx, check.FacultyID, today)
	if err != nil {
		return nil, internalError(err, "failed to load faculty substitutions")
	}
	commitments := scheduling.PermanentCommitments(batches, check.ExcludeBatchID, today)
	return append(commitments, scheduling.SubstitutionCommitments(subs, check.ExcludeSubstitutionID, today)...), nil
}

func (g *ScheduleGuard) reject(check ScheduleCheck, reason string, err error) error {
	g.metrics.RecordSchedulingRejection(check.Operation, reason)
	g.logger.Debug("schedule rejected",
		zap.String("operation", check.Operation),
		zap.String("faculty_id", check.FacultyID),
		zap.String("reason", reason),
		zap.Error(err),
	)

	var violation *scheduling.AvailabilityViolation
	if errors.As(err, &violation) {
		return appErrors.Wrap(err, appErrors.ErrAvailability.Code, appErrors.ErrAvailability.Status, violation.Error())
	}
	var conflict *scheduling.ConflictError
	if errors.As(err, &conflict) {
		return appErrors.Wrap(err, appErrors.ErrSchedulingConflict.Code, appErrors.ErrSchedulingConflict.Status, conflict.Error())
	}
	return internalError(err, "schedule check failed")
}

// CheckAvailabilityChange verifies that proposed windows still cover every
// batch the faculty teaches within the lookahead horizon.
func (g *ScheduleGuard) CheckAvailabilityChange(ctx context.Context, facultyID string, windows []models.AvailabilityWindow, lookaheadDays int) error {
	if lookaheadDays <= 0 {
		lookaheadDays = 30
	}
	today := g.Today()
	horizon := today.AddDate(0, 0, lookaheadDays)
	batches, err := g.batches.ListSchedules(ctx, models.BatchFilter{FacultyID: facultyID, EndOnOrFrom: &today, StartBefore: &horizon})
	if err != nil {
		return internalError(err, "failed to load faculty batches")
	}
	for _, batch := range batches {
		for _, day := range batch.DaysOfWeek {
			if err := scheduling.CheckAvailability(windows, []string{day}, batch.StartTime, batch.EndTime); err != nil {
				g.metrics.RecordSchedulingRejection("availability_update", RejectionAvailability)
				var violation *scheduling.AvailabilityViolation
				if errors.As(err, &violation) && violation.Missing {
					return appErrors.Clonef(appErrors.ErrSchedulingConflict, "faculty has batch %q on %s, but this day is being removed from availability", batch.Name, day)
				}
				return appErrors.Clonef(appErrors.ErrSchedulingConflict, "batch %q (%s on %s) falls outside the new availability", batch.Name, scheduling.NewInterval(batch.StartTime, batch.EndTime), day)
			}
		}
	}
	return nil
}
