package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-center-api/internal/dto"
	"github.com/noah-isme/coaching-center-api/internal/models"
	"github.com/noah-isme/coaching-center-api/internal/scheduling"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
)

type substitutionRepository interface {
	ListCurrent(ctx context.Context, today time.Time) ([]models.SubstitutionDetail, error)
	FindByID(ctx context.Context, id string) (*models.SubstitutionDetail, error)
	HasOverlap(ctx context.Context, batchID string, start, end time.Time, excludeID string) (bool, error)
	Create(ctx context.Context, sub *models.FacultySubstitution) error
	Update(ctx context.Context, sub *models.FacultySubstitution) error
	Delete(ctx context.Context, id string) (bool, error)
}

type substitutionBatchRepository interface {
	FindByID(ctx context.Context, id string) (*models.BatchDetail, error)
	UpdateFaculty(ctx context.Context, batchID, facultyID string) error
	Merge(ctx context.Context, sourceID, targetID string) (int64, error)
}

// SubstitutionService owns temporary substitutions, permanent reassignment
// and batch merges.
type SubstitutionService struct {
	repo      substitutionRepository
	batches   substitutionBatchRepository
	faculty   facultyFinder
	guard     *ScheduleGuard
	cache     *CacheService
	activity  activityRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubstitutionService constructs a SubstitutionService.
func NewSubstitutionService(repo substitutionRepository, batches substitutionBatchRepository, faculty facultyFinder, guard *ScheduleGuard, cache *CacheService, activity activityRecorder, validate *validator.Validate, logger *zap.Logger) *SubstitutionService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubstitutionService{
		repo:      repo,
		batches:   batches,
		faculty:   faculty,
		guard:     guard,
		cache:     cache,
		activity:  activityOrNoop(activity),
		validator: validate,
		logger:    logger,
	}
}

// ListCurrent returns substitutions that are running or have not started yet.
func (s *SubstitutionService) ListCurrent(ctx context.Context) ([]models.SubstitutionDetail, error) {
	subs, err := s.repo.ListCurrent(ctx, s.guard.Today())
	if err != nil {
		return nil, internalError(err, "failed to list substitutions")
	}
	if subs == nil {
		subs = []models.SubstitutionDetail{}
	}
	return subs, nil
}

// Create schedules a temporary substitute. The batch row itself is never changed.
func (s *SubstitutionService) Create(ctx context.Context, req dto.CreateSubstitutionRequest, actorID string) (*models.SubstitutionDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid substitution payload")
	}
	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	batch, err := s.findBatch(ctx, req.BatchID)
	if err != nil {
		return nil, err
	}
	original := batch.OwnerID()
	if original == "" {
		return nil, invalid("batch has no assigned faculty to substitute")
	}
	if original == req.SubstituteFacultyID {
		return nil, invalid("cannot assign a faculty as their own substitute")
	}
	if err := s.checkSubstitute(ctx, "substitution_create", batch.Batch, req.SubstituteFacultyID, start, end, ""); err != nil {
		return nil, err
	}
	if err := s.checkBatchOverlap(ctx, batch.ID, start, end, ""); err != nil {
		return nil, err
	}

	sub := &models.FacultySubstitution{
		ID:                  uuid.NewString(),
		BatchID:             batch.ID,
		OriginalFacultyID:   original,
		SubstituteFacultyID: req.SubstituteFacultyID,
		StartDate:           start,
		EndDate:             end,
		Notes:               normalizeOptional(req.Notes),
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, persistError(err, "failed to create substitution")
	}
	s.afterWrite(ctx, "created", "temporary substitution for batch "+batch.Name, actorID)
	return s.find(ctx, sub.ID)
}

// Update changes the substitute, dates or notes. Availability and conflicts
// are re-validated only when the substitute changes.
func (s *SubstitutionService) Update(ctx context.Context, id string, req dto.UpdateSubstitutionRequest, actorID string) (*models.SubstitutionDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid substitution payload")
	}
	current, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := current.FacultySubstitution
	if req.SubstituteFacultyID != "" {
		updated.SubstituteFacultyID = req.SubstituteFacultyID
	}
	startRaw, endRaw := scheduling.FormatDate(current.StartDate), scheduling.FormatDate(current.EndDate)
	if req.StartDate != "" {
		startRaw = req.StartDate
	}
	if req.EndDate != "" {
		endRaw = req.EndDate
	}
	if updated.StartDate, updated.EndDate, err = parseDateRange(startRaw, endRaw); err != nil {
		return nil, err
	}
	if req.Notes != nil {
		updated.Notes = normalizeOptional(req.Notes)
	}

	if updated.SubstituteFacultyID != current.SubstituteFacultyID {
		batch, err := s.findBatch(ctx, current.BatchID)
		if err != nil {
			return nil, err
		}
		if batch.OwnerID() == updated.SubstituteFacultyID {
			return nil, invalid("cannot assign a faculty as their own substitute")
		}
		if err := s.checkSubstitute(ctx, "substitution_update", batch.Batch, updated.SubstituteFacultyID, updated.StartDate, updated.EndDate, id); err != nil {
			return nil, err
		}
	}
	if !updated.StartDate.Equal(current.StartDate) || !updated.EndDate.Equal(current.EndDate) {
		if err := s.checkBatchOverlap(ctx, current.BatchID, updated.StartDate, updated.EndDate, id); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "substitution record not found")
		}
		return nil, persistError(err, "failed to update substitution")
	}
	s.afterWrite(ctx, "updated", "substitution for batch "+current.BatchName, actorID)
	return s.find(ctx, id)
}

// Cancel deletes a substitution; the batch reverts to its owner for those dates.
func (s *SubstitutionService) Cancel(ctx context.Context, id, actorID string) error {
	current, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return internalError(err, "failed to cancel substitution")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "substitution record not found")
	}
	s.afterWrite(ctx, "deleted", "substitution for batch "+current.BatchName, actorID)
	return nil
}

// Assign permanently moves a batch to another faculty after the usual checks.
func (s *SubstitutionService) Assign(ctx context.Context, req dto.AssignFacultyRequest, actorID string) (*models.BatchDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid assignment payload")
	}
	batch, err := s.findBatch(ctx, req.BatchID)
	if err != nil {
		return nil, err
	}
	if batch.OwnerID() == req.FacultyID {
		return nil, invalid("this faculty is already assigned to the batch")
	}
	if err := s.ensureFaculty(ctx, req.FacultyID); err != nil {
		return nil, err
	}
	if err := s.guard.Check(ctx, ScheduleCheck{
		Operation:      "batch_assign",
		FacultyID:      req.FacultyID,
		Schedule:       scheduling.BatchSchedule(batch.Batch),
		ExcludeBatchID: batch.ID,
	}); err != nil {
		return nil, err
	}
	if err := s.batches.UpdateFaculty(ctx, batch.ID, req.FacultyID); err != nil {
		return nil, persistError(err, "failed to reassign batch")
	}
	s.afterWrite(ctx, "updated", "permanently reassigned faculty for batch "+batch.Name, actorID)
	return s.findBatch(ctx, batch.ID)
}

// Merge moves the source batch's students into the target and deletes the source.
func (s *SubstitutionService) Merge(ctx context.Context, req dto.MergeBatchesRequest, actorID string) (*dto.MergeBatchesResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid merge payload")
	}
	if req.SourceBatchID == req.TargetBatchID {
		return nil, invalid("cannot merge a batch into itself")
	}
	source, err := s.findBatch(ctx, req.SourceBatchID)
	if err != nil {
		return nil, err
	}
	target, err := s.findBatch(ctx, req.TargetBatchID)
	if err != nil {
		return nil, err
	}
	moved, err := s.batches.Merge(ctx, source.ID, target.ID)
	if err != nil {
		return nil, persistError(err, "failed to merge batches")
	}
	s.afterWrite(ctx, "merged", "batch "+source.Name+" into "+target.Name, actorID)
	return &dto.MergeBatchesResponse{SourceBatchID: source.ID, TargetBatchID: target.ID, MovedStudents: moved}, nil
}

func (s *SubstitutionService) checkSubstitute(ctx context.Context, operation string, batch models.Batch, substituteID string, start, end time.Time, excludeSubstitutionID string) error {
	if err := s.ensureFaculty(ctx, substituteID); err != nil {
		return err
	}
	schedule := scheduling.BatchSchedule(batch)
	schedule.StartDate, schedule.EndDate = start, end
	return s.guard.Check(ctx, ScheduleCheck{
		Operation:             operation,
		FacultyID:             substituteID,
		Schedule:              schedule,
		ExcludeSubstitutionID: excludeSubstitutionID,
	})
}

func (s *SubstitutionService) checkBatchOverlap(ctx context.Context, batchID string, start, end time.Time, excludeID string) error {
	overlap, err := s.repo.HasOverlap(ctx, batchID, start, end, excludeID)
	if err != nil {
		return internalError(err, "failed to check substitution overlap")
	}
	if overlap {
		return appErrors.Clone(appErrors.ErrSchedulingConflict, "this batch already has an overlapping substitution scheduled")
	}
	return nil
}

func (s *SubstitutionService) ensureFaculty(ctx context.Context, id string) error {
	if _, err := s.faculty.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
		}
		return internalError(err, "failed to load faculty")
	}
	return nil
}

func (s *SubstitutionService) find(ctx context.Context, id string) (*models.SubstitutionDetail, error) {
	sub, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "substitution record not found")
		}
		return nil, internalError(err, "failed to load substitution")
	}
	return sub, nil
}

func (s *SubstitutionService) findBatch(ctx context.Context, id string) (*models.BatchDetail, error) {
	batch, err := s.batches.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, internalError(err, "failed to load batch")
	}
	return batch, nil
}

func (s *SubstitutionService) afterWrite(ctx context.Context, action, item, actorID string) {
	invalidateFreeSlots(ctx, s.cache)
	s.activity.Record(action, item, ActivitySubstitution, actorID)
}
