package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-center-api/internal/dto"
	"github.com/noah-isme/coaching-center-api/internal/models"
	"github.com/noah-isme/coaching-center-api/internal/scheduling"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
)

type batchRepository interface {
	List(ctx context.Context, filter models.BatchFilter) ([]models.BatchDetail, error)
	FindByID(ctx context.Context, id string) (*models.BatchDetail, error)
	Create(ctx context.Context, batch *models.Batch, studentIDs []string) error
	Update(ctx context.Context, batch *models.Batch, studentIDs []string) error
	Delete(ctx context.Context, id string) error
	ListStudents(ctx context.Context, batchID string) ([]models.Student, error)
	CountActiveStudents(ctx context.Context, today time.Time) (int, error)
}

type facultyFinder interface {
	FindByID(ctx context.Context, id string) (*models.Faculty, error)
}

type currentSubstitutionReader interface {
	ListCurrent(ctx context.Context, today time.Time) ([]models.SubstitutionDetail, error)
}

// BatchListOptions narrows the batch listing. FacultyID matches the acting
// faculty for today, so substitutes see the batches they currently cover.
type BatchListOptions struct {
	FacultyID string
	Status    models.BatchStatus
}

// BatchService manages batches and keeps every schedule write behind the guard.
type BatchService struct {
	repo          batchRepository
	faculty       facultyFinder
	substitutions currentSubstitutionReader
	guard         *ScheduleGuard
	cache         *CacheService
	activity      activityRecorder
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewBatchService constructs a BatchService.
func NewBatchService(repo batchRepository, faculty facultyFinder, substitutions currentSubstitutionReader, guard *ScheduleGuard, cache *CacheService, activity activityRecorder, validate *validator.Validate, logger *zap.Logger) *BatchService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchService{
		repo:          repo,
		faculty:       faculty,
		substitutions: substitutions,
		guard:         guard,
		cache:         cache,
		activity:      activityOrNoop(activity),
		validator:     validate,
		logger:        logger,
	}
}

// List returns batches with their derived status and today's acting faculty.
func (s *BatchService) List(ctx context.Context, opts BatchListOptions) ([]models.BatchDetail, error) {
	batches, err := s.repo.List(ctx, models.BatchFilter{})
	if err != nil {
		return nil, internalError(err, "failed to list batches")
	}
	today := s.guard.Today()
	current, err := s.substitutions.ListCurrent(ctx, today)
	if err != nil {
		return nil, internalError(err, "failed to load substitutions")
	}
	subs := plainSubstitutions(current)

	result := make([]models.BatchDetail, 0, len(batches))
	for i := range batches {
		decorateBatch(&batches[i], subs, today)
		if opts.FacultyID != "" && batches[i].ActingFacultyID != opts.FacultyID {
			continue
		}
		if opts.Status != "" && batches[i].Status != opts.Status {
			continue
		}
		result = append(result, batches[i])
	}
	return result, nil
}

// Get returns one batch with its students.
func (s *BatchService) Get(ctx context.Context, id string) (*models.BatchDetail, error) {
	batch, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	today := s.guard.Today()
	current, err := s.substitutions.ListCurrent(ctx, today)
	if err != nil {
		return nil, internalError(err, "failed to load substitutions")
	}
	decorateBatch(batch, plainSubstitutions(current), today)

	students, err := s.repo.ListStudents(ctx, id)
	if err != nil {
		return nil, internalError(err, "failed to load batch students")
	}
	batch.Students = nonNilStudents(students)
	return batch, nil
}

// Create validates availability and conflicts, then stores the batch with its students.
func (s *BatchService) Create(ctx context.Context, req dto.BatchRequest, actorID string) (*models.BatchDetail, error) {
	batch, err := s.buildBatch(req)
	if err != nil {
		return nil, err
	}
	if err := s.checkSchedule(ctx, "batch_create", batch); err != nil {
		return nil, err
	}
	batch.ID = uuid.NewString()
	if err := s.repo.Create(ctx, batch, req.StudentIDs); err != nil {
		return nil, persistError(err, "failed to create batch")
	}
	s.afterWrite(ctx, "created", batch.Name, actorID)
	return s.Get(ctx, batch.ID)
}

// Update re-runs the checks excluding the batch itself. A nil StudentIDs keeps the roster.
func (s *BatchService) Update(ctx context.Context, id string, req dto.BatchRequest, actorID string) (*models.BatchDetail, error) {
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	batch, err := s.buildBatch(req)
	if err != nil {
		return nil, err
	}
	batch.ID = id
	if err := s.checkSchedule(ctx, "batch_update", batch); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, batch, req.StudentIDs); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, persistError(err, "failed to update batch")
	}
	s.afterWrite(ctx, "updated", batch.Name, actorID)
	return s.Get(ctx, id)
}

// Delete removes a batch with its enrolments, attendance and substitutions.
func (s *BatchService) Delete(ctx context.Context, id, actorID string) error {
	batch, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return persistError(err, "failed to delete batch")
	}
	s.afterWrite(ctx, "deleted", batch.Name, actorID)
	return nil
}

// Students lists the students enrolled in a batch.
func (s *BatchService) Students(ctx context.Context, id string) ([]models.Student, error) {
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	students, err := s.repo.ListStudents(ctx, id)
	if err != nil {
		return nil, internalError(err, "failed to load batch students")
	}
	return nonNilStudents(students), nil
}

// ActiveStudentCount counts distinct students enrolled in batches running today.
func (s *BatchService) ActiveStudentCount(ctx context.Context) (int, error) {
	count, err := s.repo.CountActiveStudents(ctx, s.guard.Today())
	if err != nil {
		return 0, internalError(err, "failed to count active students")
	}
	return count, nil
}

func (s *BatchService) find(ctx context.Context, id string) (*models.BatchDetail, error) {
	batch, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, internalError(err, "failed to load batch")
	}
	return batch, nil
}

func (s *BatchService) buildBatch(req dto.BatchRequest) (*models.Batch, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid batch payload")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("batch name is required")
	}
	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	if err := checkClockRange(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	days, err := normalizeDays(req.DaysOfWeek)
	if err != nil {
		return nil, err
	}
	return &models.Batch{
		Name:        name,
		Description: normalizeOptional(req.Description),
		FacultyID:   normalizeOptional(req.FacultyID),
		SkillID:     normalizeOptional(req.SkillID),
		StartDate:   start,
		EndDate:     end,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		DaysOfWeek:  days,
		MaxStudents: req.MaxStudents,
	}, nil
}

func (s *BatchService) checkSchedule(ctx context.Context, operation string, batch *models.Batch) error {
	facultyID := batch.OwnerID()
	if facultyID == "" {
		return nil
	}
	if _, err := s.faculty.FindByID(ctx, facultyID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
		}
		return internalError(err, "failed to load faculty")
	}
	return s.guard.Check(ctx, ScheduleCheck{
		Operation:      operation,
		FacultyID:      facultyID,
		Schedule:       scheduling.BatchSchedule(*batch),
		ExcludeBatchID: batch.ID,
	})
}

func (s *BatchService) afterWrite(ctx context.Context, action, name, actorID string) {
	invalidateFreeSlots(ctx, s.cache)
	s.activity.Record(action, "batch "+name, ActivityBatch, actorID)
}

// decorateBatch derives the status and overlays today's acting faculty.
func decorateBatch(batch *models.BatchDetail, subs []models.FacultySubstitution, today time.Time) {
	batch.Status = scheduling.DeriveStatus(today, batch.StartDate, batch.EndDate)
	acting := scheduling.ResolveActingFaculty(batch.Batch, subs, today)
	batch.ActingFacultyID = acting.FacultyID
	batch.IsSubstituted = acting.Substituted
	if acting.Substituted {
		original := acting.OriginalFacultyID
		batch.OriginalFacultyID = &original
		batch.SubstitutionDetails = acting.Substitution
	}
}

func plainSubstitutions(details []models.SubstitutionDetail) []models.FacultySubstitution {
	subs := make([]models.FacultySubstitution, 0, len(details))
	for _, detail := range details {
		subs = append(subs, detail.FacultySubstitution)
	}
	return subs
}

func nonNilStudents(students []models.Student) []models.Student {
	if students == nil {
		return []models.Student{}
	}
	return students
}
