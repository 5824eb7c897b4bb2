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

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ExistsByAdmissionNumber(ctx context.Context, admissionNumber string, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

type studentBatchReader interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.BatchDetail, error)
}

// StudentService handles student use-cases.
type StudentService struct {
	repo      studentRepository
	batches   studentBatchReader
	clock     scheduling.Clock
	activity  activityRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, batches studentBatchReader, clock scheduling.Clock, activity activityRecorder, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = scheduling.SystemClock{}
	}
	return &StudentService{repo: repo, batches: batches, clock: clock, activity: activityOrNoop(activity), validator: validate, logger: logger}
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list students")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return nonNilStudents(students), &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a single student.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, internalError(err, "failed to load student")
	}
	return student, nil
}

// Create registers a new student.
func (s *StudentService) Create(ctx context.Context, req dto.StudentRequest, actorID string) (*models.Student, error) {
	student, err := s.build(ctx, req, "")
	if err != nil {
		return nil, err
	}
	student.ID = uuid.NewString()
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, persistError(err, "failed to create student")
	}
	s.activity.Record("created", "student "+student.Name, ActivityStudent, actorID)
	return student, nil
}

// Update modifies an existing student record.
func (s *StudentService) Update(ctx context.Context, id string, req dto.StudentRequest, actorID string) (*models.Student, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	student, err := s.build(ctx, req, id)
	if err != nil {
		return nil, err
	}
	student.ID = id
	student.CreatedAt = existing.CreatedAt
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, persistError(err, "failed to update student")
	}
	s.activity.Record("updated", "student "+student.Name, ActivityStudent, actorID)
	return student, nil
}

// Delete removes a student together with enrolments and attendance.
func (s *StudentService) Delete(ctx context.Context, id, actorID string) error {
	student, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return persistError(err, "failed to delete student")
	}
	s.activity.Record("deleted", "student "+student.Name, ActivityStudent, actorID)
	return nil
}

// Batches lists the batches a student is enrolled in with derived status.
func (s *StudentService) Batches(ctx context.Context, id string) ([]models.BatchDetail, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	batches, err := s.batches.ListByStudent(ctx, id)
	if err != nil {
		return nil, internalError(err, "failed to load student batches")
	}
	if batches == nil {
		batches = []models.BatchDetail{}
	}
	today := scheduling.Today(s.clock)
	for i := range batches {
		batches[i].Status = scheduling.DeriveStatus(today, batches[i].StartDate, batches[i].EndDate)
		batches[i].ActingFacultyID = batches[i].OwnerID()
	}
	return batches, nil
}

func (s *StudentService) build(ctx context.Context, req dto.StudentRequest, excludeID string) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid student payload")
	}
	name := strings.TrimSpace(req.Name)
	admission := strings.TrimSpace(req.AdmissionNumber)
	if name == "" || admission == "" {
		return nil, invalid("name and admission number are required")
	}
	exists, err := s.repo.ExistsByAdmissionNumber(ctx, admission, excludeID)
	if err != nil {
		return nil, internalError(err, "failed to validate admission number")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicate, "admission number already used")
	}
	now := time.Now().UTC()
	return &models.Student{
		Name:            name,
		AdmissionNumber: admission,
		PhoneNumber:     normalizeOptional(req.PhoneNumber),
		Remarks:         normalizeOptional(req.Remarks),
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}
