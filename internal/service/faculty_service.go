package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-center-api/internal/dto"
	"github.com/noah-isme/coaching-center-api/internal/models"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
)

type facultyRepository interface {
	List(ctx context.Context, filter models.FacultyFilter) ([]models.Faculty, error)
	FindByID(ctx context.Context, id string) (*models.Faculty, error)
	Create(ctx context.Context, faculty *models.Faculty, skillIDs []string) error
	Update(ctx context.Context, faculty *models.Faculty, skillIDs []string) error
	Delete(ctx context.Context, id string) error
	ListAvailability(ctx context.Context, facultyID string) ([]models.AvailabilityWindow, error)
	ReplaceAvailability(ctx context.Context, facultyID string, windows []models.AvailabilityWindow) error
}

type skillLister interface {
	List(ctx context.Context) ([]models.Skill, error)
}

// FacultyService handles faculty, skills and weekly availability.
type FacultyService struct {
	repo          facultyRepository
	skills        skillLister
	guard         *ScheduleGuard
	cache         *CacheService
	activity      activityRecorder
	validator     *validator.Validate
	logger        *zap.Logger
	lookaheadDays int
}

// NewFacultyService constructs a FacultyService. lookaheadDays bounds how far
// ahead availability changes are checked against scheduled batches.
func NewFacultyService(repo facultyRepository, skills skillLister, guard *ScheduleGuard, cache *CacheService, activity activityRecorder, validate *validator.Validate, logger *zap.Logger, lookaheadDays int) *FacultyService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FacultyService{
		repo:          repo,
		skills:        skills,
		guard:         guard,
		cache:         cache,
		activity:      activityOrNoop(activity),
		validator:     validate,
		logger:        logger,
		lookaheadDays: lookaheadDays,
	}
}

// List returns faculty, optionally restricted to one skill.
func (s *FacultyService) List(ctx context.Context, skillID string) ([]models.Faculty, error) {
	faculty, err := s.repo.List(ctx, models.FacultyFilter{SkillID: skillID})
	if err != nil {
		return nil, internalError(err, "failed to list faculty")
	}
	if faculty == nil {
		faculty = []models.Faculty{}
	}
	return faculty, nil
}

// Get returns a faculty with skills and availability.
func (s *FacultyService) Get(ctx context.Context, id string) (*models.Faculty, error) {
	faculty, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
		}
		return nil, internalError(err, "failed to load faculty")
	}
	return faculty, nil
}

// Create registers a faculty and links its skills.
func (s *FacultyService) Create(ctx context.Context, req dto.CreateFacultyRequest, actorID string) (*models.Faculty, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid faculty payload")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("faculty name is required")
	}
	faculty := &models.Faculty{
		ID:             uuid.NewString(),
		Name:           name,
		Email:          normalizeOptional(req.Email),
		PhoneNumber:    normalizeOptional(req.PhoneNumber),
		EmploymentType: employmentType(req.EmploymentType),
		IsActive:       true,
	}
	if err := s.repo.Create(ctx, faculty, req.SkillIDs); err != nil {
		return nil, persistError(err, "failed to create faculty")
	}
	s.activity.Record("created", "faculty "+faculty.Name, ActivityFaculty, actorID)
	return s.Get(ctx, faculty.ID)
}

// Update modifies a faculty. A nil SkillIDs keeps the current skills.
func (s *FacultyService) Update(ctx context.Context, id string, req dto.UpdateFacultyRequest, actorID string) (*models.Faculty, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid faculty payload")
	}
	faculty, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("faculty name is required")
	}
	faculty.Name = name
	faculty.Email = normalizeOptional(req.Email)
	faculty.PhoneNumber = normalizeOptional(req.PhoneNumber)
	if req.EmploymentType != "" {
		faculty.EmploymentType = models.EmploymentType(req.EmploymentType)
	}
	if req.IsActive != nil {
		faculty.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, faculty, req.SkillIDs); err != nil {
		return nil, persistError(err, "failed to update faculty")
	}
	invalidateFreeSlots(ctx, s.cache)
	s.activity.Record("updated", "faculty "+faculty.Name, ActivityFaculty, actorID)
	return s.Get(ctx, id)
}

// Delete removes a faculty.
func (s *FacultyService) Delete(ctx context.Context, id, actorID string) error {
	faculty, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return persistError(err, "failed to delete faculty")
	}
	invalidateFreeSlots(ctx, s.cache)
	s.activity.Record("deleted", "faculty "+faculty.Name, ActivityFaculty, actorID)
	return nil
}

// Skills lists the skill catalogue.
func (s *FacultyService) Skills(ctx context.Context) ([]models.Skill, error) {
	skills, err := s.skills.List(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list skills")
	}
	if skills == nil {
		skills = []models.Skill{}
	}
	return skills, nil
}

// Availability returns the weekly windows of a faculty.
func (s *FacultyService) Availability(ctx context.Context, facultyID string) ([]models.AvailabilityWindow, error) {
	if _, err := s.Get(ctx, facultyID); err != nil {
		return nil, err
	}
	windows, err := s.repo.ListAvailability(ctx, facultyID)
	if err != nil {
		return nil, internalError(err, "failed to load availability")
	}
	if windows == nil {
		windows = []models.AvailabilityWindow{}
	}
	return windows, nil
}

// SetAvailability replaces every window of a faculty. The change is refused
// when a batch starting within the lookahead horizon would no longer fit.
func (s *FacultyService) SetAvailability(ctx context.Context, facultyID string, req dto.SetAvailabilityRequest, actorID string) ([]models.AvailabilityWindow, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid availability payload")
	}
	faculty, err := s.Get(ctx, facultyID)
	if err != nil {
		return nil, err
	}
	windows, err := buildWindows(facultyID, req.Availability)
	if err != nil {
		return nil, err
	}
	if err := s.guard.CheckAvailabilityChange(ctx, facultyID, windows, s.lookaheadDays); err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceAvailability(ctx, facultyID, windows); err != nil {
		return nil, persistError(err, "failed to update availability")
	}
	invalidateFreeSlots(ctx, s.cache)
	s.activity.Record("updated", "availability for faculty "+faculty.Name, ActivityFaculty, actorID)
	return windows, nil
}

func buildWindows(facultyID string, items []dto.AvailabilityWindowRequest) ([]models.AvailabilityWindow, error) {
	windows := make([]models.AvailabilityWindow, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		days, err := normalizeDays([]string{item.DayOfWeek})
		if err != nil {
			return nil, err
		}
		day := days[0]
		if _, dup := seen[day]; dup {
			return nil, invalid(fmt.Sprintf("availability for %s is given more than once", day))
		}
		seen[day] = struct{}{}
		if err := checkClockRange(item.StartTime, item.EndTime); err != nil {
			return nil, err
		}
		windows = append(windows, models.AvailabilityWindow{
			ID:        uuid.NewString(),
			FacultyID: facultyID,
			DayOfWeek: day,
			StartTime: item.StartTime,
			EndTime:   item.EndTime,
		})
	}
	return windows, nil
}

func employmentType(raw string) models.EmploymentType {
	if raw == "" {
		return models.EmploymentFullTime
	}
	return models.EmploymentType(raw)
}
