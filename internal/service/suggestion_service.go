package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-center-api/internal/dto"
	"github.com/noah-isme/coaching-center-api/internal/models"
	"github.com/noah-isme/coaching-center-api/internal/scheduling"
)

// SuggestionService proposes faculty for a batch that has not been created yet.
type SuggestionService struct {
	faculty   facultyLister
	batches   batchScheduleReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSuggestionService constructs a SuggestionService.
func NewSuggestionService(faculty facultyLister, batches batchScheduleReader, validate *validator.Validate, logger *zap.Logger) *SuggestionService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SuggestionService{faculty: faculty, batches: batches, validator: validate, logger: logger}
}

// Suggest returns skilled faculty with common free time on every requested day.
func (s *SuggestionService) Suggest(ctx context.Context, req dto.SuggestFacultyRequest) ([]scheduling.Suggestion, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid suggestion payload")
	}
	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	days, err := normalizeDays(req.DaysOfWeek)
	if err != nil {
		return nil, err
	}
	if (req.StartTime == "") != (req.EndTime == "") {
		return nil, invalid("start time and end time must be given together")
	}
	if req.StartTime != "" {
		if err := checkClockRange(req.StartTime, req.EndTime); err != nil {
			return nil, err
		}
	}

	active := true
	faculty, err := s.faculty.List(ctx, models.FacultyFilter{SkillID: req.SkillID, Active: &active})
	if err != nil {
		return nil, internalError(err, "failed to load faculty")
	}
	batches, err := s.batches.ListSchedules(ctx, models.BatchFilter{EndOnOrFrom: &start, StartBefore: &end})
	if err != nil {
		return nil, internalError(err, "failed to load batches")
	}
	return scheduling.SuggestFaculty(scheduling.SuggestionInput{
		Faculty:   faculty,
		Batches:   batches,
		SkillID:   req.SkillID,
		StartDate: start,
		EndDate:   end,
		Days:      days,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}), nil
}
