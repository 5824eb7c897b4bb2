package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-center-api/internal/dto"
	"github.com/noah-isme/coaching-center-api/internal/scheduling"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
)

func suggestRequest(skill, start, end string) dto.SuggestFacultyRequest {
	return dto.SuggestFacultyRequest{
		SkillID:    skill,
		StartDate:  "2024-06-10",
		EndDate:    "2024-06-30",
		DaysOfWeek: []string{"Monday", "wednesday"},
		StartTime:  start,
		EndTime:    end,
	}
}

func TestSuggestFacultyCommonSlots(t *testing.T) {
	f := newScheduleFixture()
	svc := NewSuggestionService(f.faculty, f.batches, nil, nil)

	suggestions, err := svc.Suggest(context.Background(), suggestRequest("math", "", ""))
	require.NoError(t, err)
	require.Len(t, suggestions, 2)

	assert.Equal(t, "Asha", suggestions[0].FacultyName)
	assert.Equal(t, []scheduling.CommonSlot{{Start: "09:00", End: "10:00"}, {Start: "11:00", End: "17:00"}}, suggestions[0].CommonSlots)
	assert.Equal(t, scheduling.SuggestionAvailable, suggestions[0].Status)

	assert.Equal(t, "Ben", suggestions[1].FacultyName)
	assert.Equal(t, []scheduling.CommonSlot{{Start: "09:00", End: "12:00"}}, suggestions[1].CommonSlots)
}

func TestSuggestFacultyGradesRequestedTime(t *testing.T) {
	f := newScheduleFixture()
	svc := NewSuggestionService(f.faculty, f.batches, nil, nil)

	suggestions, err := svc.Suggest(context.Background(), suggestRequest("math", "15:00", "16:00"))
	require.NoError(t, err)
	require.Len(t, suggestions, 2)
	assert.Equal(t, scheduling.SuggestionAvailable, suggestions[0].Status)
	assert.Equal(t, scheduling.SuggestionAvailableOtherTimes, suggestions[1].Status)
}

func TestSuggestFacultySkipsInactiveAndUnskilled(t *testing.T) {
	f := newScheduleFixture()
	ben := f.faculty.faculty["f2"]
	ben.IsActive = false
	f.faculty.faculty["f2"] = ben
	svc := NewSuggestionService(f.faculty, f.batches, nil, nil)

	physics, err := svc.Suggest(context.Background(), suggestRequest("physics", "", ""))
	require.NoError(t, err)
	assert.Empty(t, physics)

	math, err := svc.Suggest(context.Background(), suggestRequest("math", "", ""))
	require.NoError(t, err)
	require.Len(t, math, 1)
	assert.Equal(t, "f1", math[0].FacultyID)
}

func TestSuggestFacultyValidation(t *testing.T) {
	f := newScheduleFixture()
	svc := NewSuggestionService(f.faculty, f.batches, nil, nil)
	ctx := context.Background()

	_, err := svc.Suggest(ctx, suggestRequest("math", "10:00", ""))
	assertCode(t, appErrors.ErrValidation, err)
	assert.Contains(t, err.Error(), "together")

	_, err = svc.Suggest(ctx, suggestRequest("math", "12:00", "10:00"))
	assertCode(t, appErrors.ErrValidation, err)

	_, err = svc.Suggest(ctx, suggestRequest("", "", ""))
	assertCode(t, appErrors.ErrValidation, err)
}
