package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/coaching-center-api/internal/scheduling"
	"github.com/noah-isme/coaching-center-api/pkg/database"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
)

// NewValidator returns a validator with the scheduling field rules registered:
// clock (HH:MM[:SS]), weekday (English day name) and date (YYYY-MM-DD).
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		return scheduling.ValidClock(fl.Field().String())
	})
	_ = v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		_, ok := scheduling.NormalizeDay(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		raw := fl.Field().String()
		if len(raw) != len(scheduling.DateLayout) {
			return false
		}
		_, err := scheduling.ParseDate(raw)
		return err == nil
	})
	return v
}

// validationError converts validator output into a VALIDATION_ERROR naming the first bad field.
func validationError(err error, message string) *appErrors.Error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		message = fmt.Sprintf("%s: %s failed %q", message, strings.ToLower(fe.Field()), fe.Tag())
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

func invalid(message string) *appErrors.Error {
	return appErrors.Clone(appErrors.ErrValidation, message)
}

func internalError(err error, message string) *appErrors.Error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

// persistError keeps integrity violations typed and hides everything else behind a 500.
func persistError(err error, message string) error {
	classified := database.ClassifyError(err)
	var appErr *appErrors.Error
	if errors.As(classified, &appErr) {
		return appErr
	}
	return internalError(err, message)
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// normalizeDays canonicalises weekday names and drops duplicates.
func normalizeDays(days []string) ([]string, error) {
	seen := make(map[string]struct{}, len(days))
	out := make([]string, 0, len(days))
	for _, day := range days {
		canonical, ok := scheduling.NormalizeDay(day)
		if !ok {
			return nil, invalid(fmt.Sprintf("invalid day of week: %s", day))
		}
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		out = append(out, canonical)
	}
	if len(out) == 0 {
		return nil, invalid("at least one day of week is required")
	}
	return out, nil
}

// parseDateRange parses and orders two YYYY-MM-DD strings.
func parseDateRange(startRaw, endRaw string) (start, end time.Time, err error) {
	start, err = scheduling.ParseDate(startRaw)
	if err != nil {
		return start, end, invalid("invalid start date")
	}
	end, err = scheduling.ParseDate(endRaw)
	if err != nil {
		return start, end, invalid("invalid end date")
	}
	if end.Before(start) {
		return start, end, invalid("end date must not be before start date")
	}
	return start, end, nil
}

// checkClockRange requires start strictly before end.
func checkClockRange(start, end string) error {
	if !scheduling.ValidClock(start) || !scheduling.ValidClock(end) {
		return invalid("times must be formatted as HH:MM")
	}
	if scheduling.TimeToMinutes(start) >= scheduling.TimeToMinutes(end) {
		return invalid("start time must be before end time")
	}
	return nil
}
