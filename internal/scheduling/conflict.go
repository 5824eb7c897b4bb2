package scheduling

import (
	"fmt"
	"time"

	"github.com/noah-isme/coaching-center-api/internal/models"
)

// Schedule is a weekly recurring day/time pattern bounded by a date range.
type Schedule struct {
	Days      []string
	StartDate time.Time
	EndDate   time.Time
	StartTime string
	EndTime   string
}

// Overlaps reports whether two schedules share a weekday, a date and a minute.
func (s Schedule) Overlaps(other Schedule) bool {
	return DaysOverlap(s.Days, other.Days) &&
		DatesOverlap(s.StartDate, s.EndDate, other.StartDate, other.EndDate) &&
		ClockRangesOverlap(s.StartTime, s.EndTime, other.StartTime, other.EndTime)
}

// BatchSchedule extracts the schedule of a batch.
func BatchSchedule(b models.Batch) Schedule {
	return Schedule{
		Days:      b.DaysOfWeek,
		StartDate: b.StartDate,
		EndDate:   b.EndDate,
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
	}
}

// CommitmentKind tells where a faculty commitment comes from.
type CommitmentKind string

const (
	CommitmentBatch        CommitmentKind = "batch"
	CommitmentSubstitution CommitmentKind = "substitution"
)

// Commitment is something already occupying a faculty's time.
type Commitment struct {
	Kind           CommitmentKind
	BatchID        string
	BatchName      string
	SubstitutionID string
	Schedule       Schedule
}

// ConflictError names the commitment a candidate schedule collides with.
type ConflictError struct {
	Commitment Commitment
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Commitment.Kind == CommitmentSubstitution {
		return fmt.Sprintf("faculty is already substituting for batch: %s", e.Commitment.BatchName)
	}
	return fmt.Sprintf("faculty has a scheduling conflict with batch: %s", e.Commitment.BatchName)
}

// PermanentCommitments turns a faculty's owned batches into commitments,
// dropping completed batches (end date before today) and excludeBatchID.
func PermanentCommitments(batches []models.Batch, excludeBatchID string, today time.Time) []Commitment {
	today = DateOnly(today)
	commitments := make([]Commitment, 0, len(batches))
	for _, b := range batches {
		if excludeBatchID != "" && b.ID == excludeBatchID {
			continue
		}
		if DateOnly(b.EndDate).Before(today) {
			continue
		}
		commitments = append(commitments, Commitment{
			Kind:      CommitmentBatch,
			BatchID:   b.ID,
			BatchName: b.Name,
			Schedule:  BatchSchedule(b),
		})
	}
	return commitments
}

// SubstitutionCommitments turns substitutions a faculty covers into commitments.
// Each one runs on its batch's days and times but only within its own date range.
func SubstitutionCommitments(subs []models.SubstitutionDetail, excludeSubstitutionID string, today time.Time) []Commitment {
	today = DateOnly(today)
	commitments := make([]Commitment, 0, len(subs))
	for _, sub := range subs {
		if excludeSubstitutionID != "" && sub.ID == excludeSubstitutionID {
			continue
		}
		if DateOnly(sub.EndDate).Before(today) {
			continue
		}
		commitments = append(commitments, Commitment{
			Kind:           CommitmentSubstitution,
			BatchID:        sub.BatchID,
			BatchName:      sub.BatchName,
			SubstitutionID: sub.ID,
			Schedule: Schedule{
				Days:      sub.BatchDaysOfWeek,
				StartDate: sub.StartDate,
				EndDate:   sub.EndDate,
				StartTime: sub.BatchStartTime,
				EndTime:   sub.BatchEndTime,
			},
		})
	}
	return commitments
}

// FindConflict returns the first commitment the candidate overlaps, or nil.
func FindConflict(candidate Schedule, commitments []Commitment) *Commitment {
	for i := range commitments {
		if candidate.Overlaps(commitments[i].Schedule) {
			hit := commitments[i]
			return &hit
		}
	}
	return nil
}

// CheckConflict wraps FindConflict into a *ConflictError.
func CheckConflict(candidate Schedule, commitments []Commitment) error {
	if hit := FindConflict(candidate, commitments); hit != nil {
		return &ConflictError{Commitment: *hit}
	}
	return nil
}
