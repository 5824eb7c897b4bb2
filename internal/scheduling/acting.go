package scheduling

import (
	"time"

	"github.com/noah-isme/coaching-center-api/internal/models"
)

// ActingFaculty is who actually teaches a batch on a given date.
type ActingFaculty struct {
	FacultyID         string
	OriginalFacultyID string
	Substituted       bool
	Substitution      *models.FacultySubstitution
}

// Covers reports whether sub runs on the calendar date of date, both ends
// inclusive. Clock components on either side are ignored.
func Covers(sub models.FacultySubstitution, date time.Time) bool {
	date = DateOnly(date)
	return !date.Before(DateOnly(sub.StartDate)) && !date.After(DateOnly(sub.EndDate))
}

// CoveringSubstitution returns the substitution of batchID whose range includes date.
// The exclusion constraint guarantees at most one.
func CoveringSubstitution(batchID string, subs []models.FacultySubstitution, date time.Time) *models.FacultySubstitution {
	for i := range subs {
		sub := subs[i]
		if sub.BatchID == batchID && Covers(sub, date) {
			return &sub
		}
	}
	return nil
}

// ResolveActingFaculty applies any substitution covering date on top of the batch owner.
// Without one the batch is in its normal state and the owner acts.
func ResolveActingFaculty(batch models.Batch, subs []models.FacultySubstitution, date time.Time) ActingFaculty {
	owner := batch.OwnerID()
	sub := CoveringSubstitution(batch.ID, subs, date)
	if sub == nil {
		return ActingFaculty{FacultyID: owner, OriginalFacultyID: owner}
	}
	original := sub.OriginalFacultyID
	if original == "" {
		original = owner
	}
	return ActingFaculty{
		FacultyID:         sub.SubstituteFacultyID,
		OriginalFacultyID: original,
		Substituted:       true,
		Substitution:      sub,
	}
}
