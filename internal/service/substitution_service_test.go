package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-center-api/internal/dto"
	"github.com/noah-isme/coaching-center-api/internal/models"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
)

func newSubstitutionServiceFixture() (*SubstitutionService, *scheduleFixture, *memoryCache) {
	f := newScheduleFixture()
	cacheRepo := newMemoryCache()
	cache := NewCacheService(cacheRepo, nil, 0, nil, true)
	svc := NewSubstitutionService(f.subs, f.batches, f.faculty, f.guard, cache, f.activity, nil, nil)
	return svc, f, cacheRepo
}

func substitutionRequest(substitute, start, end string) dto.CreateSubstitutionRequest {
	return dto.CreateSubstitutionRequest{BatchID: "b1", SubstituteFacultyID: substitute, StartDate: start, EndDate: end}
}

func assertCode(t *testing.T, want *appErrors.Error, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, want.Code, appErrors.FromError(err).Code, err.Error())
}

func TestSubstitutionCreate(t *testing.T) {
	svc, f, cacheRepo := newSubstitutionServiceFixture()
	req := substitutionRequest("f2", "2024-06-10", "2024-06-14")
	req.Notes = ptr("  medical leave ")

	sub, err := svc.Create(context.Background(), req, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, "b1", sub.BatchID)
	assert.Equal(t, "f1", sub.OriginalFacultyID)
	assert.Equal(t, "f2", sub.SubstituteFacultyID)
	assert.Equal(t, "Math101", sub.BatchName)
	require.NotNil(t, sub.Notes)
	assert.Equal(t, "medical leave", *sub.Notes)

	owner := f.batches.batches["b1"].OwnerID()
	assert.Equal(t, "f1", owner, "a temporary substitution never rewrites the batch owner")
	assert.Len(t, cacheRepo.invalidated, 1)
	require.Len(t, f.activity.records, 1)
	assert.Equal(t, ActivitySubstitution, f.activity.records[0].kind)
}

func TestSubstitutionCreateRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("own substitute", func(t *testing.T) {
		svc, _, _ := newSubstitutionServiceFixture()
		_, err := svc.Create(ctx, substitutionRequest("f1", "2024-06-10", "2024-06-14"), "admin-1")
		assertCode(t, appErrors.ErrValidation, err)
		assert.Contains(t, err.Error(), "own substitute")
	})

	t.Run("unknown batch", func(t *testing.T) {
		svc, _, _ := newSubstitutionServiceFixture()
		req := substitutionRequest("f2", "2024-06-10", "2024-06-14")
		req.BatchID = "missing"
		_, err := svc.Create(ctx, req, "admin-1")
		assertCode(t, appErrors.ErrNotFound, err)
	})

	t.Run("unknown substitute", func(t *testing.T) {
		svc, _, _ := newSubstitutionServiceFixture()
		_, err := svc.Create(ctx, substitutionRequest("ghost", "2024-06-10", "2024-06-14"), "admin-1")
		assertCode(t, appErrors.ErrNotFound, err)
	})

	t.Run("reversed dates", func(t *testing.T) {
		svc, _, _ := newSubstitutionServiceFixture()
		_, err := svc.Create(ctx, substitutionRequest("f2", "2024-06-14", "2024-06-10"), "admin-1")
		assertCode(t, appErrors.ErrValidation, err)
	})

	t.Run("substitute unavailable", func(t *testing.T) {
		svc, f, _ := newSubstitutionServiceFixture()
		f.faculty.faculty["f3"] = models.Faculty{ID: "f3", Name: "Chen", IsActive: true, Availability: []models.AvailabilityWindow{
			{FacultyID: "f3", DayOfWeek: "Monday", StartTime: "09:00", EndTime: "17:00"},
		}}
		_, err := svc.Create(ctx, substitutionRequest("f3", "2024-06-10", "2024-06-14"), "admin-1")
		assertCode(t, appErrors.ErrAvailability, err)
		assert.Contains(t, err.Error(), "Wednesday")
	})

	t.Run("substitute busy", func(t *testing.T) {
		svc, f, _ := newSubstitutionServiceFixture()
		f.batches.batches["b3"] = models.Batch{ID: "b3", Name: "Optics", FacultyID: ptr("f2"), StartDate: fixtureDate("2024-06-01"), EndDate: fixtureDate("2024-06-30"), StartTime: "10:30", EndTime: "11:30", DaysOfWeek: []string{"Monday"}}
		_, err := svc.Create(ctx, substitutionRequest("f2", "2024-06-10", "2024-06-14"), "admin-1")
		assertCode(t, appErrors.ErrSchedulingConflict, err)
		assert.Contains(t, err.Error(), "Optics")
	})

	t.Run("overlapping substitution on batch", func(t *testing.T) {
		svc, f, _ := newSubstitutionServiceFixture()
		f.addSubstitution("existing", "b1", "f1", "f9", "2024-06-12", "2024-06-20")
		_, err := svc.Create(ctx, substitutionRequest("f2", "2024-06-10", "2024-06-14"), "admin-1")
		assertCode(t, appErrors.ErrSchedulingConflict, err)
		assert.Contains(t, err.Error(), "overlapping substitution")
		assert.Len(t, f.subs.subs, 1)
	})
}

func TestSubstitutionUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("notes only keeps everything else", func(t *testing.T) {
		svc, f, _ := newSubstitutionServiceFixture()
		f.addSubstitution("sub1", "b1", "f1", "f2", "2024-06-10", "2024-06-14")
		// Availability is not re-checked when the substitute stays the same.
		f.faculty.faculty["f2"] = models.Faculty{ID: "f2", Name: "Ben", IsActive: true}

		sub, err := svc.Update(ctx, "sub1", dto.UpdateSubstitutionRequest{Notes: ptr("extended cover")}, "admin-1")
		require.NoError(t, err)
		assert.Equal(t, "f2", sub.SubstituteFacultyID)
		assert.True(t, sub.StartDate.Equal(fixtureDate("2024-06-10")))
		require.NotNil(t, sub.Notes)
		assert.Equal(t, "extended cover", *sub.Notes)
	})

	t.Run("new substitute is validated", func(t *testing.T) {
		svc, f, _ := newSubstitutionServiceFixture()
		f.addSubstitution("sub1", "b1", "f1", "f2", "2024-06-10", "2024-06-14")
		_, err := svc.Update(ctx, "sub1", dto.UpdateSubstitutionRequest{SubstituteFacultyID: "f1"}, "admin-1")
		assertCode(t, appErrors.ErrValidation, err)
	})

	t.Run("new substitute with a clashing batch", func(t *testing.T) {
		svc, f, _ := newSubstitutionServiceFixture()
		f.addSubstitution("sub1", "b1", "f1", "f2", "2024-06-10", "2024-06-14")
		f.faculty.faculty["f3"] = models.Faculty{ID: "f3", Name: "Chen", IsActive: true, Availability: []models.AvailabilityWindow{
			{FacultyID: "f3", DayOfWeek: "Monday", StartTime: "09:00", EndTime: "17:00"},
			{FacultyID: "f3", DayOfWeek: "Wednesday", StartTime: "09:00", EndTime: "17:00"},
		}}
		f.batches.batches["b3"] = models.Batch{ID: "b3", Name: "Optics", FacultyID: ptr("f3"), StartDate: fixtureDate("2024-06-01"), EndDate: fixtureDate("2024-06-30"), StartTime: "10:30", EndTime: "11:30", DaysOfWeek: []string{"Monday"}}

		_, err := svc.Update(ctx, "sub1", dto.UpdateSubstitutionRequest{SubstituteFacultyID: "f3"}, "admin-1")
		assertCode(t, appErrors.ErrSchedulingConflict, err)
		assert.Equal(t, 409, appErrors.FromError(err).Status)
		assert.Contains(t, err.Error(), "Optics")
		assert.Equal(t, "f2", f.subs.subs["sub1"].SubstituteFacultyID)
	})

	t.Run("new substitute unavailable on a batch day", func(t *testing.T) {
		svc, f, _ := newSubstitutionServiceFixture()
		f.addSubstitution("sub1", "b1", "f1", "f2", "2024-06-10", "2024-06-14")
		f.faculty.faculty["f4"] = models.Faculty{ID: "f4", Name: "Dev", IsActive: true, Availability: []models.AvailabilityWindow{
			{FacultyID: "f4", DayOfWeek: "Monday", StartTime: "09:00", EndTime: "17:00"},
		}}

		_, err := svc.Update(ctx, "sub1", dto.UpdateSubstitutionRequest{SubstituteFacultyID: "f4"}, "admin-1")
		assertCode(t, appErrors.ErrAvailability, err)
		assert.Equal(t, 400, appErrors.FromError(err).Status)
		assert.Contains(t, err.Error(), "Wednesday")
	})

	t.Run("date change keeps the current substitute unchecked", func(t *testing.T) {
		svc, f, _ := newSubstitutionServiceFixture()
		f.addSubstitution("sub1", "b1", "f1", "f2", "2024-06-10", "2024-06-14")
		// f2 teaches a clashing batch in July; moving the cover there is still accepted.
		f.batches.batches["b3"] = models.Batch{ID: "b3", Name: "Optics", FacultyID: ptr("f2"), StartDate: fixtureDate("2024-07-01"), EndDate: fixtureDate("2024-07-31"), StartTime: "10:30", EndTime: "11:30", DaysOfWeek: []string{"Monday"}}

		sub, err := svc.Update(ctx, "sub1", dto.UpdateSubstitutionRequest{StartDate: "2024-07-01", EndDate: "2024-07-05"}, "admin-1")
		require.NoError(t, err)
		assert.Equal(t, "f2", sub.SubstituteFacultyID)
		assert.True(t, sub.StartDate.Equal(fixtureDate("2024-07-01")))
		assert.True(t, sub.EndDate.Equal(fixtureDate("2024-07-05")))
	})

	t.Run("moved dates must not overlap siblings", func(t *testing.T) {
		svc, f, _ := newSubstitutionServiceFixture()
		f.addSubstitution("sub1", "b1", "f1", "f2", "2024-06-10", "2024-06-14")
		f.addSubstitution("sub2", "b1", "f1", "f2", "2024-06-20", "2024-06-25")
		_, err := svc.Update(ctx, "sub1", dto.UpdateSubstitutionRequest{EndDate: "2024-06-21"}, "admin-1")
		assertCode(t, appErrors.ErrSchedulingConflict, err)

		sub, err := svc.Update(ctx, "sub1", dto.UpdateSubstitutionRequest{EndDate: "2024-06-19"}, "admin-1")
		require.NoError(t, err)
		assert.True(t, sub.EndDate.Equal(fixtureDate("2024-06-19")))
	})

	t.Run("missing", func(t *testing.T) {
		svc, _, _ := newSubstitutionServiceFixture()
		_, err := svc.Update(ctx, "nope", dto.UpdateSubstitutionRequest{}, "admin-1")
		assertCode(t, appErrors.ErrNotFound, err)
	})
}

func TestSubstitutionCancel(t *testing.T) {
	svc, f, cacheRepo := newSubstitutionServiceFixture()
	f.addSubstitution("sub1", "b1", "f1", "f2", "2024-06-10", "2024-06-14")

	require.NoError(t, svc.Cancel(context.Background(), "sub1", "admin-1"))
	assert.Empty(t, f.subs.subs)
	assert.Len(t, cacheRepo.invalidated, 1)

	assertCode(t, appErrors.ErrNotFound, svc.Cancel(context.Background(), "sub1", "admin-1"))
}

func TestSubstitutionListCurrentDropsPast(t *testing.T) {
	svc, f, _ := newSubstitutionServiceFixture()
	f.addSubstitution("past", "b1", "f1", "f2", "2024-05-01", "2024-05-10")
	f.addSubstitution("next", "b1", "f1", "f2", "2024-06-10", "2024-06-14")

	subs, err := svc.ListCurrent(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "next", subs[0].ID)
}

func TestAssignFaculty(t *testing.T) {
	ctx := context.Background()

	t.Run("moves ownership", func(t *testing.T) {
		svc, f, _ := newSubstitutionServiceFixture()
		batch, err := svc.Assign(ctx, dto.AssignFacultyRequest{BatchID: "b2", FacultyID: "f1"}, "admin-1")
		require.NoError(t, err)
		assert.Equal(t, "f1", batch.OwnerID())
		assert.Equal(t, "f1", f.batches.batches["b2"].OwnerID())
	})

	t.Run("already assigned", func(t *testing.T) {
		svc, _, _ := newSubstitutionServiceFixture()
		_, err := svc.Assign(ctx, dto.AssignFacultyRequest{BatchID: "b1", FacultyID: "f1"}, "admin-1")
		assertCode(t, appErrors.ErrValidation, err)
	})

	t.Run("new owner unavailable", func(t *testing.T) {
		svc, f, _ := newSubstitutionServiceFixture()
		b := f.batches.batches["b2"]
		b.DaysOfWeek = []string{"Tuesday"}
		f.batches.batches["b2"] = b
		_, err := svc.Assign(ctx, dto.AssignFacultyRequest{BatchID: "b2", FacultyID: "f1"}, "admin-1")
		assertCode(t, appErrors.ErrAvailability, err)
		assert.Equal(t, "f2", f.batches.batches["b2"].OwnerID())
	})

	t.Run("unknown faculty", func(t *testing.T) {
		svc, _, _ := newSubstitutionServiceFixture()
		_, err := svc.Assign(ctx, dto.AssignFacultyRequest{BatchID: "b2", FacultyID: "ghost"}, "admin-1")
		assertCode(t, appErrors.ErrNotFound, err)
	})
}

func TestMergeBatches(t *testing.T) {
	ctx := context.Background()

	t.Run("into itself", func(t *testing.T) {
		svc, _, _ := newSubstitutionServiceFixture()
		_, err := svc.Merge(ctx, dto.MergeBatchesRequest{SourceBatchID: "b1", TargetBatchID: "b1"}, "admin-1")
		assertCode(t, appErrors.ErrValidation, err)
		assert.Contains(t, err.Error(), "itself")
	})

	t.Run("missing target", func(t *testing.T) {
		svc, f, _ := newSubstitutionServiceFixture()
		_, err := svc.Merge(ctx, dto.MergeBatchesRequest{SourceBatchID: "b1", TargetBatchID: "gone"}, "admin-1")
		assertCode(t, appErrors.ErrNotFound, err)
		assert.Nil(t, f.batches.merged)
	})

	t.Run("moves students without duplicates", func(t *testing.T) {
		svc, f, cacheRepo := newSubstitutionServiceFixture()
		res, err := svc.Merge(ctx, dto.MergeBatchesRequest{SourceBatchID: "b1", TargetBatchID: "b2"}, "admin-1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), res.MovedStudents)
		assert.Equal(t, "b1", res.SourceBatchID)
		assert.Len(t, f.batches.students["b2"], 3)
		_, stillThere := f.batches.batches["b1"]
		assert.False(t, stillThere)
		assert.Len(t, cacheRepo.invalidated, 1)
		require.Len(t, f.activity.records, 1)
		assert.Equal(t, "merged", f.activity.records[0].action)
	})
}
