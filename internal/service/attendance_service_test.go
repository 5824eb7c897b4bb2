package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-center-api/internal/dto"
	"github.com/noah-isme/coaching-center-api/internal/models"
	"github.com/noah-isme/coaching-center-api/internal/scheduling"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
	"github.com/noah-isme/coaching-center-api/pkg/export"
)

type stubAttendanceRepo struct {
	records []models.StudentAttendance
	upserts [][]models.StudentAttendance
}

func (s *stubAttendanceRepo) Upsert(ctx context.Context, records []models.StudentAttendance) error {
	s.upserts = append(s.upserts, records)
	for _, rec := range records {
		replaced := false
		for i, existing := range s.records {
			if existing.BatchID == rec.BatchID && existing.StudentID == rec.StudentID && existing.Date.Equal(rec.Date) {
				s.records[i] = rec
				replaced = true
			}
		}
		if !replaced {
			s.records = append(s.records, rec)
		}
	}
	return nil
}

func (s *stubAttendanceRepo) ListByBatchDate(ctx context.Context, batchID string, date time.Time) ([]models.AttendanceRecord, error) {
	var out []models.AttendanceRecord
	for _, rec := range s.records {
		if rec.BatchID == batchID && rec.Date.Equal(date) {
			out = append(out, models.AttendanceRecord{StudentAttendance: rec})
		}
	}
	return out, nil
}

func (s *stubAttendanceRepo) ListByBatches(ctx context.Context, batchIDs []string, start, end time.Time) ([]models.StudentAttendance, error) {
	var out []models.StudentAttendance
	for _, rec := range s.records {
		for _, id := range batchIDs {
			if rec.BatchID == id && !rec.Date.Before(start) && !rec.Date.After(end) {
				out = append(out, rec)
			}
		}
	}
	return out, nil
}

func (s *stubAttendanceRepo) ListInRange(ctx context.Context, start, end time.Time) ([]models.StudentAttendance, error) {
	var out []models.StudentAttendance
	for _, rec := range s.records {
		if !rec.Date.Before(start) && !rec.Date.After(end) {
			out = append(out, rec)
		}
	}
	return out, nil
}

type recordingPDF struct {
	last export.Dataset
}

func (r *recordingPDF) Render(data export.Dataset) ([]byte, error) {
	r.last = data
	return []byte("%PDF-stub"), nil
}

// Wednesday 2024-06-12: b1 has run on 06-03, 06-05, 06-10 and 06-12.
var attendanceToday = time.Date(2024, 6, 12, 15, 0, 0, 0, time.UTC)

func newAttendanceFixture() (*AttendanceService, *scheduleFixture, *stubAttendanceRepo, *recordingPDF) {
	f := newScheduleFixture()
	repo := &stubAttendanceRepo{}
	pdf := &recordingPDF{}
	svc := NewAttendanceService(repo, f.batches, f.subs, f.faculty, scheduling.FixedClock{At: attendanceToday}, f.activity, nil, nil, nil, pdf)
	return svc, f, repo, pdf
}

func mark(student string, present bool) dto.AttendanceMarkRequest {
	return dto.AttendanceMarkRequest{StudentID: student, IsPresent: present}
}

var adminClaims = &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}

func facultyClaims(facultyID string) *models.JWTClaims {
	return &models.JWTClaims{UserID: "user-" + facultyID, Role: models.RoleFaculty, FacultyID: facultyID}
}

func TestAttendanceSaveDedupesAndUpserts(t *testing.T) {
	svc, f, repo, _ := newAttendanceFixture()
	ctx := context.Background()

	records, err := svc.Save(ctx, dto.SaveAttendanceRequest{
		BatchID:    "b1",
		Date:       "2024-06-03T00:00:00Z",
		Attendance: []dto.AttendanceMarkRequest{mark("s1", true), mark("s2", false), mark("s1", false)},
	}, adminClaims)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, records[0].IsPresent)
	assert.Equal(t, fixtureDate("2024-06-03"), records[0].Date)

	_, err = svc.Save(ctx, dto.SaveAttendanceRequest{BatchID: "b1", Date: "2024-06-03", Attendance: []dto.AttendanceMarkRequest{mark("s2", true)}}, adminClaims)
	require.NoError(t, err)
	assert.Len(t, repo.records, 2)
	assert.True(t, repo.records[1].IsPresent)
	require.Len(t, f.activity.records, 2)
	assert.Equal(t, ActivityAttendance, f.activity.records[0].kind)
}

func TestAttendanceSaveRejections(t *testing.T) {
	ctx := context.Background()
	base := func() dto.SaveAttendanceRequest {
		return dto.SaveAttendanceRequest{BatchID: "b1", Date: "2024-06-05", Attendance: []dto.AttendanceMarkRequest{mark("s1", true)}}
	}

	t.Run("student not enrolled", func(t *testing.T) {
		svc, _, repo, _ := newAttendanceFixture()
		req := base()
		req.Attendance = append(req.Attendance, mark("s3", true))
		_, err := svc.Save(ctx, req, adminClaims)
		assertCode(t, appErrors.ErrValidation, err)
		assert.Contains(t, err.Error(), "s3")
		assert.Empty(t, repo.upserts)
	})

	t.Run("outside batch range", func(t *testing.T) {
		svc, _, _, _ := newAttendanceFixture()
		req := base()
		req.Date = "2024-05-31"
		_, err := svc.Save(ctx, req, adminClaims)
		assertCode(t, appErrors.ErrValidation, err)
	})

	t.Run("unparseable date", func(t *testing.T) {
		svc, _, _, _ := newAttendanceFixture()
		req := base()
		req.Date = "yesterday"
		_, err := svc.Save(ctx, req, adminClaims)
		assertCode(t, appErrors.ErrValidation, err)
	})

	t.Run("missing batch", func(t *testing.T) {
		svc, _, _, _ := newAttendanceFixture()
		req := base()
		req.BatchID = "gone"
		_, err := svc.Save(ctx, req, adminClaims)
		assertCode(t, appErrors.ErrNotFound, err)
	})
}

func TestAttendanceSaveOnlyByActingFaculty(t *testing.T) {
	svc, f, _, _ := newAttendanceFixture()
	ctx := context.Background()
	f.addSubstitution("sub1", "b1", "f1", "f2", "2024-06-05", "2024-06-05")
	req := dto.SaveAttendanceRequest{BatchID: "b1", Date: "2024-06-05", Attendance: []dto.AttendanceMarkRequest{mark("s1", true)}}

	_, err := svc.Save(ctx, req, facultyClaims("f1"))
	assertCode(t, appErrors.ErrForbidden, err)

	_, err = svc.Save(ctx, req, facultyClaims("f2"))
	require.NoError(t, err)

	req.Date = "2024-06-03"
	_, err = svc.Save(ctx, req, facultyClaims("f2"))
	assertCode(t, appErrors.ErrForbidden, err)
	_, err = svc.Save(ctx, req, facultyClaims("f1"))
	require.NoError(t, err)
}

func TestAttendanceDailySheet(t *testing.T) {
	svc, f, repo, _ := newAttendanceFixture()
	f.addSubstitution("sub1", "b1", "f1", "f2", "2024-06-05", "2024-06-05")
	repo.records = []models.StudentAttendance{{BatchID: "b1", StudentID: "s1", Date: fixtureDate("2024-06-05"), IsPresent: false}}

	sheet, err := svc.Daily(context.Background(), "b1", "2024-06-05")
	require.NoError(t, err)
	assert.Equal(t, "f2", sheet.ActingFacultyID)
	assert.True(t, sheet.Substituted)
	require.Len(t, sheet.Entries, 2)
	require.NotNil(t, sheet.Entries[0].IsPresent)
	assert.False(t, *sheet.Entries[0].IsPresent)
	assert.Nil(t, sheet.Entries[1].IsPresent)
}

func seedAttendance(f *scheduleFixture, repo *stubAttendanceRepo) {
	f.addSubstitution("sub1", "b1", "f1", "f2", "2024-06-05", "2024-06-05")
	repo.records = []models.StudentAttendance{
		{BatchID: "b1", StudentID: "s1", Date: fixtureDate("2024-06-03"), IsPresent: true},
		{BatchID: "b1", StudentID: "s2", Date: fixtureDate("2024-06-03"), IsPresent: false},
		{BatchID: "b1", StudentID: "s1", Date: fixtureDate("2024-06-05"), IsPresent: true},
		{BatchID: "b1", StudentID: "s2", Date: fixtureDate("2024-06-05"), IsPresent: true},
	}
}

func TestAttendanceBatchReport(t *testing.T) {
	svc, f, repo, _ := newAttendanceFixture()
	seedAttendance(f, repo)

	report, err := svc.BatchReport(context.Background(), "b1", dto.DateRangeQuery{StartDate: "2024-06-01", EndDate: "2024-06-07"})
	require.NoError(t, err)
	assert.Equal(t, "Math101", report.BatchName)
	assert.Len(t, report.Students, 2)
	assert.Len(t, report.AttendanceByDate["2024-06-03"], 2)
	assert.Equal(t, map[string]string{"2024-06-03": "f1", "2024-06-05": "f2"}, report.TaughtBy)
}

func TestAttendanceExportBatchReport(t *testing.T) {
	svc, f, repo, pdf := newAttendanceFixture()
	seedAttendance(f, repo)
	ctx := context.Background()
	query := dto.DateRangeQuery{StartDate: "2024-06-01", EndDate: "2024-06-07", Format: "csv"}

	file, err := svc.ExportBatchReport(ctx, "b1", query)
	require.NoError(t, err)
	assert.Equal(t, "attendance_math101_2024-06-01_2024-06-07.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)
	lines := strings.Split(strings.TrimSpace(string(file.Payload)), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Date,Admission No,Student,Present,Taught By", lines[0])
	assert.Equal(t, "2024-06-03,ADM-2,Kiran,no,Asha", lines[2])
	assert.Equal(t, "2024-06-05,ADM-1,Ria,yes,Ben", lines[3])

	query.Format = "pdf"
	file, err = svc.ExportBatchReport(ctx, "b1", query)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.Equal(t, "Attendance Math101", pdf.last.Title)
	assert.Equal(t, "2024-06-01 to 2024-06-07", pdf.last.Subtitle)

	query.Format = "json"
	_, err = svc.ExportBatchReport(ctx, "b1", query)
	assertCode(t, appErrors.ErrValidation, err)
}

func TestAttendanceFacultyReportCreditsActingFaculty(t *testing.T) {
	svc, f, repo, _ := newAttendanceFixture()
	seedAttendance(f, repo)
	query := dto.DateRangeQuery{StartDate: "2024-06-01", EndDate: "2024-06-30"}

	asha, err := svc.FacultyReport(context.Background(), "f1", query)
	require.NoError(t, err)
	require.Len(t, asha.Batches, 1)
	// 06-03, 06-10 and 06-12; 06-05 went to the substitute and later dates are in the future.
	assert.Equal(t, 3, asha.Sessions)
	assert.Equal(t, 0, asha.Batches[0].SubstituteDays)
	assert.Equal(t, 50.0, asha.AttendanceRate)

	ben, err := svc.FacultyReport(context.Background(), "f2", query)
	require.NoError(t, err)
	require.Len(t, ben.Batches, 2)
	assert.Equal(t, "Math101", ben.Batches[0].BatchName)
	assert.Equal(t, 1, ben.Batches[0].Sessions)
	assert.Equal(t, 1, ben.Batches[0].SubstituteDays)
	assert.Equal(t, 100.0, ben.Batches[0].AttendanceRate)
	assert.Equal(t, "Physics", ben.Batches[1].BatchName)
	assert.Equal(t, 2, ben.Batches[1].Sessions)
	assert.Equal(t, 3, ben.Sessions)

	_, err = svc.FacultyReport(context.Background(), "ghost", query)
	assertCode(t, appErrors.ErrNotFound, err)
}

func TestAttendanceOverallReport(t *testing.T) {
	svc, f, repo, _ := newAttendanceFixture()
	seedAttendance(f, repo)

	reports, err := svc.OverallReport(context.Background(), dto.DateRangeQuery{StartDate: "2024-06-01", EndDate: "2024-06-30"})
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "Asha", reports[0].FacultyName)
	assert.Equal(t, 3, reports[0].Sessions)
	assert.Equal(t, 3, reports[1].Sessions)
	assert.Equal(t, 75.0, attendanceRate(3, 4))
}
