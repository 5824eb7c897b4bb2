package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-center-api/internal/dto"
	"github.com/noah-isme/coaching-center-api/internal/models"
	"github.com/noah-isme/coaching-center-api/internal/scheduling"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
	"github.com/noah-isme/coaching-center-api/pkg/export"
)

type attendanceRepository interface {
	Upsert(ctx context.Context, records []models.StudentAttendance) error
	ListByBatchDate(ctx context.Context, batchID string, date time.Time) ([]models.AttendanceRecord, error)
	ListByBatches(ctx context.Context, batchIDs []string, start, end time.Time) ([]models.StudentAttendance, error)
	ListInRange(ctx context.Context, start, end time.Time) ([]models.StudentAttendance, error)
}

type attendanceBatchReader interface {
	FindByID(ctx context.Context, id string) (*models.BatchDetail, error)
	ListStudents(ctx context.Context, batchID string) ([]models.Student, error)
	ListSchedules(ctx context.Context, filter models.BatchFilter) ([]models.Batch, error)
}

type batchSubstitutionReader interface {
	ListByBatch(ctx context.Context, batchID string, start, end time.Time) ([]models.FacultySubstitution, error)
	ListInRange(ctx context.Context, start, end time.Time) ([]models.FacultySubstitution, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportFile is a rendered report ready to be streamed.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// AttendanceService records attendance and builds reports that credit each
// session to whoever was acting faculty on that date.
type AttendanceService struct {
	repo          attendanceRepository
	batches       attendanceBatchReader
	substitutions batchSubstitutionReader
	faculty       facultyLister
	clock         scheduling.Clock
	activity      activityRecorder
	csv           csvRenderer
	pdf           pdfRenderer
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(repo attendanceRepository, batches attendanceBatchReader, substitutions batchSubstitutionReader, faculty facultyLister, clock scheduling.Clock, activity activityRecorder, validate *validator.Validate, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *AttendanceService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = scheduling.SystemClock{}
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &AttendanceService{
		repo:          repo,
		batches:       batches,
		substitutions: substitutions,
		faculty:       faculty,
		clock:         clock,
		activity:      activityOrNoop(activity),
		csv:           csv,
		pdf:           pdf,
		validator:     validate,
		logger:        logger,
	}
}

// Save upserts the marks of one batch session. Faculty accounts may only
// record sessions they are acting faculty for on that date.
func (s *AttendanceService) Save(ctx context.Context, req dto.SaveAttendanceRequest, claims *models.JWTClaims) ([]models.StudentAttendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid attendance payload")
	}
	date, err := parseSessionDate(req.Date)
	if err != nil {
		return nil, err
	}
	batch, err := s.findBatch(ctx, req.BatchID)
	if err != nil {
		return nil, err
	}
	if date.Before(scheduling.DateOnly(batch.StartDate)) || date.After(scheduling.DateOnly(batch.EndDate)) {
		return nil, invalid("date is outside the batch's date range")
	}

	if claims.IsFaculty() {
		subs, err := s.substitutions.ListByBatch(ctx, batch.ID, date, date)
		if err != nil {
			return nil, internalError(err, "failed to load substitutions")
		}
		acting := scheduling.ResolveActingFaculty(batch.Batch, subs, date)
		if acting.FacultyID == "" || acting.FacultyID != claims.FacultyID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "only the acting faculty can record attendance for this session")
		}
	}

	roster, err := s.batches.ListStudents(ctx, batch.ID)
	if err != nil {
		return nil, internalError(err, "failed to load batch students")
	}
	enrolled := make(map[string]struct{}, len(roster))
	for _, student := range roster {
		enrolled[student.ID] = struct{}{}
	}

	records := make([]models.StudentAttendance, 0, len(req.Attendance))
	seen := make(map[string]struct{}, len(req.Attendance))
	for _, mark := range req.Attendance {
		if _, ok := enrolled[mark.StudentID]; !ok {
			return nil, invalid(fmt.Sprintf("student %s is not enrolled in this batch", mark.StudentID))
		}
		if _, dup := seen[mark.StudentID]; dup {
			continue
		}
		seen[mark.StudentID] = struct{}{}
		records = append(records, models.StudentAttendance{BatchID: batch.ID, StudentID: mark.StudentID, Date: date, IsPresent: mark.IsPresent})
	}
	if err := s.repo.Upsert(ctx, records); err != nil {
		return nil, persistError(err, "failed to save attendance")
	}
	actorID := ""
	if claims != nil {
		actorID = claims.UserID
	}
	s.activity.Record("recorded", fmt.Sprintf("attendance for batch %s on %s", batch.Name, scheduling.FormatDate(date)), ActivityAttendance, actorID)
	return records, nil
}

// Daily returns the batch roster with the marks recorded on one date.
func (s *AttendanceService) Daily(ctx context.Context, batchID, rawDate string) (*dto.DailySheet, error) {
	date, err := parseSessionDate(rawDate)
	if err != nil {
		return nil, err
	}
	batch, err := s.findBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	roster, err := s.batches.ListStudents(ctx, batch.ID)
	if err != nil {
		return nil, internalError(err, "failed to load batch students")
	}
	records, err := s.repo.ListByBatchDate(ctx, batch.ID, date)
	if err != nil {
		return nil, internalError(err, "failed to load attendance")
	}
	subs, err := s.substitutions.ListByBatch(ctx, batch.ID, date, date)
	if err != nil {
		return nil, internalError(err, "failed to load substitutions")
	}
	acting := scheduling.ResolveActingFaculty(batch.Batch, subs, date)

	marks := make(map[string]bool, len(records))
	for _, rec := range records {
		marks[rec.StudentID] = rec.IsPresent
	}
	sheet := &dto.DailySheet{
		BatchID:         batch.ID,
		Date:            scheduling.FormatDate(date),
		ActingFacultyID: acting.FacultyID,
		Substituted:     acting.Substituted,
		Entries:         make([]dto.DailySheetEntry, 0, len(roster)),
	}
	for _, student := range roster {
		entry := dto.DailySheetEntry{StudentID: student.ID, StudentName: student.Name, AdmissionNumber: student.AdmissionNumber}
		if present, ok := marks[student.ID]; ok {
			p := present
			entry.IsPresent = &p
		}
		sheet.Entries = append(sheet.Entries, entry)
	}
	return sheet, nil
}

// BatchReport groups a batch's marks by date and names who taught each date.
func (s *AttendanceService) BatchReport(ctx context.Context, batchID string, query dto.DateRangeQuery) (*models.BatchAttendanceReport, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, validationError(err, "invalid report query")
	}
	start, end, err := parseDateRange(query.StartDate, query.EndDate)
	if err != nil {
		return nil, err
	}
	batch, err := s.findBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	students, err := s.batches.ListStudents(ctx, batch.ID)
	if err != nil {
		return nil, internalError(err, "failed to load batch students")
	}
	records, err := s.repo.ListByBatches(ctx, []string{batch.ID}, start, end)
	if err != nil {
		return nil, internalError(err, "failed to load attendance")
	}
	subs, err := s.substitutions.ListByBatch(ctx, batch.ID, start, end)
	if err != nil {
		return nil, internalError(err, "failed to load substitutions")
	}

	report := &models.BatchAttendanceReport{
		BatchID:          batch.ID,
		BatchName:        batch.Name,
		StartDate:        scheduling.FormatDate(start),
		EndDate:          scheduling.FormatDate(end),
		Students:         nonNilStudents(students),
		AttendanceByDate: make(map[string][]models.AttendanceMark),
		TaughtBy:         make(map[string]string),
	}
	for _, rec := range records {
		key := scheduling.FormatDate(rec.Date)
		report.AttendanceByDate[key] = append(report.AttendanceByDate[key], models.AttendanceMark{StudentID: rec.StudentID, IsPresent: rec.IsPresent})
		if _, ok := report.TaughtBy[key]; !ok {
			report.TaughtBy[key] = scheduling.ResolveActingFaculty(batch.Batch, subs, rec.Date).FacultyID
		}
	}
	return report, nil
}

// ExportBatchReport renders the batch report as CSV or PDF.
func (s *AttendanceService) ExportBatchReport(ctx context.Context, batchID string, query dto.DateRangeQuery) (*ExportFile, error) {
	report, err := s.BatchReport(ctx, batchID, query)
	if err != nil {
		return nil, err
	}
	names, err := s.facultyNames(ctx)
	if err != nil {
		return nil, err
	}
	format, ok := export.ParseFormat(query.Format)
	if !ok {
		return nil, invalid("format must be csv or pdf")
	}
	dataset := batchReportDataset(report, names)
	dataset.Title = "Attendance " + report.BatchName
	dataset.Subtitle = report.StartDate + " to " + report.EndDate

	var payload []byte
	if format == export.FormatPDF {
		payload, err = s.pdf.Render(dataset)
	} else {
		payload, err = s.csv.Render(dataset)
	}
	if err != nil {
		return nil, internalError(err, "failed to render "+string(format))
	}
	base := fmt.Sprintf("attendance_%s_%s_%s", slug(report.BatchName), report.StartDate, report.EndDate)
	return &ExportFile{Filename: format.Filename(base), ContentType: format.ContentType(), Payload: payload}, nil
}

// FacultyReport counts the sessions a faculty actually taught in a range,
// including batches they substituted into.
func (s *AttendanceService) FacultyReport(ctx context.Context, facultyID string, query dto.DateRangeQuery) (*models.FacultyAttendanceReport, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, validationError(err, "invalid report query")
	}
	start, end, err := parseDateRange(query.StartDate, query.EndDate)
	if err != nil {
		return nil, err
	}
	faculty, err := s.faculty.List(ctx, models.FacultyFilter{ID: facultyID})
	if err != nil {
		return nil, internalError(err, "failed to load faculty")
	}
	if len(faculty) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
	}
	tallies, err := s.tally(ctx, start, end, facultyID)
	if err != nil {
		return nil, err
	}
	report := tallies.report(faculty[0], start, end)
	return &report, nil
}

// OverallReport returns one session report per faculty.
func (s *AttendanceService) OverallReport(ctx context.Context, query dto.DateRangeQuery) ([]models.FacultyAttendanceReport, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, validationError(err, "invalid report query")
	}
	start, end, err := parseDateRange(query.StartDate, query.EndDate)
	if err != nil {
		return nil, err
	}
	faculty, err := s.faculty.List(ctx, models.FacultyFilter{})
	if err != nil {
		return nil, internalError(err, "failed to load faculty")
	}
	tallies, err := s.tally(ctx, start, end, "")
	if err != nil {
		return nil, err
	}
	reports := make([]models.FacultyAttendanceReport, 0, len(faculty))
	for _, f := range faculty {
		reports = append(reports, tallies.report(f, start, end))
	}
	return reports, nil
}

// sessionTally accumulates per faculty, per batch session counts.
type sessionTally map[string]map[string]*models.FacultyBatchAttendance

func (t sessionTally) entry(facultyID string, batch models.Batch) *models.FacultyBatchAttendance {
	byBatch, ok := t[facultyID]
	if !ok {
		byBatch = make(map[string]*models.FacultyBatchAttendance)
		t[facultyID] = byBatch
	}
	entry, ok := byBatch[batch.ID]
	if !ok {
		entry = &models.FacultyBatchAttendance{BatchID: batch.ID, BatchName: batch.Name}
		byBatch[batch.ID] = entry
	}
	return entry
}

func (t sessionTally) report(faculty models.Faculty, start, end time.Time) models.FacultyAttendanceReport {
	report := models.FacultyAttendanceReport{
		FacultyID:   faculty.ID,
		FacultyName: faculty.Name,
		StartDate:   scheduling.FormatDate(start),
		EndDate:     scheduling.FormatDate(end),
		Batches:     []models.FacultyBatchAttendance{},
	}
	present, total := 0, 0
	for _, entry := range t[faculty.ID] {
		entry.AttendanceRate = attendanceRate(entry.PresentCount, entry.TotalMarks)
		report.Batches = append(report.Batches, *entry)
		report.Sessions += entry.Sessions
		present += entry.PresentCount
		total += entry.TotalMarks
	}
	sort.Slice(report.Batches, func(i, j int) bool { return report.Batches[i].BatchName < report.Batches[j].BatchName })
	report.AttendanceRate = attendanceRate(present, total)
	return report
}

// tally walks every scheduled session in [start, min(end, today)] and credits
// it to the acting faculty of that date.
func (s *AttendanceService) tally(ctx context.Context, start, end time.Time, onlyFaculty string) (sessionTally, error) {
	batches, err := s.batches.ListSchedules(ctx, models.BatchFilter{EndOnOrFrom: &start, StartBefore: &end})
	if err != nil {
		return nil, internalError(err, "failed to load batches")
	}
	subs, err := s.substitutions.ListInRange(ctx, start, end)
	if err != nil {
		return nil, internalError(err, "failed to load substitutions")
	}
	records, err := s.repo.ListInRange(ctx, start, end)
	if err != nil {
		return nil, internalError(err, "failed to load attendance")
	}
	marks := make(map[string][]models.StudentAttendance, len(records))
	for _, rec := range records {
		key := rec.BatchID + "|" + scheduling.FormatDate(rec.Date)
		marks[key] = append(marks[key], rec)
	}

	last := end
	if today := scheduling.Today(s.clock); today.Before(last) {
		last = today
	}
	tallies := make(sessionTally)
	for _, batch := range batches {
		from, to := laterDate(start, batch.StartDate), earlierDate(last, batch.EndDate)
		for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
			if !scheduling.RunsOn(batch.DaysOfWeek, scheduling.WeekdayName(day)) {
				continue
			}
			acting := scheduling.ResolveActingFaculty(batch, subs, day)
			if acting.FacultyID == "" || (onlyFaculty != "" && acting.FacultyID != onlyFaculty) {
				continue
			}
			entry := tallies.entry(acting.FacultyID, batch)
			entry.Sessions++
			if acting.Substituted {
				entry.SubstituteDays++
			}
			for _, mark := range marks[batch.ID+"|"+scheduling.FormatDate(day)] {
				entry.TotalMarks++
				if mark.IsPresent {
					entry.PresentCount++
				}
			}
		}
	}
	return tallies, nil
}

func (s *AttendanceService) facultyNames(ctx context.Context) (map[string]string, error) {
	faculty, err := s.faculty.List(ctx, models.FacultyFilter{})
	if err != nil {
		return nil, internalError(err, "failed to load faculty")
	}
	names := make(map[string]string, len(faculty))
	for _, f := range faculty {
		names[f.ID] = f.Name
	}
	return names, nil
}

func (s *AttendanceService) findBatch(ctx context.Context, id string) (*models.BatchDetail, error) {
	batch, err := s.batches.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, internalError(err, "failed to load batch")
	}
	return batch, nil
}

func batchReportDataset(report *models.BatchAttendanceReport, facultyNames map[string]string) export.Dataset {
	headers := []string{"Date", "Admission No", "Student", "Present", "Taught By"}
	dates := make([]string, 0, len(report.AttendanceByDate))
	for date := range report.AttendanceByDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	rows := make([]map[string]string, 0, len(dates)*len(report.Students))
	for _, date := range dates {
		marks := make(map[string]bool, len(report.AttendanceByDate[date]))
		for _, mark := range report.AttendanceByDate[date] {
			marks[mark.StudentID] = mark.IsPresent
		}
		taughtBy := report.TaughtBy[date]
		if name, ok := facultyNames[taughtBy]; ok {
			taughtBy = name
		}
		for _, student := range report.Students {
			present := "-"
			if value, ok := marks[student.ID]; ok {
				present = "no"
				if value {
					present = "yes"
				}
			}
			rows = append(rows, map[string]string{
				"Date":         date,
				"Admission No": student.AdmissionNumber,
				"Student":      student.Name,
				"Present":      present,
				"Taught By":    taughtBy,
			})
		}
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

// parseSessionDate accepts YYYY-MM-DD or a full timestamp and keeps the date part.
func parseSessionDate(raw string) (time.Time, error) {
	date, err := scheduling.ParseDate(raw)
	if err != nil {
		return time.Time{}, invalid("invalid date")
	}
	return date, nil
}

func attendanceRate(present, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(present)/float64(total)*10000) / 100
}

func laterDate(a, b time.Time) time.Time {
	a, b = scheduling.DateOnly(a), scheduling.DateOnly(b)
	if a.After(b) {
		return a
	}
	return b
}

func earlierDate(a, b time.Time) time.Time {
	a, b = scheduling.DateOnly(a), scheduling.DateOnly(b)
	if a.Before(b) {
		return a
	}
	return b
}

func slug(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, value)
}
