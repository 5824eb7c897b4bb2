package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-center-api/internal/dto"
	"github.com/noah-isme/coaching-center-api/internal/middleware"
	"github.com/noah-isme/coaching-center-api/internal/models"
	"github.com/noah-isme/coaching-center-api/internal/scheduling"
	"github.com/noah-isme/coaching-center-api/internal/service"
	"github.com/noah-isme/coaching-center-api/pkg/response"
)

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func withClaims(c *gin.Context, role models.UserRole, facultyID string) {
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: role, FacultyID: facultyID})
}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	payload, err := json.Marshal(v)
	require.NoError(t, err)
	return payload
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, dest))
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) response.ErrorBody {
	t.Helper()
	var body response.ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

type facultyServiceMock struct {
	list        []models.Faculty
	listSkill   string
	faculty     *models.Faculty
	createReq   dto.CreateFacultyRequest
	createActor string
	windows     []models.AvailabilityWindow
	deleted     string
	err         error
}

func (m *facultyServiceMock) List(ctx context.Context, skillID string) ([]models.Faculty, error) {
	m.listSkill = skillID
	return m.list, m.err
}

func (m *facultyServiceMock) Get(ctx context.Context, id string) (*models.Faculty, error) {
	return m.faculty, m.err
}

func (m *facultyServiceMock) Create(ctx context.Context, req dto.CreateFacultyRequest, actorID string) (*models.Faculty, error) {
	m.createReq = req
	m.createActor = actorID
	return m.faculty, m.err
}

func (m *facultyServiceMock) Update(ctx context.Context, id string, req dto.UpdateFacultyRequest, actorID string) (*models.Faculty, error) {
	return m.faculty, m.err
}

func (m *facultyServiceMock) Delete(ctx context.Context, id, actorID string) error {
	m.deleted = id
	return m.err
}

func (m *facultyServiceMock) Skills(ctx context.Context) ([]models.Skill, error) {
	return []models.Skill{}, m.err
}

func (m *facultyServiceMock) Availability(ctx context.Context, facultyID string) ([]models.AvailabilityWindow, error) {
	return m.windows, m.err
}

func (m *facultyServiceMock) SetAvailability(ctx context.Context, facultyID string, req dto.SetAvailabilityRequest, actorID string) ([]models.AvailabilityWindow, error) {
	return m.windows, m.err
}

type batchServiceMock struct {
	list     []models.BatchDetail
	lastOpts service.BatchListOptions
	batch    *models.BatchDetail
	students []models.Student
	count    int
	err      error
}

func (m *batchServiceMock) List(ctx context.Context, opts service.BatchListOptions) ([]models.BatchDetail, error) {
	m.lastOpts = opts
	return m.list, m.err
}

func (m *batchServiceMock) Get(ctx context.Context, id string) (*models.BatchDetail, error) {
	return m.batch, m.err
}

func (m *batchServiceMock) Create(ctx context.Context, req dto.BatchRequest, actorID string) (*models.BatchDetail, error) {
	return m.batch, m.err
}

func (m *batchServiceMock) Update(ctx context.Context, id string, req dto.BatchRequest, actorID string) (*models.BatchDetail, error) {
	return m.batch, m.err
}

func (m *batchServiceMock) Delete(ctx context.Context, id, actorID string) error {
	return m.err
}

func (m *batchServiceMock) Students(ctx context.Context, id string) ([]models.Student, error) {
	return m.students, m.err
}

func (m *batchServiceMock) ActiveStudentCount(ctx context.Context) (int, error) {
	return m.count, m.err
}

type substitutionServiceMock struct {
	subs      []models.SubstitutionDetail
	sub       *models.SubstitutionDetail
	batch     *models.BatchDetail
	merge     *dto.MergeBatchesResponse
	cancelled string
	mergeReq  dto.MergeBatchesRequest
	err       error
}

func (m *substitutionServiceMock) ListCurrent(ctx context.Context) ([]models.SubstitutionDetail, error) {
	return m.subs, m.err
}

func (m *substitutionServiceMock) Create(ctx context.Context, req dto.CreateSubstitutionRequest, actorID string) (*models.SubstitutionDetail, error) {
	return m.sub, m.err
}

func (m *substitutionServiceMock) Update(ctx context.Context, id string, req dto.UpdateSubstitutionRequest, actorID string) (*models.SubstitutionDetail, error) {
	return m.sub, m.err
}

func (m *substitutionServiceMock) Cancel(ctx context.Context, id, actorID string) error {
	m.cancelled = id
	return m.err
}

func (m *substitutionServiceMock) Assign(ctx context.Context, req dto.AssignFacultyRequest, actorID string) (*models.BatchDetail, error) {
	return m.batch, m.err
}

func (m *substitutionServiceMock) Merge(ctx context.Context, req dto.MergeBatchesRequest, actorID string) (*dto.MergeBatchesResponse, error) {
	m.mergeReq = req
	return m.merge, m.err
}

type schedulingServiceMock struct {
	slots       []scheduling.FacultyFreeSlots
	lastQuery   dto.FreeSlotsQuery
	suggestions []scheduling.Suggestion
	lastSuggest dto.SuggestFacultyRequest
	err         error
}

func (m *schedulingServiceMock) FreeSlots(ctx context.Context, query dto.FreeSlotsQuery) ([]scheduling.FacultyFreeSlots, error) {
	m.lastQuery = query
	return m.slots, m.err
}

func (m *schedulingServiceMock) Suggest(ctx context.Context, req dto.SuggestFacultyRequest) ([]scheduling.Suggestion, error) {
	m.lastSuggest = req
	return m.suggestions, m.err
}

type studentServiceMock struct {
	students   []models.Student
	pagination *models.Pagination
	lastFilter models.StudentFilter
	student    *models.Student
	batches    []models.BatchDetail
	err        error
}

func (m *studentServiceMock) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	m.lastFilter = filter
	return m.students, m.pagination, m.err
}

func (m *studentServiceMock) Get(ctx context.Context, id string) (*models.Student, error) {
	return m.student, m.err
}

func (m *studentServiceMock) Create(ctx context.Context, req dto.StudentRequest, actorID string) (*models.Student, error) {
	return m.student, m.err
}

func (m *studentServiceMock) Update(ctx context.Context, id string, req dto.StudentRequest, actorID string) (*models.Student, error) {
	return m.student, m.err
}

func (m *studentServiceMock) Delete(ctx context.Context, id, actorID string) error {
	return m.err
}

func (m *studentServiceMock) Batches(ctx context.Context, id string) ([]models.BatchDetail, error) {
	return m.batches, m.err
}

type attendanceServiceMock struct {
	saved        []models.StudentAttendance
	savedClaims  *models.JWTClaims
	sheet        *dto.DailySheet
	dailyDate    string
	report       *models.BatchAttendanceReport
	file         *service.ExportFile
	exportCalled bool
	faculty      *models.FacultyAttendanceReport
	overall      []models.FacultyAttendanceReport
	lastQuery    dto.DateRangeQuery
	err          error
}

func (m *attendanceServiceMock) Save(ctx context.Context, req dto.SaveAttendanceRequest, claims *models.JWTClaims) ([]models.StudentAttendance, error) {
	m.savedClaims = claims
	return m.saved, m.err
}

func (m *attendanceServiceMock) Daily(ctx context.Context, batchID, rawDate string) (*dto.DailySheet, error) {
	m.dailyDate = rawDate
	return m.sheet, m.err
}

func (m *attendanceServiceMock) BatchReport(ctx context.Context, batchID string, query dto.DateRangeQuery) (*models.BatchAttendanceReport, error) {
	m.lastQuery = query
	return m.report, m.err
}

func (m *attendanceServiceMock) ExportBatchReport(ctx context.Context, batchID string, query dto.DateRangeQuery) (*service.ExportFile, error) {
	m.exportCalled = true
	m.lastQuery = query
	return m.file, m.err
}

func (m *attendanceServiceMock) FacultyReport(ctx context.Context, facultyID string, query dto.DateRangeQuery) (*models.FacultyAttendanceReport, error) {
	m.lastQuery = query
	return m.faculty, m.err
}

func (m *attendanceServiceMock) OverallReport(ctx context.Context, query dto.DateRangeQuery) ([]models.FacultyAttendanceReport, error) {
	m.lastQuery = query
	return m.overall, m.err
}

type activityServiceMock struct {
	limit int
	list  []models.Activity
	err   error
}

func (m *activityServiceMock) List(ctx context.Context, limit int) ([]models.Activity, error) {
	m.limit = limit
	return m.list, m.err
}

func extractField(t *testing.T, body []byte, field string) string {
	t.Helper()
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &raw))
	value, ok := raw[field]
	require.True(t, ok, "missing field %s", field)
	return string(value)
}

type userServiceMock struct {
	users      []models.User
	pagination *models.Pagination
	lastFilter models.UserFilter
	lastActor  string
	lastAssign dto.AssignRoleRequest
	user       *models.User
	err        error
}

func (m *userServiceMock) List(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	m.lastFilter = filter
	return m.users, m.pagination, m.err
}

func (m *userServiceMock) Create(ctx context.Context, req dto.CreateUserRequest, actorID string) (*models.User, error) {
	m.lastActor = actorID
	return m.user, m.err
}

func (m *userServiceMock) AssignRole(ctx context.Context, req dto.AssignRoleRequest, actorID string) (*models.User, error) {
	m.lastAssign = req
	m.lastActor = actorID
	return m.user, m.err
}
