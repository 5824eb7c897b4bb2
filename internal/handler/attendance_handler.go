package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coaching-center-api/internal/dto"
	"github.com/noah-isme/coaching-center-api/internal/models"
	"github.com/noah-isme/coaching-center-api/internal/service"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
	"github.com/noah-isme/coaching-center-api/pkg/export"
	"github.com/noah-isme/coaching-center-api/pkg/response"
)

type attendanceService interface {
	Save(ctx context.Context, req dto.SaveAttendanceRequest, claims *models.JWTClaims) ([]models.StudentAttendance, error)
	Daily(ctx context.Context, batchID, rawDate string) (*dto.DailySheet, error)
	BatchReport(ctx context.Context, batchID string, query dto.DateRangeQuery) (*models.BatchAttendanceReport, error)
	ExportBatchReport(ctx context.Context, batchID string, query dto.DateRangeQuery) (*service.ExportFile, error)
	FacultyReport(ctx context.Context, facultyID string, query dto.DateRangeQuery) (*models.FacultyAttendanceReport, error)
	OverallReport(ctx context.Context, query dto.DateRangeQuery) ([]models.FacultyAttendanceReport, error)
}

// AttendanceHandler exposes attendance recording and reporting.
type AttendanceHandler struct {
	attendance attendanceService
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance attendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// Save godoc
// @Summary Record attendance for a session
// @Description Faculty accounts may only record sessions they are acting faculty for
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.SaveAttendanceRequest true "Attendance marks"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.ErrorBody
// @Router /attendance [post]
func (h *AttendanceHandler) Save(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.SaveAttendanceRequest
	if !bindJSON(c, &req) {
		return
	}
	records, err := h.attendance.Save(c.Request.Context(), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// Daily godoc
// @Summary Attendance sheet of one session
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param batchId path string true "Batch ID"
// @Param date query string true "Session date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /attendance/batch/{batchId}/daily [get]
func (h *AttendanceHandler) Daily(c *gin.Context) {
	sheet, err := h.attendance.Daily(c.Request.Context(), c.Param("batchId"), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sheet, nil)
}

// BatchReport godoc
// @Summary Attendance report of a batch
// @Description format=csv or format=pdf downloads the report instead of returning JSON
// @Tags Reports
// @Produce json
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param batchId path string true "Batch ID"
// @Param startDate query string true "First date"
// @Param endDate query string true "Last date"
// @Param format query string false "json, csv or pdf"
// @Success 200 {object} response.Envelope
// @Router /attendance/reports/batch/{batchId} [get]
func (h *AttendanceHandler) BatchReport(c *gin.Context) {
	var query dto.DateRangeQuery
	if !bindQuery(c, &query) {
		return
	}
	batchID := c.Param("batchId")

	if _, ok := export.ParseFormat(query.Format); ok {
		file, err := h.attendance.ExportBatchReport(c.Request.Context(), batchID, query)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.File(c, file.Filename, file.ContentType, file.Payload)
		return
	}

	report, err := h.attendance.BatchReport(c.Request.Context(), batchID, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// FacultyReport godoc
// @Summary Attendance report of a faculty
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param facultyId path string true "Faculty ID"
// @Param startDate query string true "First date"
// @Param endDate query string true "Last date"
// @Success 200 {object} response.Envelope
// @Router /attendance/reports/faculty/{facultyId} [get]
func (h *AttendanceHandler) FacultyReport(c *gin.Context) {
	var query dto.DateRangeQuery
	if !bindQuery(c, &query) {
		return
	}
	report, err := h.attendance.FacultyReport(c.Request.Context(), c.Param("facultyId"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// OverallReport godoc
// @Summary Attendance report across all faculty
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param startDate query string true "First date"
// @Param endDate query string true "Last date"
// @Success 200 {object} response.Envelope
// @Router /attendance/reports/overall [get]
func (h *AttendanceHandler) OverallReport(c *gin.Context) {
	var query dto.DateRangeQuery
	if !bindQuery(c, &query) {
		return
	}
	reports, err := h.attendance.OverallReport(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reports, nil)
}
