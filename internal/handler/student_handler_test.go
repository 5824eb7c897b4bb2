package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-center-api/internal/dto"
	"github.com/noah-isme/coaching-center-api/internal/models"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
)

func TestStudentHandlerListMapsQuery(t *testing.T) {
	mockSvc := &studentServiceMock{
		students:   []models.Student{{ID: "s1", Name: "Ria"}},
		pagination: &models.Pagination{Page: 2, PageSize: 10, TotalCount: 11},
	}
	h := NewStudentHandler(mockSvc)
	c, w := newGinContext(http.MethodGet, "/students?search=%20ri%20&unassigned=true&page=2&pageSize=10", nil)

	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StudentFilter{Search: "ri", Unassigned: true, Page: 2, PageSize: 10}, mockSvc.lastFilter)
	assert.JSONEq(t, `{"page":2,"page_size":10,"total_count":11}`, extractField(t, w.Body.Bytes(), "pagination"))
}

func TestStudentHandlerListRejectsBadPage(t *testing.T) {
	h := NewStudentHandler(&studentServiceMock{})
	c, w := newGinContext(http.MethodGet, "/students?page=abc", nil)

	h.List(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStudentHandlerCreateDuplicate(t *testing.T) {
	h := NewStudentHandler(&studentServiceMock{err: appErrors.Clone(appErrors.ErrDuplicate, "admission number already used")})
	c, w := newGinContext(http.MethodPost, "/students", mustJSON(t, dto.StudentRequest{Name: "Ria", AdmissionNumber: "ADM-1"}))

	h.Create(c)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "admission number already used", decodeError(t, w).Error)
}

func TestStudentHandlerBatches(t *testing.T) {
	h := NewStudentHandler(&studentServiceMock{batches: []models.BatchDetail{
		{Batch: models.Batch{ID: "b1", Name: "Math101"}, Status: models.BatchStatusActive},
	}})
	c, w := newGinContext(http.MethodGet, "/students/s1/batches", nil)
	c.Params = gin.Params{{Key: "id", Value: "s1"}}

	h.Batches(c)

	require.Equal(t, http.StatusOK, w.Code)
	var got []models.BatchDetail
	decodeData(t, w, &got)
	require.Len(t, got, 1)
	assert.Equal(t, models.BatchStatusActive, got[0].Status)
}
