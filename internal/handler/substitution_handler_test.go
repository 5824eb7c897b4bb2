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

func TestSubstitutionHandlerCreate(t *testing.T) {
	detail := &models.SubstitutionDetail{BatchName: "Math101"}
	detail.ID = "sub-1"
	h := NewSubstitutionHandler(&substitutionServiceMock{sub: detail})

	payload := mustJSON(t, dto.CreateSubstitutionRequest{BatchID: "b1", SubstituteFacultyID: "f2", StartDate: "2024-06-05", EndDate: "2024-06-05"})
	c, w := newGinContext(http.MethodPost, "/substitution/temporary", payload)

	h.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	var got models.SubstitutionDetail
	decodeData(t, w, &got)
	assert.Equal(t, "sub-1", got.ID)
	assert.Equal(t, "Math101", got.BatchName)
}

func TestSubstitutionHandlerCreateOverlap(t *testing.T) {
	h := NewSubstitutionHandler(&substitutionServiceMock{err: appErrors.Clone(appErrors.ErrSchedulingConflict, "batch already has a substitution in that period")})
	c, w := newGinContext(http.MethodPost, "/substitution/temporary", mustJSON(t, dto.CreateSubstitutionRequest{BatchID: "b1"}))

	h.Create(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSubstitutionHandlerCancel(t *testing.T) {
	mockSvc := &substitutionServiceMock{}
	h := NewSubstitutionHandler(mockSvc)
	c, _ := newGinContext(http.MethodDelete, "/substitution/temporary/sub-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "sub-1"}}

	h.Cancel(c)

	assert.Equal(t, http.StatusNoContent, c.Writer.Status())
	assert.Equal(t, "sub-1", mockSvc.cancelled)
}

func TestSubstitutionHandlerMerge(t *testing.T) {
	mockSvc := &substitutionServiceMock{merge: &dto.MergeBatchesResponse{SourceBatchID: "b2", TargetBatchID: "b1", MovedStudents: 1}}
	h := NewSubstitutionHandler(mockSvc)
	c, w := newGinContext(http.MethodPost, "/substitution/merge", mustJSON(t, dto.MergeBatchesRequest{SourceBatchID: "b2", TargetBatchID: "b1"}))

	h.Merge(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "b2", mockSvc.mergeReq.SourceBatchID)
	var got dto.MergeBatchesResponse
	decodeData(t, w, &got)
	assert.EqualValues(t, 1, got.MovedStudents)
}
