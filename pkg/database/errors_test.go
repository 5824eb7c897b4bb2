package database

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
)

func TestClassifyError(t *testing.T) {
	cases := []struct {
		name   string
		code   string
		status int
		appErr string
	}{
		{name: "unique", code: CodeUniqueViolation, status: http.StatusConflict, appErr: "INTEGRITY_VIOLATION"},
		{name: "foreign key", code: CodeForeignKeyViolation, status: http.StatusBadRequest, appErr: "INTEGRITY_VIOLATION"},
		{name: "exclusion", code: CodeExclusionViolation, status: http.StatusConflict, appErr: "SCHEDULING_CONFLICT"},
		{name: "check", code: CodeCheckViolation, status: http.StatusBadRequest, appErr: "VALIDATION_ERROR"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := fmt.Errorf("insert: %w", &pq.Error{Code: pq.ErrorCode(tc.code)})
			var appErr *appErrors.Error
			require.ErrorAs(t, ClassifyError(wrapped), &appErr)
			assert.Equal(t, tc.status, appErr.Status)
			assert.Equal(t, tc.appErr, appErr.Code)
		})
	}
}

func TestClassifyErrorPassThrough(t *testing.T) {
	assert.Nil(t, ClassifyError(nil))
	plain := errors.New("boom")
	assert.Same(t, plain, ClassifyError(plain))
	other := &pq.Error{Code: "42P01"}
	assert.Equal(t, error(other), ClassifyError(other))
	assert.True(t, IsUniqueViolation(&pq.Error{Code: CodeUniqueViolation}))
}
