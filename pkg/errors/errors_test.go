package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsCarryTypeAndStatus(t *testing.T) {
	cases := []struct {
		err    *AppError
		typ    ErrorType
		status int
	}{
		{NewNotFoundError("node"), ErrorTypeNotFound, http.StatusNotFound},
		{NewInvalidDataError("bad"), ErrorTypeInvalidData, http.StatusBadRequest},
		{NewConflictError("dup"), ErrorTypeConflict, http.StatusConflict},
		{NewBusinessRuleError("cycle"), ErrorTypeBusinessRule, http.StatusUnprocessableEntity},
		{NewValidationError("blank"), ErrorTypeValidation, http.StatusBadRequest},
		{NewUnauthorizedError(""), ErrorTypeUnauthorized, http.StatusUnauthorized},
		{NewInternalError("boom"), ErrorTypeInternal, http.StatusInternalServerError},
		{NewDatabaseError("insert", errors.New("locked")), ErrorTypeDatabase, http.StatusInternalServerError},
		{NewNetworkError("down", errors.New("refused")), ErrorTypeNetwork, http.StatusBadGateway},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.typ, tc.err.Type, string(tc.typ))
		assert.Equal(t, tc.status, tc.err.HTTPStatus, string(tc.typ))
		assert.NotEmpty(t, tc.err.StackTrace, string(tc.typ))
	}
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	err := NewNotFoundError("node")
	wrapped := fmt.Errorf("loading graph: %w", err)

	assert.True(t, IsAppError(wrapped))
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsConflict(wrapped))

	require.NotNil(t, GetAppError(wrapped))
	assert.Equal(t, ErrorTypeNotFound, GetAppError(wrapped).Type)

	assert.False(t, IsAppError(errors.New("plain")))
	assert.Nil(t, GetAppError(errors.New("plain")))
}

func TestWrapPreservesAppErrorType(t *testing.T) {
	err := Wrap(NewConflictError("edge exists"), "creating link")

	assert.True(t, IsConflict(err))
	assert.Contains(t, err.Error(), "creating link")
	assert.Contains(t, err.Error(), "edge exists")
}

func TestWrapPromotesPlainErrors(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := Wrap(cause, "reading payload")

	assert.True(t, IsInternal(err))
	assert.ErrorIs(t, err, cause)

	assert.Nil(t, Wrap(nil, "noop"))
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := errors.New("locked")
	err := NewDatabaseError("insert", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "caused by")
}

func TestWithCodeAndDetails(t *testing.T) {
	err := NewValidationError("name too long").
		WithCode("NAME_LENGTH").
		WithDetails(map[string]interface{}{"max": 500})

	assert.Equal(t, "NAME_LENGTH", err.Code)
	assert.Equal(t, 500, err.Details["max"])
}
