package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupPayload struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required,max=10"`
}

func TestValidatorUsesJSONFieldNames(t *testing.T) {
	v := NewValidator()
	err := v.Struct(signupPayload{Email: "nope", Name: ""})
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Fields, 2)
	assert.Equal(t, []string{"email"}, verr.Fields[0].Path)
	assert.Equal(t, []string{"name"}, verr.Fields[1].Path)
	assert.Contains(t, verr.Fields[1].Message, "required")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestValidatorAcceptsValidPayload(t *testing.T) {
	require.NoError(t, NewValidator().Struct(signupPayload{Email: "a@b.io", Name: "Ana"}))
}

func TestRespondErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("clubs: get: %w", ErrNotFound), http.StatusNotFound},
		{ErrDuplicate, http.StatusConflict},
		{ErrForbidden, http.StatusForbidden},
		{ErrUnauthorized, http.StatusUnauthorized},
		{fmt.Errorf("%w: malformed JSON body", ErrValidation), http.StatusUnprocessableEntity},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		RespondError(rec, tc.err)
		assert.Equal(t, tc.status, rec.Code, tc.err.Error())
	}
}

func TestRespondErrorWritesPathArrayBody(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, fmt.Errorf("users: create: %w", NewValidationError("email", "email is taken")))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body struct {
		Message string       `json:"message"`
		Errors  []FieldError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "email", body.Errors[0].Path[0])
	assert.Equal(t, "email is taken", body.Errors[0].Message)
	assert.NotEmpty(t, body.Message)
}

func TestInternalErrorHidesDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, errors.New("pq: connection refused"))
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestDecodeJSONRejectsMalformedBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":`))
	var dst signupPayload
	err := DecodeJSON(req, &dst)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestDecodeJSONReportsTypeMismatchOnField(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":42}`))
	var dst signupPayload
	err := DecodeJSON(req, &dst)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "email", verr.Fields[0].Path[0])
}
