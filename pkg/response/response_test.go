package response_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/maxviazov/pokemon-battle-service/internal/auth"
	"github.com/maxviazov/pokemon-battle-service/internal/repository"
	"github.com/maxviazov/pokemon-battle-service/internal/service"
	"github.com/maxviazov/pokemon-battle-service/pkg/response"
)

// fakeInvalid mimics service aggregated validation error to test mapping without reaching into internals.
type fakeInvalid struct{ fe []service.FieldError }

func (f *fakeInvalid) Error() string                { return service.ErrInvalidInput.Error() }
func (f *fakeInvalid) Unwrap() error                { return service.ErrInvalidInput }
func (f *fakeInvalid) Fields() []service.FieldError { return f.fe }

func TestMapError(t *testing.T) {
	cases := []struct {
		name     string
		in       error
		wantCode int
		wantErr  string
	}{
		{"invalid_input", &fakeInvalid{fe: []service.FieldError{{Field: "name", Message: "bad"}}}, 400, "invalid_input"},
		{"invalid_state", service.NewStateError("battle is not in progress"), 400, "invalid_state"},
		{"not_found", repository.ErrNotFound, 404, "not_found"},
		{"wrapped_not_found", fmt.Errorf("get trainer: %w", repository.ErrNotFound), 404, "not_found"},
		{"already_exists", repository.ErrAlreadyExists, 409, "already_exists"},
		{"credentials", service.ErrInvalidCredentials, 401, "invalid_credentials"},
		{"token", auth.ErrInvalidToken, 401, "unauthorized"},
		{"missing_token", auth.ErrMissingToken, 401, "unauthorized"},
		{"forbidden", auth.ErrForbidden, 403, "forbidden"},
		{"closed", repository.ErrClosed, 503, "unavailable"},
		{"internal", errors.New("boom"), 500, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, payload := response.MapError(tc.in)
			assert.Equal(t, tc.wantCode, code)
			assert.Equal(t, tc.wantErr, payload.Error)
			if tc.wantErr == "invalid_input" {
				assert.NotEmpty(t, payload.FieldErrors)
			}
		})
	}
}

func TestMapError_StateMessage(t *testing.T) {
	_, payload := response.MapError(service.NewStateError("pokemon is already at max level"))
	assert.Equal(t, "pokemon is already at max level", payload.Message)
}

func TestMapError_TakenField(t *testing.T) {
	code, payload := response.MapError(fmt.Errorf("register: %w", service.NewTakenError("email")))
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "already_exists", payload.Error)
	assert.Equal(t, "email is already taken", payload.Message)

	_, payload = response.MapError(repository.ErrAlreadyExists)
	assert.Empty(t, payload.Message)
}

func TestWriteError_AbortsAndRecords(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	response.WriteError(c, repository.ErrNotFound)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.True(t, c.IsAborted())
	assert.Len(t, c.Errors, 1)
	assert.JSONEq(t, `{"error":"not_found"}`, w.Body.String())
}
