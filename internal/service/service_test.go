package service_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/maxviazov/pokemon-battle-service/internal/service"
)

func TestFieldErrors(t *testing.T) {
	err := service.NewInvalidInputError([]service.FieldError{{Field: "id", Message: "must be > 0"}})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
	assert.Equal(t, []service.FieldError{{Field: "id", Message: "must be > 0"}}, service.FieldErrors(err))

	wrapped := fmt.Errorf("handler: %w", err)
	assert.Len(t, service.FieldErrors(wrapped), 1)

	assert.Nil(t, service.NewInvalidInputError(nil))
	assert.Nil(t, service.FieldErrors(errors.New("plain")))
	assert.Nil(t, service.FieldErrors(nil))
}

func TestStateError(t *testing.T) {
	err := service.NewStateError("battle is not in progress")
	assert.ErrorIs(t, err, service.ErrInvalidState)
	assert.Equal(t, "battle is not in progress", service.StateMessage(err))
	assert.Equal(t, "", service.StateMessage(errors.New("other")))
}
