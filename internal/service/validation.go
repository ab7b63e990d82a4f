package service

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/maxviazov/pokemon-battle-service/internal/model"
	"github.com/maxviazov/pokemon-battle-service/internal/repository"
)

const (
	maxNameLength     = 100
	minUsernameLength = 3
	minPasswordLength = 6
	maxNotesLength    = 2000

	// DefaultRecentDays is the window used by GetRecentBattles when the caller gives none.
	DefaultRecentDays = 30
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func normalizePage(p repository.Page) repository.Page {
	return p.Normalize()
}

func checkID(field string, id int64) []FieldError {
	if id <= 0 {
		return []FieldError{{Field: field, Message: "must be > 0"}}
	}
	return nil
}

// invalidID is the common shortcut for single-id operations.
func invalidID(field string, id int64) error {
	return newInvalidInput(checkID(field, id))
}

func checkName(field, value string) []FieldError {
	if value == "" {
		return []FieldError{{Field: field, Message: "must not be empty"}}
	}
	if len([]rune(value)) > maxNameLength {
		return []FieldError{{Field: field, Message: "must be at most 100 characters"}}
	}
	return nil
}

func checkLevel(level int) []FieldError {
	if level < model.MinPokemonLevel || level > model.MaxPokemonLevel {
		return []FieldError{{Field: "level", Message: "must be between 1 and 100"}}
	}
	return nil
}

func isValidEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}

// matchFold is a case-insensitive equality on trimmed values.
func matchFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// randomLoginDelay pauses 100-300ms or until ctx ends, so response timing does not reveal which usernames exist.
func randomLoginDelay(ctx context.Context) error {
	d := time.Duration(100+rand.IntN(201)) * time.Millisecond
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
