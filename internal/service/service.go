// Package service holds business logic orchestration across repositories and handlers.
// Kept intentionally lean: only use-case coordination, validation and domain error shaping.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/maxviazov/pokemon-battle-service/internal/auth"
	"github.com/maxviazov/pokemon-battle-service/internal/model"
	"github.com/maxviazov/pokemon-battle-service/internal/repository"
)

// ErrInvalidInput is the marker error for aggregated validation failures (maps to HTTP 400).
// Field-level details are retrieved via FieldErrors(err).
var ErrInvalidInput = errors.New("invalid input")

// ErrInvalidState marks an operation that is not allowed in the entity's current state,
// e.g. adding a round to a finished battle or levelling up a pokemon at the cap.
var ErrInvalidState = errors.New("invalid state")

// ErrInvalidCredentials is returned by Login for an unknown user, an inactive user or a wrong password.
// All three cases look the same to the caller.
var ErrInvalidCredentials = errors.New("invalid credentials")

// FieldError describes a single invalid field in a client request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// invalidInputError aggregates multiple FieldError instances and unwraps to ErrInvalidInput.
type invalidInputError struct {
	fields []FieldError
}

func (e *invalidInputError) Error() string        { return ErrInvalidInput.Error() }
func (e *invalidInputError) Unwrap() error        { return ErrInvalidInput }
func (e *invalidInputError) Fields() []FieldError { return e.fields }

// newInvalidInput builds an aggregated validation error if any field errors are present.
func newInvalidInput(fe []FieldError) error {
	if len(fe) == 0 { // protective case
		return nil
	}
	return &invalidInputError{fields: fe}
}

// NewInvalidInputError lets the transport layer report malformed requests (bad path ids,
// unparsable bodies) with the same envelope the services use.
func NewInvalidInputError(fe []FieldError) error {
	return newInvalidInput(fe)
}

// FieldErrors extracts field errors from an aggregated validation error.
func FieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}
	type feIface interface{ Fields() []FieldError }
	var v feIface
	if errors.As(err, &v) && errors.Is(err, ErrInvalidInput) {
		return v.Fields()
	}
	return nil
}

type stateError struct {
	msg string
}

func (e *stateError) Error() string { return ErrInvalidState.Error() + ": " + e.msg }
func (e *stateError) Unwrap() error { return ErrInvalidState }

// NewStateError returns an error wrapping ErrInvalidState with a client-facing message.
func NewStateError(msg string) error {
	return &stateError{msg: msg}
}

// StateMessage returns the message carried by a state error, or "" for any other error.
func StateMessage(err error) string {
	var se *stateError
	if errors.As(err, &se) {
		return se.msg
	}
	return ""
}

// takenError reports which unique user field a registration collided on.
type takenError struct {
	field string
}

func (e *takenError) Error() string { return e.field + " " + repository.ErrAlreadyExists.Error() }
func (e *takenError) Unwrap() error { return repository.ErrAlreadyExists }

// NewTakenError reports a registration conflict on the named unique field.
func NewTakenError(field string) error {
	return &takenError{field: field}
}

// TakenField returns "username" or "email" for a registration conflict, or "" for any other error.
func TakenField(err error) string {
	var te *takenError
	if errors.As(err, &te) {
		return te.field
	}
	return ""
}

// PokemonInput carries the writable pokemon fields.
type PokemonInput struct {
	Name    string
	Type    string
	Level   int
	Ability string
}

// TrainerInput carries the writable trainer fields. The team is managed separately.
type TrainerInput struct {
	Name       string
	Age        int
	Region     string
	BadgeCount int
}

// RoundInput describes a round to append to a battle.
type RoundInput struct {
	Pokemon1ID      int64
	Pokemon2ID      int64
	WinnerPokemonID *int64
	Description     string
}

// RegisterInput is a sign-up request.
type RegisterInput struct {
	Username        string
	Password        string
	ConfirmPassword string
	Email           string
}

// PokemonService defines pokemon-oriented use cases.
type PokemonService interface {
	CreatePokemon(ctx context.Context, in PokemonInput) (model.Pokemon, error)
	UpdatePokemon(ctx context.Context, id int64, in PokemonInput) (model.Pokemon, error)
	DeletePokemon(ctx context.Context, id int64) error
	GetPokemon(ctx context.Context, id int64) (model.Pokemon, error)
	GetPokemonByName(ctx context.Context, name string) (model.Pokemon, error)
	ListPokemon(ctx context.Context, page repository.Page) (repository.PageResult[model.Pokemon], error)
	ListPokemonByType(ctx context.Context, typ string) ([]model.Pokemon, error)
	ListPokemonByAbility(ctx context.Context, ability string) ([]model.Pokemon, error)
	ListPokemonByLevel(ctx context.Context, minLevel, maxLevel int) ([]model.Pokemon, error)
	LevelUpPokemon(ctx context.Context, id int64) (model.Pokemon, error)
	ChangePokemonAbility(ctx context.Context, id int64, ability string) (model.Pokemon, error)
}

// TrainerService defines trainer-oriented use cases, including team management.
type TrainerService interface {
	CreateTrainer(ctx context.Context, in TrainerInput) (model.Trainer, error)
	UpdateTrainer(ctx context.Context, id int64, in TrainerInput) (model.Trainer, error)
	DeleteTrainer(ctx context.Context, id int64) error
	GetTrainer(ctx context.Context, id int64) (model.Trainer, error)
	GetTrainerByName(ctx context.Context, name string) (model.Trainer, error)
	ListTrainers(ctx context.Context, page repository.Page) (repository.PageResult[model.Trainer], error)
	ListTrainersByRegion(ctx context.Context, region string) ([]model.Trainer, error)
	AssignPokemon(ctx context.Context, trainerID, pokemonID int64) (model.Trainer, error)
	RemovePokemon(ctx context.Context, trainerID, pokemonID int64) (model.Trainer, error)
}

// BattleService owns the battle state machine and the statistics derived from it.
type BattleService interface {
	CreateBattle(ctx context.Context, trainer1ID, trainer2ID int64, location string) (model.Battle, error)
	StartBattle(ctx context.Context, id int64) (model.Battle, error)
	AddRound(ctx context.Context, battleID int64, in RoundInput) (model.Battle, error)
	SetWinner(ctx context.Context, battleID, winnerID int64) (model.Battle, error)
	SetDraw(ctx context.Context, battleID int64) (model.Battle, error)
	Cancel(ctx context.Context, battleID int64) (model.Battle, error)
	AddNotes(ctx context.Context, battleID int64, notes string) (model.Battle, error)
	DeleteBattle(ctx context.Context, battleID int64) error
	GetBattle(ctx context.Context, id int64) (model.Battle, error)
	ListBattles(ctx context.Context, page repository.Page) (repository.PageResult[model.Battle], error)
	ListBattlesByTrainer(ctx context.Context, trainerID int64) ([]model.Battle, error)
	ListBattlesByResult(ctx context.Context, result model.BattleResult) ([]model.Battle, error)
	GetBattleHistory(ctx context.Context, trainer1ID, trainer2ID int64) ([]model.Battle, error)
	GetRecentBattles(ctx context.Context, days int) ([]model.Battle, error)
	GetStatistics(ctx context.Context, trainerID int64) (model.BattleStatistics, error)
	GetSummary(ctx context.Context) (model.BattleSummary, error)
}

// AuthService defines registration, login and user administration use cases.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (model.AuthResult, error)
	Login(ctx context.Context, username, password string) (model.AuthResult, error)
	Refresh(ctx context.Context, claims *auth.Claims) (model.AuthResult, error)
	ValidateToken(token string) (*auth.Claims, error)
	ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error
	UserExists(ctx context.Context, username string) (bool, error)
	GetUserByID(ctx context.Context, id int64) (model.User, error)
	GetUserByUsername(ctx context.Context, username string) (model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUserRole(ctx context.Context, userID int64, role model.Role) (bool, error)
}

// Option tunes a service. Unused options are ignored by services that do not need them.
type Option func(*options)

type options struct {
	now        func() time.Time
	loginDelay func(context.Context) error
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLoginDelay replaces the randomized pause applied before every login check.
func WithLoginDelay(fn func(context.Context) error) Option {
	return func(o *options) { o.loginDelay = fn }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, loginDelay: randomLoginDelay}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
