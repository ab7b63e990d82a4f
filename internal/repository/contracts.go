package repository

import (
	"context"
	"time"

	"github.com/maxviazov/pokemon-battle-service/internal/model"
)

// Pinger represents a minimal readiness check capability.
// I use it to decouple health checks from storage implementation details.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Mutation edits an entity in place while the repository holds its write lock.
// Returning an error discards the edit.
type Mutation[T any] func(*T) error

// PokemonRepository declares storage operations for pokemon.
// Lists are ordered by id.
type PokemonRepository interface {
	Create(ctx context.Context, p model.Pokemon) (model.Pokemon, error)
	GetByID(ctx context.Context, id int64) (model.Pokemon, error)
	// GetByName matches case-insensitively.
	GetByName(ctx context.Context, name string) (model.Pokemon, error)
	List(ctx context.Context) ([]model.Pokemon, error)
	Update(ctx context.Context, id int64, fn Mutation[model.Pokemon]) (model.Pokemon, error)
	Delete(ctx context.Context, id int64) error
}

// TrainerRepository declares storage operations for trainers.
type TrainerRepository interface {
	Create(ctx context.Context, t model.Trainer) (model.Trainer, error)
	GetByID(ctx context.Context, id int64) (model.Trainer, error)
	GetByName(ctx context.Context, name string) (model.Trainer, error)
	List(ctx context.Context) ([]model.Trainer, error)
	Update(ctx context.Context, id int64, fn Mutation[model.Trainer]) (model.Trainer, error)
	Delete(ctx context.Context, id int64) error
}

// BattleRepository declares storage operations for battles.
// Every returned battle is a deep copy; the only way to edit one is Update.
type BattleRepository interface {
	Create(ctx context.Context, b model.Battle) (model.Battle, error)
	GetByID(ctx context.Context, id int64) (model.Battle, error)
	List(ctx context.Context) ([]model.Battle, error)
	ListByTrainer(ctx context.Context, trainerID int64) ([]model.Battle, error)
	ListBetween(ctx context.Context, trainer1ID, trainer2ID int64) ([]model.Battle, error)
	// ListByDateRange compares calendar dates, so time of day on either bound is ignored.
	ListByDateRange(ctx context.Context, from, to time.Time) ([]model.Battle, error)
	ListByResult(ctx context.Context, result model.BattleResult) ([]model.Battle, error)
	Update(ctx context.Context, id int64, fn Mutation[model.Battle]) (model.Battle, error)
	Delete(ctx context.Context, id int64) error
}

// UserRepository declares storage operations for auth users.
// Create enforces case-insensitive uniqueness of username and email and reports ErrAlreadyExists.
type UserRepository interface {
	Create(ctx context.Context, u model.User) (model.User, error)
	GetByID(ctx context.Context, id int64) (model.User, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, id int64, fn Mutation[model.User]) (model.User, error)
}
