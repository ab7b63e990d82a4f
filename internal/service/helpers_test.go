package service_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/pokemon-battle-service/internal/model"
	"github.com/maxviazov/pokemon-battle-service/internal/repository/memory"
	"github.com/maxviazov/pokemon-battle-service/internal/service"
)

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type env struct {
	store    *memory.Store
	pokemon  service.PokemonService
	trainers service.TrainerService
	battles  service.BattleService
	clock    *time.Time
}

func newEnv(t *testing.T) *env {
	t.Helper()
	logger := zerolog.New(io.Discard)
	store := memory.NewStore(logger)
	now := fixedNow
	e := &env{store: store, clock: &now}
	clock := service.WithClock(func() time.Time { return *e.clock })
	e.pokemon = service.NewPokemonService(store.Pokemon, logger)
	e.trainers = service.NewTrainerService(store.Trainers, store.Pokemon, logger, clock)
	e.battles = service.NewBattleService(store.Battles, store.Trainers, store.Pokemon, logger, clock)
	return e
}

func (e *env) trainer(t *testing.T, name string) model.Trainer {
	t.Helper()
	tr, err := e.trainers.CreateTrainer(context.Background(), service.TrainerInput{Name: name, Region: "Kanto"})
	require.NoError(t, err)
	return tr
}

func (e *env) mon(t *testing.T, name string, level int) model.Pokemon {
	t.Helper()
	p, err := e.pokemon.CreatePokemon(context.Background(), service.PokemonInput{Name: name, Type: "Normal", Level: level, Ability: "Run Away"})
	require.NoError(t, err)
	return p
}

func hasField(err error, field string) bool {
	for _, f := range service.FieldErrors(err) {
		if f.Field == field {
			return true
		}
	}
	return false
}

func ptr[T any](v T) *T { return &v }
