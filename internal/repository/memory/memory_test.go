package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/maxviazov/pokemon-battle-service/internal/repository"
	"github.com/maxviazov/pokemon-battle-service/internal/repository/contract"
	"github.com/maxviazov/pokemon-battle-service/internal/repository/memory"
)

func noop() {}

func TestMemoryRepositoriesContract(t *testing.T) {
	t.Run("pokemon", func(t *testing.T) {
		contract.RunPokemonRepositoryContract(t, func(t *testing.T) (repository.PokemonRepository, func()) {
			return memory.NewPokemonRepository(), noop
		})
	})
	t.Run("trainer", func(t *testing.T) {
		contract.RunTrainerRepositoryContract(t, func(t *testing.T) (repository.TrainerRepository, func()) {
			return memory.NewTrainerRepository(), noop
		})
	})
	t.Run("battle", func(t *testing.T) {
		contract.RunBattleRepositoryContract(t, func(t *testing.T) (repository.BattleRepository, func()) {
			return memory.NewBattleRepository(), noop
		})
	})
	t.Run("user", func(t *testing.T) {
		contract.RunUserRepositoryContract(t, func(t *testing.T) (repository.UserRepository, func()) {
			return memory.NewUserRepository(), noop
		})
	})
	t.Run("pinger", func(t *testing.T) {
		contract.RunPingerContract(t, func(t *testing.T) (repository.Pinger, func()) {
			s := memory.NewStore(zerolog.Nop())
			return s, s.Close
		})
	})
}

func TestStore_PingAfterClose(t *testing.T) {
	s := memory.NewStore(zerolog.Nop())
	s.Close()
	if err := s.Ping(context.Background()); !errors.Is(err, repository.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestCollection_CancelledContext(t *testing.T) {
	repo := memory.NewPokemonRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := repo.List(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
