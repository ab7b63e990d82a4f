package memory

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/maxviazov/pokemon-battle-service/internal/repository"
)

// Store owns one repository per entity. It is built once in main and injected;
// nothing in this package keeps package-level state.
type Store struct {
	Pokemon  repository.PokemonRepository
	Trainers repository.TrainerRepository
	Battles  repository.BattleRepository
	Users    repository.UserRepository

	closed atomic.Bool
	log    zerolog.Logger
}

// NewStore returns an empty store.
func NewStore(logger zerolog.Logger) *Store {
	return &Store{
		Pokemon:  NewPokemonRepository(),
		Trainers: NewTrainerRepository(),
		Battles:  NewBattleRepository(),
		Users:    NewUserRepository(),
		log:      logger.With().Str("module", "repository").Str("component", "memory").Logger(),
	}
}

// Ping reports readiness. A closed store is not ready.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.closed.Load() {
		return repository.ErrClosed
	}
	return nil
}

// Close marks the store as shut down so readiness checks start failing.
func (s *Store) Close() {
	if s.closed.CompareAndSwap(false, true) {
		s.log.Info().Msg("memory store closed")
	}
}

var _ repository.Pinger = (*Store)(nil)
