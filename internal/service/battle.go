package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxviazov/pokemon-battle-service/internal/model"
	"github.com/maxviazov/pokemon-battle-service/internal/repository"
)

var errNotInProgress = NewStateError("battle is not in progress")

type battleService struct {
	battles  repository.BattleRepository
	trainers repository.TrainerRepository
	pokemon  repository.PokemonRepository
	now      func() time.Time
	log      zerolog.Logger
}

func NewBattleService(battles repository.BattleRepository, trainers repository.TrainerRepository, pokemon repository.PokemonRepository, logger zerolog.Logger, opts ...Option) BattleService {
	o := buildOptions(opts)
	l := logger.With().Str("module", "service").Str("component", "battle").Logger()
	return &battleService{battles: battles, trainers: trainers, pokemon: pokemon, now: o.now, log: l}
}

// CreateBattle opens an in-progress battle. Identical ids are rejected before any lookup.
func (s *battleService) CreateBattle(ctx context.Context, trainer1ID, trainer2ID int64, location string) (model.Battle, error) {
	location = strings.TrimSpace(location)

	var ferrs []FieldError
	ferrs = append(ferrs, checkID("trainer1_id", trainer1ID)...)
	ferrs = append(ferrs, checkID("trainer2_id", trainer2ID)...)
	if trainer1ID == trainer2ID {
		ferrs = append(ferrs, FieldError{Field: "trainer2_id", Message: "a trainer cannot battle themselves"})
	}
	if len([]rune(location)) > maxNameLength {
		ferrs = append(ferrs, FieldError{Field: "location", Message: "must be at most 100 characters"})
	}
	if err := newInvalidInput(ferrs); err != nil {
		return model.Battle{}, err
	}

	t1, err := s.trainers.GetByID(ctx, trainer1ID)
	if err != nil {
		return model.Battle{}, fmt.Errorf("trainer %d: %w", trainer1ID, err)
	}
	t2, err := s.trainers.GetByID(ctx, trainer2ID)
	if err != nil {
		return model.Battle{}, fmt.Errorf("trainer %d: %w", trainer2ID, err)
	}

	out, err := s.battles.Create(ctx, model.NewBattle(t1, t2, location, s.now()))
	if err != nil {
		s.log.Error().Err(err).Int64("trainer1_id", trainer1ID).Int64("trainer2_id", trainer2ID).Msg("create battle failed")
		return model.Battle{}, err
	}
	s.log.Info().Int64("battle_id", out.ID).Str("trainer1", t1.Name).Str("trainer2", t2.Name).Str("location", location).Msg("battle created")
	return out, nil
}

// StartBattle confirms an existing battle is open. Battles are created in progress,
// so this never changes state.
func (s *battleService) StartBattle(ctx context.Context, id int64) (model.Battle, error) {
	b, err := s.GetBattle(ctx, id)
	if err != nil {
		return model.Battle{}, err
	}
	if !b.InProgress() {
		return model.Battle{}, errNotInProgress
	}
	return b, nil
}

// AddRound appends a round numbered len(rounds)+1. The state check and the append
// run under the repository write lock.
func (s *battleService) AddRound(ctx context.Context, battleID int64, in RoundInput) (model.Battle, error) {
	in.Description = strings.TrimSpace(in.Description)
	var ferrs []FieldError
	ferrs = append(ferrs, checkID("id", battleID)...)
	ferrs = append(ferrs, checkID("pokemon1_id", in.Pokemon1ID)...)
	ferrs = append(ferrs, checkID("pokemon2_id", in.Pokemon2ID)...)
	if in.WinnerPokemonID != nil && *in.WinnerPokemonID != in.Pokemon1ID && *in.WinnerPokemonID != in.Pokemon2ID {
		ferrs = append(ferrs, FieldError{Field: "winner_pokemon_id", Message: "must be one of the two pokemon in the round"})
	}
	if err := newInvalidInput(ferrs); err != nil {
		return model.Battle{}, err
	}

	current, err := s.battles.GetByID(ctx, battleID)
	if err != nil {
		return model.Battle{}, err
	}
	if !current.InProgress() {
		return model.Battle{}, errNotInProgress
	}
	p1, err := s.pokemon.GetByID(ctx, in.Pokemon1ID)
	if err != nil {
		return model.Battle{}, fmt.Errorf("pokemon %d: %w", in.Pokemon1ID, err)
	}
	p2, err := s.pokemon.GetByID(ctx, in.Pokemon2ID)
	if err != nil {
		return model.Battle{}, fmt.Errorf("pokemon %d: %w", in.Pokemon2ID, err)
	}

	round := model.BattleRound{
		Pokemon1ID:   p1.ID,
		Pokemon1Name: p1.Name,
		Pokemon2ID:   p2.ID,
		Pokemon2Name: p2.Name,
		Description:  in.Description,
	}
	if in.WinnerPokemonID != nil {
		id := *in.WinnerPokemonID
		round.WinnerPokemonID = &id
		round.WinnerPokemonName = p1.Name
		if id == p2.ID {
			round.WinnerPokemonName = p2.Name
		}
	}

	out, err := s.battles.Update(ctx, battleID, func(b *model.Battle) error {
		if !b.InProgress() {
			return errNotInProgress
		}
		round.RoundNumber = b.NextRoundNumber()
		b.Rounds = append(b.Rounds, round)
		return nil
	})
	if err != nil {
		return model.Battle{}, err
	}
	s.log.Debug().Int64("battle_id", battleID).Int("round", round.RoundNumber).Msg("round added")
	return out, nil
}

func (s *battleService) SetWinner(ctx context.Context, battleID, winnerID int64) (model.Battle, error) {
	if err := newInvalidInput(append(checkID("id", battleID), checkID("winner_id", winnerID)...)); err != nil {
		return model.Battle{}, err
	}
	out, err := s.battles.Update(ctx, battleID, func(b *model.Battle) error {
		if !b.InProgress() {
			return errNotInProgress
		}
		name, ok := b.ParticipantName(winnerID)
		if !ok {
			return newInvalidInput([]FieldError{{Field: "winner_id", Message: "winner must be one of the battle participants"}})
		}
		b.SetWinner(winnerID, name)
		return nil
	})
	if err != nil {
		return model.Battle{}, err
	}
	s.log.Info().Int64("battle_id", battleID).Int64("winner_id", winnerID).Str("winner", out.WinnerName).Msg("battle completed")
	return out, nil
}

func (s *battleService) SetDraw(ctx context.Context, battleID int64) (model.Battle, error) {
	return s.finish(ctx, battleID, "battle drawn", (*model.Battle).SetDraw)
}

// Cancel is only valid while the battle is in progress; a decided battle keeps its result.
func (s *battleService) Cancel(ctx context.Context, battleID int64) (model.Battle, error) {
	return s.finish(ctx, battleID, "battle cancelled", func(b *model.Battle) {
		b.Result = model.BattleCancelled
	})
}

func (s *battleService) finish(ctx context.Context, battleID int64, msg string, apply func(*model.Battle)) (model.Battle, error) {
	if err := invalidID("id", battleID); err != nil {
		return model.Battle{}, err
	}
	out, err := s.battles.Update(ctx, battleID, func(b *model.Battle) error {
		if !b.InProgress() {
			return errNotInProgress
		}
		apply(b)
		return nil
	})
	if err != nil {
		return model.Battle{}, err
	}
	s.log.Info().Int64("battle_id", battleID).Msg(msg)
	return out, nil
}

// AddNotes replaces the notes. It is allowed in every state.
func (s *battleService) AddNotes(ctx context.Context, battleID int64, notes string) (model.Battle, error) {
	ferrs := checkID("id", battleID)
	if len([]rune(notes)) > maxNotesLength {
		ferrs = append(ferrs, FieldError{Field: "notes", Message: "must be at most 2000 characters"})
	}
	if err := newInvalidInput(ferrs); err != nil {
		return model.Battle{}, err
	}
	return s.battles.Update(ctx, battleID, func(b *model.Battle) error {
		b.Notes = notes
		return nil
	})
}

func (s *battleService) DeleteBattle(ctx context.Context, battleID int64) error {
	if err := invalidID("id", battleID); err != nil {
		return err
	}
	if err := s.battles.Delete(ctx, battleID); err != nil {
		return err
	}
	s.log.Info().Int64("battle_id", battleID).Msg("battle deleted")
	return nil
}

func (s *battleService) GetBattle(ctx context.Context, id int64) (model.Battle, error) {
	if err := invalidID("id", id); err != nil {
		return model.Battle{}, err
	}
	return s.battles.GetByID(ctx, id)
}

func (s *battleService) ListBattles(ctx context.Context, page repository.Page) (repository.PageResult[model.Battle], error) {
	p := normalizePage(page)
	all, err := s.battles.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Int("limit", p.Limit).Int("offset", p.Offset).Msg("list battles failed")
		return repository.PageResult[model.Battle]{}, err
	}
	return repository.Slice(all, p), nil
}

func (s *battleService) ListBattlesByTrainer(ctx context.Context, trainerID int64) ([]model.Battle, error) {
	if err := invalidID("id", trainerID); err != nil {
		return nil, err
	}
	if _, err := s.trainers.GetByID(ctx, trainerID); err != nil {
		return nil, err
	}
	return s.battles.ListByTrainer(ctx, trainerID)
}

// ListBattlesByResult lists the battles currently in the given state.
func (s *battleService) ListBattlesByResult(ctx context.Context, result model.BattleResult) ([]model.Battle, error) {
	if !result.Valid() {
		return nil, newInvalidInput([]FieldError{{Field: "result", Message: "must be one of in_progress, completed, draw, cancelled"}})
	}
	return s.battles.ListByResult(ctx, result)
}

// GetBattleHistory lists the battles between two trainers regardless of slot order.
func (s *battleService) GetBattleHistory(ctx context.Context, trainer1ID, trainer2ID int64) ([]model.Battle, error) {
	if err := newInvalidInput(append(checkID("id", trainer1ID), checkID("opponent_id", trainer2ID)...)); err != nil {
		return nil, err
	}
	return s.battles.ListBetween(ctx, trainer1ID, trainer2ID)
}

// GetRecentBattles returns battles whose calendar date is within the last days days, today included.
func (s *battleService) GetRecentBattles(ctx context.Context, days int) ([]model.Battle, error) {
	if days < 0 {
		return nil, newInvalidInput([]FieldError{{Field: "days", Message: "must be >= 0"}})
	}
	now := s.now()
	return s.battles.ListByDateRange(ctx, now.AddDate(0, 0, -days), now)
}

// GetStatistics aggregates the trainer's completed and drawn battles.
func (s *battleService) GetStatistics(ctx context.Context, trainerID int64) (model.BattleStatistics, error) {
	if err := invalidID("id", trainerID); err != nil {
		return model.BattleStatistics{}, err
	}
	t, err := s.trainers.GetByID(ctx, trainerID)
	if err != nil {
		return model.BattleStatistics{}, err
	}
	battles, err := s.battles.ListByTrainer(ctx, trainerID)
	if err != nil {
		s.log.Error().Err(err).Int64("trainer_id", trainerID).Msg("failed to load battles for statistics")
		return model.BattleStatistics{}, err
	}
	return computeStatistics(t, battles), nil
}

func (s *battleService) GetSummary(ctx context.Context) (model.BattleSummary, error) {
	all, err := s.battles.List(ctx)
	if err != nil {
		return model.BattleSummary{}, err
	}
	return summarize(all), nil
}
