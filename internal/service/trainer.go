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

type trainerService struct {
	trainers repository.TrainerRepository
	pokemon  repository.PokemonRepository
	now      func() time.Time
	log      zerolog.Logger
}

func NewTrainerService(trainers repository.TrainerRepository, pokemon repository.PokemonRepository, logger zerolog.Logger, opts ...Option) TrainerService {
	o := buildOptions(opts)
	l := logger.With().Str("module", "service").Str("component", "trainer").Logger()
	return &trainerService{trainers: trainers, pokemon: pokemon, now: o.now, log: l}
}

func validateTrainer(in TrainerInput) (TrainerInput, []FieldError) {
	in.Name = strings.TrimSpace(in.Name)
	in.Region = strings.TrimSpace(in.Region)

	ferrs := checkName("name", in.Name)
	if in.Age < 0 {
		ferrs = append(ferrs, FieldError{Field: "age", Message: "must be >= 0"})
	}
	if in.BadgeCount < 0 {
		ferrs = append(ferrs, FieldError{Field: "badge_count", Message: "must be >= 0"})
	}
	return in, ferrs
}

func (s *trainerService) CreateTrainer(ctx context.Context, in TrainerInput) (model.Trainer, error) {
	in, ferrs := validateTrainer(in)
	if err := newInvalidInput(ferrs); err != nil {
		s.log.Debug().Interface("field_errors", ferrs).Msg("trainer validation failed")
		return model.Trainer{}, err
	}
	out, err := s.trainers.Create(ctx, model.Trainer{
		Name:        in.Name,
		Age:         in.Age,
		Region:      in.Region,
		BadgeCount:  in.BadgeCount,
		PokemonTeam: []model.Pokemon{},
		StartDate:   s.now(),
	})
	if err != nil {
		s.log.Error().Err(err).Str("name", in.Name).Msg("create trainer failed")
		return model.Trainer{}, err
	}
	s.log.Info().Int64("trainer_id", out.ID).Str("name", out.Name).Msg("trainer created")
	return out, nil
}

// UpdateTrainer replaces the profile fields. The team and start date are kept.
func (s *trainerService) UpdateTrainer(ctx context.Context, id int64, in TrainerInput) (model.Trainer, error) {
	in, ferrs := validateTrainer(in)
	if err := newInvalidInput(append(checkID("id", id), ferrs...)); err != nil {
		return model.Trainer{}, err
	}
	return s.trainers.Update(ctx, id, func(t *model.Trainer) error {
		t.Name, t.Age, t.Region, t.BadgeCount = in.Name, in.Age, in.Region, in.BadgeCount
		return nil
	})
}

func (s *trainerService) DeleteTrainer(ctx context.Context, id int64) error {
	if err := invalidID("id", id); err != nil {
		return err
	}
	if err := s.trainers.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Int64("trainer_id", id).Msg("trainer deleted")
	return nil
}

func (s *trainerService) GetTrainer(ctx context.Context, id int64) (model.Trainer, error) {
	if err := invalidID("id", id); err != nil {
		return model.Trainer{}, err
	}
	return s.trainers.GetByID(ctx, id)
}

func (s *trainerService) GetTrainerByName(ctx context.Context, name string) (model.Trainer, error) {
	name = strings.TrimSpace(name)
	if err := newInvalidInput(checkName("name", name)); err != nil {
		return model.Trainer{}, err
	}
	return s.trainers.GetByName(ctx, name)
}

func (s *trainerService) ListTrainers(ctx context.Context, page repository.Page) (repository.PageResult[model.Trainer], error) {
	p := normalizePage(page)
	all, err := s.trainers.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Int("limit", p.Limit).Int("offset", p.Offset).Msg("list trainers failed")
		return repository.PageResult[model.Trainer]{}, err
	}
	return repository.Slice(all, p), nil
}

func (s *trainerService) ListTrainersByRegion(ctx context.Context, region string) ([]model.Trainer, error) {
	if strings.TrimSpace(region) == "" {
		return nil, newInvalidInput([]FieldError{{Field: "region", Message: "must not be empty"}})
	}
	all, err := s.trainers.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Trainer, 0, len(all))
	for _, t := range all {
		if matchFold(t.Region, region) {
			out = append(out, t)
		}
	}
	return out, nil
}

// AssignPokemon copies the pokemon into the trainer's team.
// The size check and the append run inside one repository update, so the team never exceeds six.
func (s *trainerService) AssignPokemon(ctx context.Context, trainerID, pokemonID int64) (model.Trainer, error) {
	if err := newInvalidInput(append(checkID("trainer_id", trainerID), checkID("pokemon_id", pokemonID)...)); err != nil {
		return model.Trainer{}, err
	}
	p, err := s.pokemon.GetByID(ctx, pokemonID)
	if err != nil {
		return model.Trainer{}, fmt.Errorf("pokemon %d: %w", pokemonID, err)
	}
	out, err := s.trainers.Update(ctx, trainerID, func(t *model.Trainer) error {
		if t.HasPokemon(p.ID) >= 0 {
			return repository.ErrAlreadyExists
		}
		if t.TeamFull() {
			return NewStateError(fmt.Sprintf("trainer already has %d pokemon", model.MaxTeamSize))
		}
		t.PokemonTeam = append(t.PokemonTeam, p)
		return nil
	})
	if err != nil {
		s.log.Debug().Err(err).Int64("trainer_id", trainerID).Int64("pokemon_id", pokemonID).Msg("assign pokemon rejected")
		return model.Trainer{}, err
	}
	s.log.Info().Int64("trainer_id", trainerID).Int64("pokemon_id", pokemonID).Int("team_size", len(out.PokemonTeam)).Msg("pokemon assigned")
	return out, nil
}

func (s *trainerService) RemovePokemon(ctx context.Context, trainerID, pokemonID int64) (model.Trainer, error) {
	if err := newInvalidInput(append(checkID("trainer_id", trainerID), checkID("pokemon_id", pokemonID)...)); err != nil {
		return model.Trainer{}, err
	}
	out, err := s.trainers.Update(ctx, trainerID, func(t *model.Trainer) error {
		i := t.HasPokemon(pokemonID)
		if i < 0 {
			return fmt.Errorf("pokemon %d is not on the team: %w", pokemonID, repository.ErrNotFound)
		}
		t.PokemonTeam = append(t.PokemonTeam[:i], t.PokemonTeam[i+1:]...)
		return nil
	})
	if err != nil {
		return model.Trainer{}, err
	}
	s.log.Info().Int64("trainer_id", trainerID).Int64("pokemon_id", pokemonID).Msg("pokemon removed")
	return out, nil
}
