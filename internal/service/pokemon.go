package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxviazov/pokemon-battle-service/internal/model"
	"github.com/maxviazov/pokemon-battle-service/internal/repository"
)

// pokemonService holds pokemon use-case logic: validation + orchestration, no transport details.
type pokemonService struct {
	repo repository.PokemonRepository
	log  zerolog.Logger
}

func NewPokemonService(repo repository.PokemonRepository, logger zerolog.Logger) PokemonService {
	l := logger.With().Str("module", "service").Str("component", "pokemon").Logger()
	return &pokemonService{repo: repo, log: l}
}

func validatePokemon(in PokemonInput) (PokemonInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Type = strings.TrimSpace(in.Type)
	in.Ability = strings.TrimSpace(in.Ability)

	var ferrs []FieldError
	ferrs = append(ferrs, checkName("name", in.Name)...)
	ferrs = append(ferrs, checkLevel(in.Level)...)
	return in, newInvalidInput(ferrs)
}

func (s *pokemonService) CreatePokemon(ctx context.Context, in PokemonInput) (model.Pokemon, error) {
	start := time.Now()
	in, err := validatePokemon(in)
	if err != nil {
		s.log.Debug().Str("name", in.Name).Interface("field_errors", FieldErrors(err)).Msg("pokemon validation failed")
		return model.Pokemon{}, err
	}
	out, err := s.repo.Create(ctx, model.Pokemon{Name: in.Name, Type: in.Type, Level: in.Level, Ability: in.Ability})
	if err != nil {
		s.log.Error().Err(err).Str("name", in.Name).Msg("create pokemon failed")
		return model.Pokemon{}, err
	}
	s.log.Info().Dur("took", time.Since(start)).Int64("pokemon_id", out.ID).Str("name", out.Name).Msg("pokemon created")
	return out, nil
}

func (s *pokemonService) UpdatePokemon(ctx context.Context, id int64, in PokemonInput) (model.Pokemon, error) {
	in, err := validatePokemon(in)
	if err = newInvalidInput(append(checkID("id", id), FieldErrors(err)...)); err != nil {
		return model.Pokemon{}, err
	}
	out, err := s.repo.Update(ctx, id, func(p *model.Pokemon) error {
		p.Name, p.Type, p.Level, p.Ability = in.Name, in.Type, in.Level, in.Ability
		return nil
	})
	if err != nil {
		return model.Pokemon{}, err
	}
	s.log.Info().Int64("pokemon_id", id).Msg("pokemon updated")
	return out, nil
}

func (s *pokemonService) DeletePokemon(ctx context.Context, id int64) error {
	if err := invalidID("id", id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Int64("pokemon_id", id).Msg("pokemon deleted")
	return nil
}

func (s *pokemonService) GetPokemon(ctx context.Context, id int64) (model.Pokemon, error) {
	if err := invalidID("id", id); err != nil {
		return model.Pokemon{}, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *pokemonService) GetPokemonByName(ctx context.Context, name string) (model.Pokemon, error) {
	name = strings.TrimSpace(name)
	if err := newInvalidInput(checkName("name", name)); err != nil {
		return model.Pokemon{}, err
	}
	return s.repo.GetByName(ctx, name)
}

func (s *pokemonService) ListPokemon(ctx context.Context, page repository.Page) (repository.PageResult[model.Pokemon], error) {
	p := normalizePage(page)
	all, err := s.repo.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Int("limit", p.Limit).Int("offset", p.Offset).Msg("list pokemon failed")
		return repository.PageResult[model.Pokemon]{}, err
	}
	return repository.Slice(all, p), nil
}

func (s *pokemonService) ListPokemonByType(ctx context.Context, typ string) ([]model.Pokemon, error) {
	if strings.TrimSpace(typ) == "" {
		return nil, newInvalidInput([]FieldError{{Field: "type", Message: "must not be empty"}})
	}
	return s.filter(ctx, func(p model.Pokemon) bool { return matchFold(p.Type, typ) })
}

func (s *pokemonService) ListPokemonByAbility(ctx context.Context, ability string) ([]model.Pokemon, error) {
	if strings.TrimSpace(ability) == "" {
		return nil, newInvalidInput([]FieldError{{Field: "ability", Message: "must not be empty"}})
	}
	return s.filter(ctx, func(p model.Pokemon) bool { return matchFold(p.Ability, ability) })
}

func (s *pokemonService) ListPokemonByLevel(ctx context.Context, minLevel, maxLevel int) ([]model.Pokemon, error) {
	var ferrs []FieldError
	if minLevel < model.MinPokemonLevel || minLevel > model.MaxPokemonLevel {
		ferrs = append(ferrs, FieldError{Field: "minLevel", Message: "must be between 1 and 100"})
	}
	if maxLevel < model.MinPokemonLevel || maxLevel > model.MaxPokemonLevel {
		ferrs = append(ferrs, FieldError{Field: "maxLevel", Message: "must be between 1 and 100"})
	}
	if len(ferrs) == 0 && minLevel > maxLevel {
		ferrs = append(ferrs, FieldError{Field: "minLevel", Message: "must not exceed maxLevel"})
	}
	if err := newInvalidInput(ferrs); err != nil {
		return nil, err
	}
	return s.filter(ctx, func(p model.Pokemon) bool { return p.Level >= minLevel && p.Level <= maxLevel })
}

// LevelUpPokemon raises the level by one. At the cap it fails with ErrInvalidState and leaves the pokemon unchanged.
func (s *pokemonService) LevelUpPokemon(ctx context.Context, id int64) (model.Pokemon, error) {
	if err := invalidID("id", id); err != nil {
		return model.Pokemon{}, err
	}
	out, err := s.repo.Update(ctx, id, func(p *model.Pokemon) error {
		if p.AtMaxLevel() {
			return NewStateError("pokemon is already at max level")
		}
		p.Level++
		return nil
	})
	if err != nil {
		return model.Pokemon{}, err
	}
	s.log.Debug().Int64("pokemon_id", id).Int("level", out.Level).Msg("pokemon levelled up")
	return out, nil
}

func (s *pokemonService) ChangePokemonAbility(ctx context.Context, id int64, ability string) (model.Pokemon, error) {
	ability = strings.TrimSpace(ability)
	ferrs := checkID("id", id)
	if ability == "" {
		ferrs = append(ferrs, FieldError{Field: "ability", Message: "must not be empty"})
	}
	if err := newInvalidInput(ferrs); err != nil {
		return model.Pokemon{}, err
	}
	return s.repo.Update(ctx, id, func(p *model.Pokemon) error {
		p.Ability = ability
		return nil
	})
}

func (s *pokemonService) filter(ctx context.Context, keep func(model.Pokemon) bool) ([]model.Pokemon, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Pokemon, 0, len(all))
	for _, p := range all {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out, nil
}
