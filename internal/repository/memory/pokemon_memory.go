package memory

import (
	"context"
	"strings"

	"github.com/maxviazov/pokemon-battle-service/internal/model"
	"github.com/maxviazov/pokemon-battle-service/internal/repository"
)

type pokemonRepo struct {
	c *collection[model.Pokemon]
}

// NewPokemonRepository returns an empty in-memory pokemon repository.
func NewPokemonRepository() repository.PokemonRepository {
	return &pokemonRepo{c: newCollection(
		func(p model.Pokemon) int64 { return p.ID },
		func(p *model.Pokemon, id int64) { p.ID = id },
		nil,
	)}
}

func (r *pokemonRepo) Create(ctx context.Context, p model.Pokemon) (model.Pokemon, error) {
	return r.c.insert(ctx, p)
}

func (r *pokemonRepo) GetByID(ctx context.Context, id int64) (model.Pokemon, error) {
	return r.c.get(ctx, id)
}

func (r *pokemonRepo) GetByName(ctx context.Context, name string) (model.Pokemon, error) {
	return r.c.find(ctx, func(p model.Pokemon) bool { return strings.EqualFold(p.Name, name) })
}

func (r *pokemonRepo) List(ctx context.Context) ([]model.Pokemon, error) {
	return r.c.filter(ctx, nil)
}

func (r *pokemonRepo) Update(ctx context.Context, id int64, fn repository.Mutation[model.Pokemon]) (model.Pokemon, error) {
	return r.c.update(ctx, id, fn)
}

func (r *pokemonRepo) Delete(ctx context.Context, id int64) error {
	return r.c.remove(ctx, id)
}

var _ repository.PokemonRepository = (*pokemonRepo)(nil)
