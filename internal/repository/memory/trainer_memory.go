package memory

import (
	"context"
	"strings"

	"github.com/maxviazov/pokemon-battle-service/internal/model"
	"github.com/maxviazov/pokemon-battle-service/internal/repository"
)

type trainerRepo struct {
	c *collection[model.Trainer]
}

// NewTrainerRepository returns an empty in-memory trainer repository.
func NewTrainerRepository() repository.TrainerRepository {
	return &trainerRepo{c: newCollection(
		func(t model.Trainer) int64 { return t.ID },
		func(t *model.Trainer, id int64) { t.ID = id },
		model.Trainer.Clone,
	)}
}

func (r *trainerRepo) Create(ctx context.Context, t model.Trainer) (model.Trainer, error) {
	if t.PokemonTeam == nil {
		t.PokemonTeam = []model.Pokemon{}
	}
	return r.c.insert(ctx, t)
}

func (r *trainerRepo) GetByID(ctx context.Context, id int64) (model.Trainer, error) {
	return r.c.get(ctx, id)
}

func (r *trainerRepo) GetByName(ctx context.Context, name string) (model.Trainer, error) {
	return r.c.find(ctx, func(t model.Trainer) bool { return strings.EqualFold(t.Name, name) })
}

func (r *trainerRepo) List(ctx context.Context) ([]model.Trainer, error) {
	return r.c.filter(ctx, nil)
}

func (r *trainerRepo) Update(ctx context.Context, id int64, fn repository.Mutation[model.Trainer]) (model.Trainer, error) {
	return r.c.update(ctx, id, fn)
}

func (r *trainerRepo) Delete(ctx context.Context, id int64) error {
	return r.c.remove(ctx, id)
}

var _ repository.TrainerRepository = (*trainerRepo)(nil)
