package memory

import (
	"context"
	"time"

	"github.com/maxviazov/pokemon-battle-service/internal/model"
	"github.com/maxviazov/pokemon-battle-service/internal/repository"
)

type battleRepo struct {
	c *collection[model.Battle]
}

// NewBattleRepository returns an empty in-memory battle repository.
func NewBattleRepository() repository.BattleRepository {
	return &battleRepo{c: newCollection(
		func(b model.Battle) int64 { return b.ID },
		func(b *model.Battle, id int64) { b.ID = id },
		model.Battle.Clone,
	)}
}

func (r *battleRepo) Create(ctx context.Context, b model.Battle) (model.Battle, error) {
	return r.c.insert(ctx, b)
}

func (r *battleRepo) GetByID(ctx context.Context, id int64) (model.Battle, error) {
	return r.c.get(ctx, id)
}

func (r *battleRepo) List(ctx context.Context) ([]model.Battle, error) {
	return r.c.filter(ctx, nil)
}

func (r *battleRepo) ListByTrainer(ctx context.Context, trainerID int64) ([]model.Battle, error) {
	return r.c.filter(ctx, func(b model.Battle) bool { return b.Involves(trainerID) })
}

func (r *battleRepo) ListBetween(ctx context.Context, trainer1ID, trainer2ID int64) ([]model.Battle, error) {
	return r.c.filter(ctx, func(b model.Battle) bool { return b.Between(trainer1ID, trainer2ID) })
}

func (r *battleRepo) ListByDateRange(ctx context.Context, from, to time.Time) ([]model.Battle, error) {
	lo, hi := calendarDay(from), calendarDay(to)
	return r.c.filter(ctx, func(b model.Battle) bool {
		d := calendarDay(b.BattleDate.In(from.Location()))
		return !d.Before(lo) && !d.After(hi)
	})
}

func (r *battleRepo) ListByResult(ctx context.Context, result model.BattleResult) ([]model.Battle, error) {
	return r.c.filter(ctx, func(b model.Battle) bool { return b.Result == result })
}

func (r *battleRepo) Update(ctx context.Context, id int64, fn repository.Mutation[model.Battle]) (model.Battle, error) {
	return r.c.update(ctx, id, fn)
}

func (r *battleRepo) Delete(ctx context.Context, id int64) error {
	return r.c.remove(ctx, id)
}

// calendarDay truncates t to midnight in its own location.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

var _ repository.BattleRepository = (*battleRepo)(nil)
