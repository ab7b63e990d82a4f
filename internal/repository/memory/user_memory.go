package memory

import (
	"context"
	"strings"

	"github.com/maxviazov/pokemon-battle-service/internal/model"
	"github.com/maxviazov/pokemon-battle-service/internal/repository"
)

type userRepo struct {
	c *collection[model.User]
}

// NewUserRepository returns an empty in-memory user repository.
func NewUserRepository() repository.UserRepository {
	return &userRepo{c: newCollection(
		func(u model.User) int64 { return u.ID },
		func(u *model.User, id int64) { u.ID = id },
		func(u model.User) model.User {
			if u.LastLoginAt != nil {
				ts := *u.LastLoginAt
				u.LastLoginAt = &ts
			}
			return u
		},
	)}
}

// Create checks uniqueness and inserts under one write lock, so two concurrent
// registrations of the same name cannot both succeed.
func (r *userRepo) Create(ctx context.Context, u model.User) (model.User, error) {
	if err := ctx.Err(); err != nil {
		return model.User{}, err
	}
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	for _, it := range r.c.items {
		if strings.EqualFold(it.Username, u.Username) || strings.EqualFold(it.Email, u.Email) {
			return model.User{}, repository.ErrAlreadyExists
		}
	}
	return r.c.insertLocked(u), nil
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (model.User, error) {
	return r.c.get(ctx, id)
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	return r.c.find(ctx, func(u model.User) bool { return strings.EqualFold(u.Username, username) })
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.c.find(ctx, func(u model.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *userRepo) List(ctx context.Context) ([]model.User, error) {
	return r.c.filter(ctx, nil)
}

func (r *userRepo) Update(ctx context.Context, id int64, fn repository.Mutation[model.User]) (model.User, error) {
	return r.c.update(ctx, id, fn)
}

var _ repository.UserRepository = (*userRepo)(nil)
