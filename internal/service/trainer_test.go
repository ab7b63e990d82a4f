package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/pokemon-battle-service/internal/model"
	"github.com/maxviazov/pokemon-battle-service/internal/repository"
	"github.com/maxviazov/pokemon-battle-service/internal/service"
)

func TestTrainerService_CreateTrainer(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.trainers.CreateTrainer(ctx, service.TrainerInput{Name: " ", Age: -1, BadgeCount: -2})
	require.ErrorIs(t, err, service.ErrInvalidInput)
	assert.True(t, hasField(err, "name"))
	assert.True(t, hasField(err, "age"))
	assert.True(t, hasField(err, "badge_count"))

	tr, err := e.trainers.CreateTrainer(ctx, service.TrainerInput{Name: " Brock ", Age: 15, Region: "Kanto", BadgeCount: 2})
	require.NoError(t, err)
	assert.Equal(t, "Brock", tr.Name)
	assert.Equal(t, fixedNow, tr.StartDate)
	assert.NotNil(t, tr.PokemonTeam)
	assert.Empty(t, tr.PokemonTeam)
}

func TestTrainerService_TeamLimit(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tr := e.trainer(t, "Ash")

	for i := 0; i < model.MaxTeamSize; i++ {
		p := e.mon(t, fmt.Sprintf("Mon-%d", i), 10)
		out, err := e.trainers.AssignPokemon(ctx, tr.ID, p.ID)
		require.NoError(t, err)
		assert.Len(t, out.PokemonTeam, i+1)
	}

	seventh := e.mon(t, "Mon-7", 10)
	_, err := e.trainers.AssignPokemon(ctx, tr.ID, seventh.ID)
	require.ErrorIs(t, err, service.ErrInvalidState)

	got, err := e.trainers.GetTrainer(ctx, tr.ID)
	require.NoError(t, err)
	assert.Len(t, got.PokemonTeam, model.MaxTeamSize)
}

func TestTrainerService_AssignAndRemove(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tr := e.trainer(t, "Misty")
	p := e.mon(t, "Staryu", 18)

	_, err := e.trainers.AssignPokemon(ctx, tr.ID, 404)
	require.ErrorIs(t, err, repository.ErrNotFound)
	_, err = e.trainers.AssignPokemon(ctx, 404, p.ID)
	require.ErrorIs(t, err, repository.ErrNotFound)

	out, err := e.trainers.AssignPokemon(ctx, tr.ID, p.ID)
	require.NoError(t, err)
	require.Len(t, out.PokemonTeam, 1)
	assert.Equal(t, p, out.PokemonTeam[0])

	_, err = e.trainers.AssignPokemon(ctx, tr.ID, p.ID)
	require.ErrorIs(t, err, repository.ErrAlreadyExists)

	// team members are copies; later level-ups do not reach into the team
	_, err = e.pokemon.LevelUpPokemon(ctx, p.ID)
	require.NoError(t, err)
	got, _ := e.trainers.GetTrainer(ctx, tr.ID)
	assert.Equal(t, 18, got.PokemonTeam[0].Level)

	out, err = e.trainers.RemovePokemon(ctx, tr.ID, p.ID)
	require.NoError(t, err)
	assert.Empty(t, out.PokemonTeam)

	_, err = e.trainers.RemovePokemon(ctx, tr.ID, p.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTrainerService_Queries(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	for _, in := range []service.TrainerInput{
		{Name: "Ash", Region: "Kanto"},
		{Name: "May", Region: "Hoenn"},
		{Name: "Gary", Region: "kanto"},
	} {
		_, err := e.trainers.CreateTrainer(ctx, in)
		require.NoError(t, err)
	}

	kanto, err := e.trainers.ListTrainersByRegion(ctx, "KANTO")
	require.NoError(t, err)
	assert.Len(t, kanto, 2)

	may, err := e.trainers.GetTrainerByName(ctx, "may")
	require.NoError(t, err)
	assert.Equal(t, "Hoenn", may.Region)

	_, err = e.trainers.GetTrainerByName(ctx, "Dawn")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	page, err := e.trainers.ListTrainers(ctx, repository.Page{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Len(t, page.Items, 2)

	require.NoError(t, e.trainers.DeleteTrainer(ctx, may.ID))
	_, err = e.trainers.GetTrainer(ctx, may.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTrainerService_AssignPokemon_ConcurrentTeamLimit(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tr := e.trainer(t, "Ash")

	const n = 20
	mons := make([]model.Pokemon, n)
	for i := range mons {
		mons[i] = e.mon(t, fmt.Sprintf("Mon-%d", i), 10)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		assigned int
		rejected []error
	)
	for _, p := range mons {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := e.trainers.AssignPokemon(ctx, tr.ID, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				rejected = append(rejected, err)
				return
			}
			assigned++
		}(p.ID)
	}
	wg.Wait()

	assert.Equal(t, model.MaxTeamSize, assigned)
	require.Len(t, rejected, n-model.MaxTeamSize)
	for _, err := range rejected {
		assert.ErrorIs(t, err, service.ErrInvalidState)
	}
	got, err := e.trainers.GetTrainer(ctx, tr.ID)
	require.NoError(t, err)
	assert.Len(t, got.PokemonTeam, model.MaxTeamSize)
}
