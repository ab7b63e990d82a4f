// Package contract holds reusable behaviour suites that every repository implementation must pass.
package contract

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/maxviazov/pokemon-battle-service/internal/model"
	"github.com/maxviazov/pokemon-battle-service/internal/repository"
)

type PokemonFactory func(t *testing.T) (repository.PokemonRepository, func())

type TrainerFactory func(t *testing.T) (repository.TrainerRepository, func())

type BattleFactory func(t *testing.T) (repository.BattleRepository, func())

type UserFactory func(t *testing.T) (repository.UserRepository, func())

type PingerFactory func(t *testing.T) (repository.Pinger, func())

func RunPokemonRepositoryContract(t *testing.T, makeRepo PokemonFactory) {
	t.Helper()

	t.Run("create_and_get", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		created, err := repo.Create(ctx, model.Pokemon{Name: "Pikachu", Type: "Electric", Level: 25, Ability: "Static"})
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if created.ID <= 0 {
			t.Fatalf("expected assigned id, got %d", created.ID)
		}
		got, err := repo.GetByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got != created {
			t.Fatalf("mismatch: %+v vs %+v", got, created)
		}
	})

	t.Run("sequential_ids", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		a, _ := repo.Create(ctx, model.Pokemon{Name: "A", Level: 1})
		b, _ := repo.Create(ctx, model.Pokemon{Name: "B", Level: 1})
		if b.ID != a.ID+1 {
			t.Fatalf("expected sequential ids, got %d then %d", a.ID, b.ID)
		}
	})

	t.Run("get_not_found", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := repo.GetByID(context.Background(), 999999)
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("get_by_name_case_insensitive", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		if _, err := repo.Create(ctx, model.Pokemon{Name: "Bulbasaur", Level: 5}); err != nil {
			t.Fatalf("seed: %v", err)
		}
		got, err := repo.GetByName(ctx, "bULBASAUR")
		if err != nil || got.Name != "Bulbasaur" {
			t.Fatalf("expected Bulbasaur, got %+v err=%v", got, err)
		}
	})

	t.Run("update_failed_mutation_discarded", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		p, _ := repo.Create(ctx, model.Pokemon{Name: "Eevee", Level: 10})
		marker := errors.New("boom")
		_, err := repo.Update(ctx, p.ID, func(p *model.Pokemon) error {
			p.Level = 99
			return marker
		})
		if !errors.Is(err, marker) {
			t.Fatalf("expected marker error, got %v", err)
		}
		got, _ := repo.GetByID(ctx, p.ID)
		if got.Level != 10 {
			t.Fatalf("expected level to stay 10, got %d", got.Level)
		}
	})

	t.Run("delete", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		p, _ := repo.Create(ctx, model.Pokemon{Name: "Ditto", Level: 1})
		if err := repo.Delete(ctx, p.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if err := repo.Delete(ctx, p.ID); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound on second delete, got %v", err)
		}
	})

	t.Run("concurrent_creates_unique_ids", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		const n = 50
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = repo.Create(ctx, model.Pokemon{Name: "Magikarp", Level: 1})
			}()
		}
		wg.Wait()
		list, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		seen := map[int64]bool{}
		for _, p := range list {
			if seen[p.ID] {
				t.Fatalf("duplicate id %d", p.ID)
			}
			seen[p.ID] = true
		}
		if len(seen) != n {
			t.Fatalf("expected %d pokemon, got %d", n, len(seen))
		}
	})
}

func RunTrainerRepositoryContract(t *testing.T, makeRepo TrainerFactory) {
	t.Helper()

	t.Run("returned_team_is_a_copy", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		created, err := repo.Create(ctx, model.Trainer{Name: "Ash", PokemonTeam: []model.Pokemon{{ID: 1, Name: "Pikachu", Level: 25}}})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		created.PokemonTeam[0].Name = "Mutated"
		got, _ := repo.GetByID(ctx, created.ID)
		if got.PokemonTeam[0].Name != "Pikachu" {
			t.Fatalf("stored team leaked through returned copy: %+v", got.PokemonTeam)
		}
	})

	t.Run("empty_team_not_nil", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		created, _ := repo.Create(context.Background(), model.Trainer{Name: "Misty"})
		if created.PokemonTeam == nil {
			t.Fatalf("expected empty team slice")
		}
	})

	t.Run("update_and_list", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		a, _ := repo.Create(ctx, model.Trainer{Name: "Brock", Region: "Kanto"})
		_, _ = repo.Create(ctx, model.Trainer{Name: "May", Region: "Hoenn"})
		updated, err := repo.Update(ctx, a.ID, func(t *model.Trainer) error {
			t.BadgeCount = 3
			return nil
		})
		if err != nil || updated.BadgeCount != 3 {
			t.Fatalf("update: %+v err=%v", updated, err)
		}
		list, err := repo.List(ctx)
		if err != nil || len(list) != 2 || list[0].ID != a.ID {
			t.Fatalf("unexpected list: %+v err=%v", list, err)
		}
	})

	t.Run("update_not_found", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := repo.Update(context.Background(), 404, func(*model.Trainer) error { return nil })
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
	t.Run("concurrent_creates_unique_ids", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		const n = 50
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = repo.Create(ctx, model.Trainer{Name: "Youngster"})
			}()
		}
		wg.Wait()
		list, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		seen := map[int64]bool{}
		for _, tr := range list {
			if seen[tr.ID] {
				t.Fatalf("duplicate id %d", tr.ID)
			}
			seen[tr.ID] = true
		}
		if len(seen) != n {
			t.Fatalf("expected %d trainers, got %d", n, len(seen))
		}
	})
}

func RunBattleRepositoryContract(t *testing.T, makeRepo BattleFactory) {
	t.Helper()

	mk := func(t1, t2 int64, at time.Time) model.Battle {
		return model.NewBattle(model.Trainer{ID: t1, Name: "T1"}, model.Trainer{ID: t2, Name: "T2"}, "Arena", at)
	}

	t.Run("filters", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		now := time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)
		b1, _ := repo.Create(ctx, mk(1, 2, now))
		_, _ = repo.Create(ctx, mk(2, 1, now.AddDate(0, 0, -3)))
		_, _ = repo.Create(ctx, mk(3, 4, now.AddDate(0, 0, -40)))

		byTrainer, _ := repo.ListByTrainer(ctx, 1)
		if len(byTrainer) != 2 {
			t.Fatalf("expected 2 battles for trainer 1, got %d", len(byTrainer))
		}
		between, _ := repo.ListBetween(ctx, 2, 1)
		if len(between) != 2 {
			t.Fatalf("expected 2 battles between 1 and 2 in either order, got %d", len(between))
		}
		recent, _ := repo.ListByDateRange(ctx, time.Date(2024, 5, 7, 23, 0, 0, 0, time.UTC), time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC))
		if len(recent) != 2 {
			t.Fatalf("expected calendar-date range to hold 2 battles, got %d", len(recent))
		}
		inProgress, _ := repo.ListByResult(ctx, model.BattleInProgress)
		if len(inProgress) != 3 {
			t.Fatalf("expected 3 in-progress battles, got %d", len(inProgress))
		}
		if _, err := repo.Update(ctx, b1.ID, func(b *model.Battle) error { b.SetDraw(); return nil }); err != nil {
			t.Fatalf("update: %v", err)
		}
		draws, _ := repo.ListByResult(ctx, model.BattleDraw)
		if len(draws) != 1 || draws[0].ID != b1.ID {
			t.Fatalf("expected battle %d to be a draw, got %+v", b1.ID, draws)
		}
	})

	t.Run("concurrent_round_appends", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		b, _ := repo.Create(ctx, mk(1, 2, time.Now()))
		const n = 20
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = repo.Update(ctx, b.ID, func(b *model.Battle) error {
					b.Rounds = append(b.Rounds, model.BattleRound{RoundNumber: b.NextRoundNumber()})
					return nil
				})
			}()
		}
		wg.Wait()
		got, _ := repo.GetByID(ctx, b.ID)
		if len(got.Rounds) != n {
			t.Fatalf("expected %d rounds, got %d", n, len(got.Rounds))
		}
		for i, r := range got.Rounds {
			if r.RoundNumber != i+1 {
				t.Fatalf("round %d numbered %d", i, r.RoundNumber)
			}
		}
	})
	t.Run("concurrent_creates_unique_ids", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		const n = 50
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = repo.Create(ctx, mk(1, 2, time.Now()))
			}()
		}
		wg.Wait()
		list, err := repo.ListByTrainer(ctx, 1)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		seen := map[int64]bool{}
		for _, b := range list {
			if seen[b.ID] {
				t.Fatalf("duplicate id %d", b.ID)
			}
			seen[b.ID] = true
		}
		if len(seen) != n {
			t.Fatalf("expected %d battles, got %d", n, len(seen))
		}
	})
}

func RunUserRepositoryContract(t *testing.T, makeRepo UserFactory) {
	t.Helper()

	t.Run("unique_username_and_email", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		if _, err := repo.Create(ctx, model.User{Username: "ash", Email: "ash@kanto.io"}); err != nil {
			t.Fatalf("seed: %v", err)
		}
		if _, err := repo.Create(ctx, model.User{Username: "ASH", Email: "other@kanto.io"}); !errors.Is(err, repository.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists for username, got %v", err)
		}
		if _, err := repo.Create(ctx, model.User{Username: "gary", Email: "Ash@Kanto.io"}); !errors.Is(err, repository.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists for email, got %v", err)
		}
	})

	t.Run("lookup", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		u, _ := repo.Create(ctx, model.User{Username: "Misty", Email: "misty@cerulean.io"})
		if got, err := repo.GetByUsername(ctx, "misty"); err != nil || got.ID != u.ID {
			t.Fatalf("by username: %+v err=%v", got, err)
		}
		if got, err := repo.GetByEmail(ctx, "MISTY@cerulean.io"); err != nil || got.ID != u.ID {
			t.Fatalf("by email: %+v err=%v", got, err)
		}
		if _, err := repo.GetByUsername(ctx, "brock"); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
	t.Run("concurrent_creates_unique_ids", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		const n = 50
		ids := make([]int64, n)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				name := "user" + strconv.Itoa(i)
				u, err := repo.Create(ctx, model.User{Username: name, Email: name + "@kanto.io"})
				if err == nil {
					ids[i] = u.ID
				}
			}(i)
		}
		wg.Wait()
		seen := map[int64]bool{}
		for i, id := range ids {
			if id == 0 {
				t.Fatalf("create %d failed", i)
			}
			if seen[id] {
				t.Fatalf("duplicate id %d", id)
			}
			seen[id] = true
		}
	})

	t.Run("concurrent_same_username_single_winner", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		const n = 20
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			created   int
			conflicts int
		)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				name := "ash"
				if i%2 == 1 {
					name = "ASH"
				}
				_, err := repo.Create(ctx, model.User{Username: name, Email: "ash" + strconv.Itoa(i) + "@kanto.io"})
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					created++
				case errors.Is(err, repository.ErrAlreadyExists):
					conflicts++
				}
			}(i)
		}
		wg.Wait()
		if created != 1 || conflicts != n-1 {
			t.Fatalf("expected 1 create and %d conflicts, got %d and %d", n-1, created, conflicts)
		}
	})
}

func RunPingerContract(t *testing.T, makePinger PingerFactory) {
	t.Helper()
	t.Run("ping_ok", func(t *testing.T) {
		p, cleanup := makePinger(t)
		t.Cleanup(cleanup)
		if err := p.Ping(context.Background()); err != nil {
			t.Fatalf("expected ping ok, got %v", err)
		}
	})
}
