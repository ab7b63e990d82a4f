// Package seed fills an empty store with a small demo data set: eight trainers with their teams,
// three battles and an admin and a trainer account.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxviazov/pokemon-battle-service/internal/model"
	"github.com/maxviazov/pokemon-battle-service/internal/repository"
	"github.com/maxviazov/pokemon-battle-service/internal/service"
)

// Deps are the collaborators the seeder writes through. Pokemon and trainers go through their
// services so the usual invariants apply; battles and users are written to the repositories
// because their timestamps lie in the past.
type Deps struct {
	Pokemon  service.PokemonService
	Trainers service.TrainerService
	Battles  repository.BattleRepository
	Users    repository.UserRepository
	Hasher   service.PasswordHasher
	Now      func() time.Time
}

// Credentials are the passwords of the two seeded accounts.
type Credentials struct {
	AdminPassword   string
	TrainerPassword string
}

// Summary counts what Load created.
type Summary struct {
	Pokemon  int
	Trainers int
	Battles  int
	Users    int
}

type pokemonFixture struct {
	name, typ, ability string
	level              int
}

type trainerFixture struct {
	name, region string
	age, badges  int
	team         []pokemonFixture
}

var trainers = []trainerFixture{
	{"Ash Ketchum", "Kanto", 16, 8, []pokemonFixture{{"Pikachu", "Electric", "Static", 25}, {"Charizard", "Fire", "Blaze", 50}}},
	{"Misty", "Kanto", 12, 4, []pokemonFixture{{"Psyduck", "Water", "Damp", 18}, {"Staryu", "Water", "Illuminate", 20}}},
	{"Brock", "Kanto", 15, 2, []pokemonFixture{{"Onix", "Rock", "Sturdy", 22}, {"Geodude", "Rock", "Rock Head", 20}}},
	{"Gary Oak", "Kanto", 16, 10, []pokemonFixture{{"Blastoise", "Water", "Torrent", 52}, {"Venusaur", "Grass", "Overgrow", 48}}},
	{"May", "Hoenn", 14, 3, []pokemonFixture{{"Torchic", "Fire", "Blaze", 14}}},
	{"Dawn", "Sinnoh", 13, 5, []pokemonFixture{{"Piplup", "Water", "Torrent", 15}}},
	{"Serena", "Kalos", 14, 2, []pokemonFixture{{"Fennekin", "Fire", "Blaze", 16}}},
	{"Chloe", "Galar", 12, 1, []pokemonFixture{{"Eevee", "Normal", "Adaptability", 12}}},
}

type seeder struct {
	d       Deps
	now     time.Time
	trainer map[string]model.Trainer
	pokemon map[string]model.Pokemon
	sum     Summary
	log     zerolog.Logger
}

// Load writes the demo data. It expects an empty store; a second run fails on duplicate users.
func Load(ctx context.Context, d Deps, creds Credentials, logger zerolog.Logger) (Summary, error) {
	if d.Now == nil {
		d.Now = time.Now
	}
	s := &seeder{
		d:       d,
		now:     d.Now().UTC(),
		trainer: make(map[string]model.Trainer),
		pokemon: make(map[string]model.Pokemon),
		log:     logger.With().Str("module", "seed").Logger(),
	}
	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"trainers", s.trainers},
		{"battles", s.battles},
		{"users", func(ctx context.Context) error { return s.users(ctx, creds) }},
	}
	for _, step := range steps {
		if err := step.fn(ctx); err != nil {
			return s.sum, fmt.Errorf("seed %s: %w", step.name, err)
		}
	}
	s.log.Info().
		Int("pokemon", s.sum.Pokemon).
		Int("trainers", s.sum.Trainers).
		Int("battles", s.sum.Battles).
		Int("users", s.sum.Users).
		Msg("seed data loaded")
	return s.sum, nil
}

func (s *seeder) trainers(ctx context.Context) error {
	for _, f := range trainers {
		t, err := s.d.Trainers.CreateTrainer(ctx, service.TrainerInput{Name: f.name, Age: f.age, Region: f.region, BadgeCount: f.badges})
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		s.sum.Trainers++
		for _, pf := range f.team {
			p, err := s.d.Pokemon.CreatePokemon(ctx, service.PokemonInput{Name: pf.name, Type: pf.typ, Level: pf.level, Ability: pf.ability})
			if err != nil {
				return fmt.Errorf("%s: %w", pf.name, err)
			}
			s.sum.Pokemon++
			s.pokemon[p.Name] = p
			if t, err = s.d.Trainers.AssignPokemon(ctx, t.ID, p.ID); err != nil {
				return fmt.Errorf("assign %s to %s: %w", pf.name, f.name, err)
			}
		}
		s.trainer[t.Name] = t
	}
	return nil
}

func (s *seeder) battles(ctx context.Context) error {
	type fixture struct {
		t1, t2, location, notes string
		age                     time.Duration
		winner                  string
		round                   *[3]string // pokemon1, pokemon2, winner
		description             string
	}
	fixtures := []fixture{
		{
			t1: "Ash Ketchum", t2: "Misty", location: "Cerulean City Gym", notes: "Ash's first gym battle",
			winner: "Ash Ketchum", round: &[3]string{"Pikachu", "Psyduck", "Pikachu"}, description: "Super effective Thunderbolt",
		},
		{
			t1: "Ash Ketchum", t2: "Gary Oak", location: "Route 22", notes: "A legendary rivalry",
			age: 7 * 24 * time.Hour, winner: "Gary Oak", round: &[3]string{"Pikachu", "Blastoise", "Blastoise"}, description: "Type advantage held",
		},
		{
			t1: "May", t2: "Serena", location: "Contest Hall", notes: "Coordinator showdown ended in a perfect tie",
			age: 3 * 24 * time.Hour,
		},
	}
	for _, f := range fixtures {
		b := model.NewBattle(s.trainer[f.t1], s.trainer[f.t2], f.location, s.now.Add(-f.age))
		b.Notes = f.notes
		if f.round != nil {
			p1, p2, w := s.pokemon[f.round[0]], s.pokemon[f.round[1]], s.pokemon[f.round[2]]
			winnerID := w.ID
			b.Rounds = append(b.Rounds, model.BattleRound{
				RoundNumber:       b.NextRoundNumber(),
				Pokemon1ID:        p1.ID,
				Pokemon1Name:      p1.Name,
				Pokemon2ID:        p2.ID,
				Pokemon2Name:      p2.Name,
				WinnerPokemonID:   &winnerID,
				WinnerPokemonName: w.Name,
				Description:       f.description,
			})
		}
		if f.winner == "" {
			b.SetDraw()
		} else {
			w := s.trainer[f.winner]
			b.SetWinner(w.ID, w.Name)
		}
		if _, err := s.d.Battles.Create(ctx, b); err != nil {
			return fmt.Errorf("%s vs %s: %w", f.t1, f.t2, err)
		}
		s.sum.Battles++
	}
	return nil
}

func (s *seeder) users(ctx context.Context, creds Credentials) error {
	accounts := []struct {
		username, email, password string
		role                      model.Role
		age                       time.Duration
	}{
		{"admin", "admin@pokemon.com", creds.AdminPassword, model.RoleAdmin, 30 * 24 * time.Hour},
		{"trainer", "trainer@pokemon.com", creds.TrainerPassword, model.RoleTrainer, 15 * 24 * time.Hour},
	}
	for _, a := range accounts {
		if a.password == "" {
			s.log.Warn().Str("username", a.username).Msg("no password configured, account skipped")
			continue
		}
		hash, err := s.d.Hasher.Hash(a.password)
		if err != nil {
			return err
		}
		if _, err := s.d.Users.Create(ctx, model.User{
			Username:     a.username,
			Email:        a.email,
			PasswordHash: hash,
			Role:         a.role,
			CreatedAt:    s.now.Add(-a.age),
			IsActive:     true,
		}); err != nil {
			return fmt.Errorf("%s: %w", a.username, err)
		}
		s.sum.Users++
	}
	return nil
}
