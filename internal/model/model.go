// Package model contains domain entities and DTOs used across layers.
// I keep it lean: data shapes plus the few helpers that guard an entity's own invariants.
package model

import "time"

const (
	// MinPokemonLevel and MaxPokemonLevel bound a pokemon's level.
	MinPokemonLevel = 1
	MaxPokemonLevel = 100

	// MaxTeamSize is the number of pokemon a trainer may carry.
	MaxTeamSize = 6
)

// Pokemon is a creature owned by the pokemon repository.
// Trainers and battle rounds hold copies, never references.
type Pokemon struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Level   int    `json:"level"`
	Ability string `json:"ability"`
}

// AtMaxLevel reports whether the pokemon can no longer level up.
func (p Pokemon) AtMaxLevel() bool { return p.Level >= MaxPokemonLevel }

// Trainer owns a team of up to MaxTeamSize pokemon.
type Trainer struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Age         int       `json:"age"`
	Region      string    `json:"region"`
	BadgeCount  int       `json:"badge_count"`
	PokemonTeam []Pokemon `json:"pokemon_team"`
	StartDate   time.Time `json:"start_date"`
}

// TeamFull reports whether another pokemon would break the team size limit.
func (t Trainer) TeamFull() bool { return len(t.PokemonTeam) >= MaxTeamSize }

// HasPokemon returns the team index of the pokemon or -1.
func (t Trainer) HasPokemon(pokemonID int64) int {
	for i, p := range t.PokemonTeam {
		if p.ID == pokemonID {
			return i
		}
	}
	return -1
}

// Clone returns a copy that shares no slice memory with t.
func (t Trainer) Clone() Trainer {
	out := t
	if t.PokemonTeam != nil {
		out.PokemonTeam = append([]Pokemon(nil), t.PokemonTeam...)
	}
	return out
}
