package model

import "time"

// BattleResult is the state of a battle. InProgress is the only non-terminal value.
type BattleResult string

const (
	BattleInProgress BattleResult = "in_progress"
	BattleCompleted  BattleResult = "completed"
	BattleDraw       BattleResult = "draw"
	BattleCancelled  BattleResult = "cancelled"
)

// Valid reports whether r is one of the known battle results.
func (r BattleResult) Valid() bool {
	switch r {
	case BattleInProgress, BattleCompleted, BattleDraw, BattleCancelled:
		return true
	}
	return false
}

// DrawWinnerName is stored as the winner name of a drawn battle.
const DrawWinnerName = "Draw"

// Battle is a confrontation between two trainers, recorded round by round.
type Battle struct {
	ID           int64         `json:"id"`
	Trainer1ID   int64         `json:"trainer1_id"`
	Trainer1Name string        `json:"trainer1_name"`
	Trainer2ID   int64         `json:"trainer2_id"`
	Trainer2Name string        `json:"trainer2_name"`
	WinnerID     *int64        `json:"winner_id"`
	WinnerName   string        `json:"winner_name,omitempty"`
	BattleDate   time.Time     `json:"battle_date"`
	Location     string        `json:"location"`
	Result       BattleResult  `json:"result"`
	Rounds       []BattleRound `json:"rounds"`
	Notes        string        `json:"notes"`
}

// BattleRound is one pokemon-vs-pokemon exchange inside a battle.
type BattleRound struct {
	RoundNumber       int    `json:"round_number"`
	Pokemon1ID        int64  `json:"pokemon1_id"`
	Pokemon1Name      string `json:"pokemon1_name"`
	Pokemon2ID        int64  `json:"pokemon2_id"`
	Pokemon2Name      string `json:"pokemon2_name"`
	WinnerPokemonID   *int64 `json:"winner_pokemon_id,omitempty"`
	WinnerPokemonName string `json:"winner_pokemon_name,omitempty"`
	Description       string `json:"description"`
}

// NewBattle builds an in-progress battle between two trainer snapshots.
func NewBattle(t1, t2 Trainer, location string, at time.Time) Battle {
	return Battle{
		Trainer1ID:   t1.ID,
		Trainer1Name: t1.Name,
		Trainer2ID:   t2.ID,
		Trainer2Name: t2.Name,
		BattleDate:   at,
		Location:     location,
		Result:       BattleInProgress,
		Rounds:       []BattleRound{},
	}
}

// InProgress reports whether the battle still accepts rounds and a final result.
func (b Battle) InProgress() bool { return b.Result == BattleInProgress }

// Decided reports whether the battle ended with a winner or a draw.
func (b Battle) Decided() bool { return b.Result == BattleCompleted || b.Result == BattleDraw }

// Involves reports whether the trainer took part in the battle.
func (b Battle) Involves(trainerID int64) bool {
	return b.Trainer1ID == trainerID || b.Trainer2ID == trainerID
}

// Between reports whether the battle opposed the two trainers, in either slot order.
func (b Battle) Between(a, c int64) bool {
	return (b.Trainer1ID == a && b.Trainer2ID == c) || (b.Trainer1ID == c && b.Trainer2ID == a)
}

// OpponentName returns the name of the trainer facing trainerID.
func (b Battle) OpponentName(trainerID int64) string {
	if b.Trainer1ID == trainerID {
		return b.Trainer2Name
	}
	return b.Trainer1Name
}

// ParticipantName returns the snapshot name for a trainer slot, or false if the id is not a participant.
func (b Battle) ParticipantName(trainerID int64) (string, bool) {
	switch trainerID {
	case b.Trainer1ID:
		return b.Trainer1Name, true
	case b.Trainer2ID:
		return b.Trainer2Name, true
	default:
		return "", false
	}
}

// SetWinner completes the battle in favour of a participant.
func (b *Battle) SetWinner(id int64, name string) {
	b.WinnerID = &id
	b.WinnerName = name
	b.Result = BattleCompleted
}

// SetDraw ends the battle without a winner.
func (b *Battle) SetDraw() {
	b.WinnerID = nil
	b.WinnerName = DrawWinnerName
	b.Result = BattleDraw
}

// NextRoundNumber is the 1-based number the next appended round gets.
func (b Battle) NextRoundNumber() int { return len(b.Rounds) + 1 }

// Clone returns a deep copy so callers cannot mutate stored rounds or winner pointers.
func (b Battle) Clone() Battle {
	out := b
	if b.WinnerID != nil {
		id := *b.WinnerID
		out.WinnerID = &id
	}
	out.Rounds = make([]BattleRound, len(b.Rounds))
	for i, r := range b.Rounds {
		if r.WinnerPokemonID != nil {
			id := *r.WinnerPokemonID
			r.WinnerPokemonID = &id
		}
		out.Rounds[i] = r
	}
	return out
}

// BattleStatistics is a read-only aggregate of a trainer's decided battles.
type BattleStatistics struct {
	TrainerID        int64      `json:"trainer_id"`
	TrainerName      string     `json:"trainer_name"`
	TotalBattles     int        `json:"total_battles"`
	Wins             int        `json:"wins"`
	Losses           int        `json:"losses"`
	Draws            int        `json:"draws"`
	WinRate          float64    `json:"win_rate"`
	LastBattleDate   *time.Time `json:"last_battle_date"`
	FavoriteOpponent string     `json:"favorite_opponent"`
}

// BattleSummary counts battles per result across the whole store.
type BattleSummary struct {
	TotalBattles      int     `json:"total_battles"`
	CompletedBattles  int     `json:"completed_battles"`
	DrawBattles       int     `json:"draw_battles"`
	CancelledBattles  int     `json:"cancelled_battles"`
	InProgressBattles int     `json:"in_progress_battles"`
	CompletionRate    float64 `json:"completion_rate"`
}
