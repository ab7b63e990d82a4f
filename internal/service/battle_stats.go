package service

import (
	"time"

	"github.com/maxviazov/pokemon-battle-service/internal/model"
)

// NoFavoriteOpponent is reported when a trainer has no decided battles.
const NoFavoriteOpponent = "None"

// computeStatistics folds a snapshot of the trainer's battles. Only completed and drawn
// battles count; in-progress and cancelled ones are ignored.
func computeStatistics(t model.Trainer, battles []model.Battle) model.BattleStatistics {
	st := model.BattleStatistics{
		TrainerID:        t.ID,
		TrainerName:      t.Name,
		FavoriteOpponent: NoFavoriteOpponent,
	}

	var last time.Time
	counts := map[string]int{}
	var order []string
	for _, b := range battles {
		if !b.Involves(t.ID) || !b.Decided() {
			continue
		}
		st.TotalBattles++
		switch {
		case b.Result == model.BattleDraw:
			st.Draws++
		case b.WinnerID != nil && *b.WinnerID == t.ID:
			st.Wins++
		default:
			st.Losses++
		}
		if b.BattleDate.After(last) {
			last = b.BattleDate
		}

		opp := b.OpponentName(t.ID)
		if counts[opp] == 0 {
			order = append(order, opp)
		}
		counts[opp]++
	}

	// ties go to the opponent met first
	best := 0
	for _, opp := range order {
		if counts[opp] > best {
			best = counts[opp]
			st.FavoriteOpponent = opp
		}
	}

	if st.TotalBattles > 0 {
		st.WinRate = float64(st.Wins) / float64(st.TotalBattles)
		st.LastBattleDate = &last
	}
	return st
}

func summarize(battles []model.Battle) model.BattleSummary {
	var sum model.BattleSummary
	for _, b := range battles {
		sum.TotalBattles++
		switch b.Result {
		case model.BattleCompleted:
			sum.CompletedBattles++
		case model.BattleDraw:
			sum.DrawBattles++
		case model.BattleCancelled:
			sum.CancelledBattles++
		default:
			sum.InProgressBattles++
		}
	}
	if sum.TotalBattles > 0 {
		sum.CompletionRate = float64(sum.CompletedBattles) * 100 / float64(sum.TotalBattles)
	}
	return sum
}
