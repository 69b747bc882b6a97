package race

import (
	"carrera/internal/game/carrera"
	"carrera/internal/game/common"
	"carrera/internal/models"
)

func cardView(c common.Card) models.CardView {
	return models.CardView{Rank: int(c.Rank), Suit: string(c.Suit), Label: c.String()}
}

// horsesView lists the horses in number order.
func horsesView(t carrera.Track) []models.HorseView {
	out := make([]models.HorseView, 0, len(common.Suits))
	for i, s := range common.Suits {
		p := t[i]
		out = append(out, models.HorseView{
			Number:   i + 1,
			Suit:     string(s),
			Position: p,
			Won:      p >= carrera.WinningPosition,
		})
	}
	return out
}

func turnView(res carrera.TurnResult) *models.TurnView {
	tv := &models.TurnView{
		Number:      res.Turn,
		Card:        cardView(res.Card),
		AfterDraw:   horsesView(res.AfterDraw),
		DrawPile:    res.DrawPile,
		DiscardPile: res.DiscardPile,
	}
	if res.Penitence != nil {
		pc := cardView(*res.Penitence)
		tv.Penitence = &pc
		tv.AfterPenitence = horsesView(res.AfterPenitence)
	}
	return tv
}
