package filter

import (
	"sort"

	"sisteminha/internal/model"
)

// Kits with no event date or time compare as a maximal sentinel, above any
// character a real date or time string uses, so they land after everything
// in ascending order.
const maxSentinel = "￿"

// SortByEvento sorts in place by event date then event time.
func SortByEvento(kits []model.Kit, asc bool) {
	sort.SliceStable(kits, func(i, j int) bool {
		di, dj := orDefault(kits[i].DataEvento), orDefault(kits[j].DataEvento)
		if di != dj {
			if asc {
				return di < dj
			}
			return di > dj
		}
		hi, hj := orDefault(kits[i].Hora), orDefault(kits[j].Hora)
		if hi == hj {
			return false
		}
		if asc {
			return hi < hj
		}
		return hi > hj
	})
}

// SortByHora sorts in place by event time only, the ordering the category
// production screens toggle.
func SortByHora(kits []model.Kit, asc bool) {
	sort.SliceStable(kits, func(i, j int) bool {
		hi, hj := orDefault(kits[i].Hora), orDefault(kits[j].Hora)
		if hi == hj {
			return false
		}
		if asc {
			return hi < hj
		}
		return hi > hj
	})
}

// SortByAtualizado sorts most recently updated first (string compare over
// the backend timestamps).
func SortByAtualizado(kits []model.Kit) {
	sort.SliceStable(kits, func(i, j int) bool {
		return kits[i].AtualizadoEm > kits[j].AtualizadoEm
	})
}

func orDefault(s string) string {
	if s == "" {
		return maxSentinel
	}
	return s
}
