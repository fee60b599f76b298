// Package report computes the derived figures the listing, printing and
// dashboard screens show: per-kit totals and predicates, daily series,
// group-by rankings, revenue and the financial summary. Every function is a
// pure projection over canonical kits and is recomputed on each call;
// nothing here caches, and malformed input degrades to zero instead of
// propagating.
package report

import (
	"sort"
	"time"

	"sisteminha/internal/dateutil"
	"sisteminha/internal/model"
)

// CategoryTotals sums item quantities per category for one kit.
func CategoryTotals(k model.Kit) (doces, salgados, bolos int) {
	for _, it := range k.Doces {
		doces += nonNegative(it.Quantidade)
	}
	for _, it := range k.Salgados {
		salgados += nonNegative(it.Quantidade)
	}
	for _, it := range k.Bolos {
		bolos += nonNegative(it.Quantidade)
	}
	return doces, salgados, bolos
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// IsAllDone reports whether every category that actually has items is
// flagged done. A kit with no items at all counts as done: empty sections
// make no demand on the kitchen. This is the business rule, not an
// accident.
func IsAllDone(k model.Kit) bool {
	docesOK := len(k.Doces) == 0 || k.Status.DocesDone
	salgadosOK := len(k.Salgados) == 0 || k.Status.SalgadosDone
	bolosOK := len(k.Bolos) == 0 || k.Status.BolosDone
	return docesOK && salgadosOK && bolosOK
}

// IsOverdue reports whether the kit's event moment has passed, against the
// local calendar day of now. A kit dated before today is overdue; dated
// today it is overdue once the wall clock passes its Hora. Kits without an
// event date are never overdue.
func IsOverdue(k model.Kit, now time.Time) bool {
	if k.DataEvento == "" {
		return false
	}
	today := dateutil.TodayISO(now)
	if k.DataEvento < today {
		return true
	}
	if k.DataEvento > today {
		return false
	}
	if k.Hora == "" {
		return false
	}
	return k.Hora < now.Format("15:04")
}

// DayBucket is one row of the per-day series.
type DayBucket struct {
	Date      string `json:"date"`
	Total     int    `json:"total"`
	Entrega   int    `json:"entrega"`
	Retirada  int    `json:"retirada"`
	Acumulado int    `json:"acumulado"`
}

// DailySeries buckets kits by event date over the inclusive start..end
// range. Days with no kits still get a zero row, and dates present in the
// data but outside the range are kept too. Rows come back in ascending
// date order with a running cumulative total.
func DailySeries(kits []model.Kit, startISO, endISO string) []DayBucket {
	byDay := map[string]*DayBucket{}
	for _, k := range kits {
		d := k.DataEvento
		if d == "" {
			d = "—"
		}
		b := byDay[d]
		if b == nil {
			b = &DayBucket{Date: d}
			byDay[d] = b
		}
		b.Total++
		if k.Tipo == model.Entrega {
			b.Entrega++
		} else {
			b.Retirada++
		}
	}
	for _, d := range dateutil.EachDay(startISO, endISO) {
		if byDay[d] == nil {
			byDay[d] = &DayBucket{Date: d}
		}
	}

	dates := make([]string, 0, len(byDay))
	for d := range byDay {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	out := make([]DayBucket, 0, len(dates))
	running := 0
	for _, d := range dates {
		b := *byDay[d]
		running += b.Total
		b.Acumulado = running
		out = append(out, b)
	}
	return out
}

// NameValue is one labelled figure of a chart or ranking.
type NameValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// ItensPorCategoria totals item quantities across all kits, one row per
// category.
func ItensPorCategoria(kits []model.Kit) []NameValue {
	var doces, salgados, bolos int
	for _, k := range kits {
		d, s, b := CategoryTotals(k)
		doces += d
		salgados += s
		bolos += b
	}
	return []NameValue{
		{Name: "Doces", Value: float64(doces)},
		{Name: "Salgados", Value: float64(salgados)},
		{Name: "Bolos", Value: float64(bolos)},
	}
}

// PorTipo counts kits by delivery mode.
func PorTipo(kits []model.Kit) []NameValue {
	var retirada, entrega int
	for _, k := range kits {
		if k.Tipo == model.Entrega {
			entrega++
		} else {
			retirada++
		}
	}
	return []NameValue{
		{Name: "Retirada", Value: float64(retirada)},
		{Name: "Entrega", Value: float64(entrega)},
	}
}

// SaboresRanking sums quantities by flavor across every category and
// returns the top n by descending total. Ties keep first-seen order.
// Unnamed flavors group under "—".
func SaboresRanking(kits []model.Kit, n int) []NameValue {
	totals := map[string]float64{}
	var order []string
	add := func(sabor string, qtd int) {
		if sabor == "" {
			sabor = "—"
		}
		if _, seen := totals[sabor]; !seen {
			order = append(order, sabor)
		}
		totals[sabor] += float64(nonNegative(qtd))
	}
	for _, k := range kits {
		for _, it := range k.Doces {
			add(it.Sabor, it.Quantidade)
		}
		for _, it := range k.Salgados {
			add(it.Sabor, it.Quantidade)
		}
		for _, it := range k.Bolos {
			add(it.Sabor, it.Quantidade)
		}
	}
	return topN(order, totals, n)
}

// PorPagamento counts kits per payment type, descending. Kits without a
// payment tag group under "NÃO INFORMADO".
func PorPagamento(kits []model.Kit) []NameValue {
	totals := map[string]float64{}
	var order []string
	for _, k := range kits {
		tipo := k.TipoPagamento
		if tipo == "" {
			tipo = "NÃO INFORMADO"
		}
		if _, seen := totals[tipo]; !seen {
			order = append(order, tipo)
		}
		totals[tipo]++
	}
	return topN(order, totals, len(order))
}

// PorCliente sums explicit revenue per client and returns the top n.
func PorCliente(kits []model.Kit, n int) []NameValue {
	totals := map[string]float64{}
	var order []string
	for _, k := range kits {
		c := k.Cliente
		if c == "" {
			c = "NÃO INFORMADO"
		}
		if _, seen := totals[c]; !seen {
			order = append(order, c)
		}
		if k.Preco != nil {
			totals[c] += *k.Preco
		}
	}
	return topN(order, totals, n)
}

func topN(order []string, totals map[string]float64, n int) []NameValue {
	out := make([]NameValue, 0, len(order))
	for _, name := range order {
		out = append(out, NameValue{Name: name, Value: totals[name]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// PorDiaSemana counts kits per weekday of the event date, Sunday first.
// The date is rebuilt from explicit Y/M/D components so the weekday never
// shifts across timezones.
func PorDiaSemana(kits []model.Kit) []NameValue {
	var counts [7]int
	for _, k := range kits {
		d, ok := dateutil.ParseISO(k.DataEvento)
		if !ok {
			continue
		}
		counts[int(d.Weekday())]++
	}
	labels := dateutil.WeekdayLabels()
	out := make([]NameValue, 7)
	for i := range out {
		out[i] = NameValue{Name: labels[i], Value: float64(counts[i])}
	}
	return out
}

// PorHora counts kits per hour of the event time, 24 buckets.
func PorHora(kits []model.Kit) []NameValue {
	var counts [24]int
	for _, k := range kits {
		if len(k.Hora) < 2 || k.Hora[0] < '0' || k.Hora[0] > '9' || k.Hora[1] < '0' || k.Hora[1] > '9' {
			continue
		}
		h := int(k.Hora[0]-'0')*10 + int(k.Hora[1]-'0')
		if h <= 23 {
			counts[h]++
		}
	}
	out := make([]NameValue, 24)
	for i := range out {
		label := string([]byte{byte('0' + i/10), byte('0' + i%10)})
		out[i] = NameValue{Name: label, Value: float64(counts[i])}
	}
	return out
}

// UnitPrices are the per-unit estimates used when a kit carries no explicit
// price.
type UnitPrices struct {
	Doces    float64
	Salgados float64
	Bolos    float64
}

// Receita splits revenue into the two accounting methods. Real sums
// explicit kit prices; Estimada covers only the kits without a price,
// valuing their items at the caller's unit prices. A kit contributes to
// exactly one of the two — the figures must never be blended into a single
// undisclosed total.
type Receita struct {
	Real     float64 `json:"real"`
	Estimada float64 `json:"estimada"`
}

// Revenue computes the real/estimated revenue split for a set of kits.
func Revenue(kits []model.Kit, unit UnitPrices) Receita {
	var r Receita
	for _, k := range kits {
		if k.Preco != nil {
			r.Real += *k.Preco
			continue
		}
		d, s, b := CategoryTotals(k)
		r.Estimada += float64(d)*unit.Doces + float64(s)*unit.Salgados + float64(b)*unit.Bolos
	}
	return r
}

// Resumo is the financial dashboard summary.
type Resumo struct {
	TotalFaturado  float64 `json:"totalFaturado"`
	TotalTaxas     float64 `json:"totalTaxas"`
	TotalPedidos   int     `json:"totalPedidos"`
	TicketMedio    float64 `json:"ticketMedio"`
	TotalEntregues int     `json:"totalEntregues"`
	TotalPendentes int     `json:"totalPendentes"`
	TotalRetirada  int     `json:"totalRetirada"`
}

// Financeiro aggregates the financial summary across kits. Kits without a
// price count toward order totals but contribute zero to revenue.
func Financeiro(kits []model.Kit) Resumo {
	var r Resumo
	for _, k := range kits {
		if k.Preco != nil {
			r.TotalFaturado += *k.Preco
		}
		if k.TaxaEntrega != nil {
			r.TotalTaxas += *k.TaxaEntrega
		}
		r.TotalPedidos++
		if k.Entregue {
			r.TotalEntregues++
		} else {
			r.TotalPendentes++
		}
		if k.Tipo == model.Retirada {
			r.TotalRetirada++
		}
	}
	if r.TotalPedidos > 0 {
		r.TicketMedio = r.TotalFaturado / float64(r.TotalPedidos)
	}
	return r
}
