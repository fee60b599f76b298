package report

import (
	"testing"
	"time"

	"sisteminha/internal/model"
)

func ptr(f float64) *float64 { return &f }

func kitWithItems(doces, salgados, bolos int) model.Kit {
	k := model.Kit{}
	if doces > 0 {
		k.Doces = []model.Item{{Sabor: "BRIGADEIRO", Quantidade: doces}}
	}
	if salgados > 0 {
		k.Salgados = []model.Item{{Sabor: "COXINHA", Quantidade: salgados}}
	}
	if bolos > 0 {
		k.Bolos = []model.Bolo{{Item: model.Item{Sabor: "CHOCOLATE", Quantidade: bolos}}}
	}
	return k
}

func TestCategoryTotals(t *testing.T) {
	k := model.Kit{
		Doces:    []model.Item{{Quantidade: 30}, {Quantidade: 20}},
		Salgados: []model.Item{{Quantidade: 100}, {Quantidade: -5}},
		Bolos:    []model.Bolo{{Item: model.Item{Quantidade: 2}}},
	}
	d, s, b := CategoryTotals(k)
	if d != 50 || s != 100 || b != 2 {
		t.Errorf("totals = %d %d %d, want 50 100 2", d, s, b)
	}
}

func TestIsAllDoneVacuousTruth(t *testing.T) {
	empty := model.Kit{}
	if !IsAllDone(empty) {
		t.Error("kit with no items must be done regardless of flags")
	}
	empty.Status = model.KitStatus{}
	if !IsAllDone(empty) {
		t.Error("flags false with no items still done")
	}
}

func TestIsAllDoneRequiresFlagsForNonEmpty(t *testing.T) {
	k := kitWithItems(10, 0, 0)
	if IsAllDone(k) {
		t.Error("non-empty doces with flag false must not be done")
	}
	k.Status.DocesDone = true
	if !IsAllDone(k) {
		t.Error("only non-empty sections demand their flag")
	}

	k.Salgados = []model.Item{{Quantidade: 1}}
	if IsAllDone(k) {
		t.Error("adding salgados reopens the kit")
	}
	k.Status.SalgadosDone = true
	if !IsAllDone(k) {
		t.Error("all non-empty sections flagged")
	}
}

func TestIsOverdue(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.Local)

	tests := []struct {
		data, hora string
		want       bool
	}{
		{"2025-06-09", "23:00", true},  // yesterday
		{"2025-06-11", "01:00", false}, // tomorrow
		{"2025-06-10", "08:00", true},  // today, time passed
		{"2025-06-10", "10:00", false}, // today, still ahead
		{"2025-06-10", "", false},      // today, no time
		{"", "08:00", false},           // no date, never overdue
	}
	for _, tt := range tests {
		k := model.Kit{DataEvento: tt.data, Hora: tt.hora}
		if got := IsOverdue(k, now); got != tt.want {
			t.Errorf("IsOverdue(%q %q) = %v, want %v", tt.data, tt.hora, got, tt.want)
		}
	}
}

func TestDailySeriesZeroFilled(t *testing.T) {
	kits := []model.Kit{
		{DataEvento: "2025-06-01", Tipo: model.Entrega},
		{DataEvento: "2025-06-01", Tipo: model.Retirada},
		{DataEvento: "2025-06-03", Tipo: model.Retirada},
	}
	rows := DailySeries(kits, "2025-06-01", "2025-06-03")
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0].Total != 2 || rows[0].Acumulado != 2 {
		t.Errorf("day1 = %+v", rows[0])
	}
	if rows[1].Date != "2025-06-02" || rows[1].Total != 0 || rows[1].Acumulado != 2 {
		t.Errorf("day2 must be zero-filled with carried cumulative: %+v", rows[1])
	}
	if rows[2].Total != 1 || rows[2].Acumulado != 3 {
		t.Errorf("day3 = %+v", rows[2])
	}
	if rows[0].Entrega != 1 || rows[0].Retirada != 1 {
		t.Errorf("day1 split = %+v", rows[0])
	}
}

func TestSaboresRankingTopNAndTies(t *testing.T) {
	kits := []model.Kit{
		{Doces: []model.Item{{Sabor: "BEIJINHO", Quantidade: 10}, {Sabor: "BRIGADEIRO", Quantidade: 10}}},
		{Salgados: []model.Item{{Sabor: "COXINHA", Quantidade: 30}}},
	}
	got := SaboresRanking(kits, 2)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Name != "COXINHA" {
		t.Errorf("top = %q, want COXINHA", got[0].Name)
	}
	// Tie between BEIJINHO and BRIGADEIRO: first seen wins.
	if got[1].Name != "BEIJINHO" {
		t.Errorf("tie break = %q, want BEIJINHO (first seen)", got[1].Name)
	}
}

func TestRevenueRealAndEstimatedStaySeparate(t *testing.T) {
	kits := []model.Kit{
		{Preco: ptr(50.0)},
		kitWithItems(10, 0, 0), // no price, 10 sweets
	}
	r := Revenue(kits, UnitPrices{Doces: 2.0})
	if r.Real != 50.0 {
		t.Errorf("real = %v, want 50", r.Real)
	}
	if r.Estimada != 20.0 {
		t.Errorf("estimada = %v, want 20", r.Estimada)
	}
}

func TestRevenuePricedKitNeverEstimated(t *testing.T) {
	k := kitWithItems(100, 0, 0)
	k.Preco = ptr(10.0)
	r := Revenue([]model.Kit{k}, UnitPrices{Doces: 5.0})
	if r.Real != 10.0 || r.Estimada != 0 {
		t.Errorf("r = %+v, priced kit must not also be estimated", r)
	}
}

func TestFinanceiroResumo(t *testing.T) {
	kits := []model.Kit{
		{Preco: ptr(100), TaxaEntrega: ptr(15), Entregue: true, Tipo: model.Entrega},
		{Preco: ptr(50), Tipo: model.Retirada},
		{Tipo: model.Retirada},
	}
	r := Financeiro(kits)
	if r.TotalFaturado != 150 || r.TotalTaxas != 15 {
		t.Errorf("faturado/taxas = %v/%v", r.TotalFaturado, r.TotalTaxas)
	}
	if r.TotalPedidos != 3 || r.TotalEntregues != 1 || r.TotalPendentes != 2 || r.TotalRetirada != 2 {
		t.Errorf("counts = %+v", r)
	}
	if want := 150.0 / 3; r.TicketMedio != want {
		t.Errorf("ticket = %v, want %v", r.TicketMedio, want)
	}
}

func TestPorDiaSemanaExplicitComponents(t *testing.T) {
	// 2025-06-08 is a Sunday; built from Y/M/D it must stay a Sunday in
	// any timezone.
	kits := []model.Kit{{DataEvento: "2025-06-08"}, {DataEvento: "2025-06-09"}}
	got := PorDiaSemana(kits)
	if got[0].Name != "Dom" || got[0].Value != 1 {
		t.Errorf("sunday bucket = %+v", got[0])
	}
	if got[1].Name != "Seg" || got[1].Value != 1 {
		t.Errorf("monday bucket = %+v", got[1])
	}
}

func TestPorHoraBuckets(t *testing.T) {
	kits := []model.Kit{{Hora: "14:00"}, {Hora: "14:30"}, {Hora: "09:15"}, {Hora: "x"}}
	got := PorHora(kits)
	if got[14].Value != 2 || got[9].Value != 1 {
		t.Errorf("buckets 14=%v 9=%v", got[14].Value, got[9].Value)
	}
	if got[9].Name != "09" {
		t.Errorf("label = %q, want 09", got[9].Name)
	}
}

func TestConsolidadoFlattens(t *testing.T) {
	k := model.Kit{
		ID: 4, Cliente: "Maria", DataEvento: "2025-06-10", Hora: "14:00",
		Tipo:     model.Entrega,
		Doces:    []model.Item{{Sabor: "BRIGADEIRO", Quantidade: 100, Unidade: "UN"}},
		Salgados: []model.Item{{Sabor: "COXINHA", Quantidade: 50}},
		Bolos:    []model.Bolo{{Item: model.Item{Sabor: "CHOCOLATE", Quantidade: 1}}},
	}
	rows := Consolidado([]model.Kit{k})
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want one per item line", len(rows))
	}
	if rows[0].Categoria != "doces" || rows[1].Categoria != "salgados" || rows[2].Categoria != "bolos" {
		t.Errorf("category order = %v %v %v", rows[0].Categoria, rows[1].Categoria, rows[2].Categoria)
	}
	if rows[0].Pedido != "4" || rows[0].Mes != "06/2025" || rows[0].Cliente != "Maria" {
		t.Errorf("header fields = %+v", rows[0])
	}
	if rows[0].Quantidade != "100" || rows[0].Unidade != "UN" {
		t.Errorf("line fields = %+v", rows[0])
	}
}
