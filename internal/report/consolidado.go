package report

import (
	"strconv"

	"sisteminha/internal/dateutil"
	"sisteminha/internal/model"
)

// ConsolidadoRow is one line of the consolidated view: the order header
// repeated for each item line. Rows are never persisted; the table is
// rebuilt on every filter change.
type ConsolidadoRow struct {
	Pedido      string `json:"pedido"`
	Data        string `json:"data"`
	Mes         string `json:"mes"`
	Cliente     string `json:"cliente"`
	Responsavel string `json:"responsavel"`
	Retirada    string `json:"retirada"`
	Horario     string `json:"horario"`
	Categoria   string `json:"categoria"`
	Descricao   string `json:"descricao"`
	Quantidade  string `json:"quantidade"`
	Unidade     string `json:"unidade"`
}

// Consolidado flattens kits into one row per (kit × item line), walking
// categories in the fixed doces, salgados, bolos order.
func Consolidado(kits []model.Kit) []ConsolidadoRow {
	var out []ConsolidadoRow
	for _, k := range kits {
		base := ConsolidadoRow{
			Pedido:      strconv.FormatInt(k.ID, 10),
			Data:        k.DataEvento,
			Mes:         dateutil.MonthLabel(k.DataEvento),
			Cliente:     k.Cliente,
			Responsavel: k.Responsavel,
			Retirada:    string(k.Tipo),
			Horario:     k.Hora,
		}
		appendLines := func(categoria string, its []model.Item) {
			for _, it := range its {
				row := base
				row.Categoria = categoria
				row.Descricao = it.Sabor
				row.Quantidade = strconv.Itoa(it.Quantidade)
				row.Unidade = it.Unidade
				out = append(out, row)
			}
		}
		appendLines("doces", k.Doces)
		appendLines("salgados", k.Salgados)
		bolos := make([]model.Item, 0, len(k.Bolos))
		for _, b := range k.Bolos {
			bolos = append(bolos, b.Item)
		}
		appendLines("bolos", bolos)
	}
	return out
}
