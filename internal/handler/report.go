package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"sisteminha/internal/filter"
	"sisteminha/internal/model"
	"sisteminha/internal/report"
	"sisteminha/internal/store"
)

// ReportHandler serves the dashboard and financial aggregates. It always
// starts from an explicit store query scoped by the request's date range;
// nothing here reads ambient state.
type ReportHandler struct {
	kitStore *store.KitStore
	logger   *slog.Logger
}

func NewReportHandler(ks *store.KitStore, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{kitStore: ks, logger: logger}
}

type relatorioResponse struct {
	Serie        []report.DayBucket `json:"serie"`
	Sabores      []report.NameValue `json:"sabores"`
	PorCategoria []report.NameValue `json:"porCategoria"`
	PorTipo      []report.NameValue `json:"porTipo"`
	PorPagamento []report.NameValue `json:"porPagamento"`
	PorCliente   []report.NameValue `json:"porCliente"`
	PorDiaSemana []report.NameValue `json:"porDiaSemana"`
	PorHora      []report.NameValue `json:"porHora"`
	Receita      report.Receita     `json:"receita"`
}

// Relatorios serves GET /relatorios?inicio=YYYY-MM-DD&fim=YYYY-MM-DD.
// The range is inclusive on both ends; omitted bounds leave that side open.
func (h *ReportHandler) Relatorios(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	inicio, fim := q.Get("inicio"), q.Get("fim")

	kits, err := h.rangeQuery(inicio, fim, nil)
	if err != nil {
		h.logger.Error("relatorios query", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build report")
		return
	}

	unit := report.UnitPrices{
		Doces:    parseUnit(q.Get("preco_doce")),
		Salgados: parseUnit(q.Get("preco_salgado")),
		Bolos:    parseUnit(q.Get("preco_bolo")),
	}

	writeJSON(w, http.StatusOK, relatorioResponse{
		Serie:        report.DailySeries(kits, inicio, fim),
		Sabores:      report.SaboresRanking(kits, 10),
		PorCategoria: report.ItensPorCategoria(kits),
		PorTipo:      report.PorTipo(kits),
		PorPagamento: report.PorPagamento(kits),
		PorCliente:   report.PorCliente(kits, 8),
		PorDiaSemana: report.PorDiaSemana(kits),
		PorHora:      report.PorHora(kits),
		Receita:      report.Revenue(kits, unit),
	})
}

type financeiroResponse struct {
	Resumo       report.Resumo           `json:"resumo"`
	PorPagamento []report.NameValue      `json:"porPagamento"`
	PorCliente   []report.NameValue      `json:"porCliente"`
	Consolidado  []report.ConsolidadoRow `json:"consolidado"`
}

// Financeiro serves GET /financeiro?inicio&fim&entregues=true|false.
func (h *ReportHandler) Financeiro(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var entregues *bool
	if v := q.Get("entregues"); v != "" {
		b := v == "true" || v == "1"
		entregues = &b
	}

	kits, err := h.rangeQuery(q.Get("inicio"), q.Get("fim"), entregues)
	if err != nil {
		h.logger.Error("financeiro query", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}

	writeJSON(w, http.StatusOK, financeiroResponse{
		Resumo:       report.Financeiro(kits),
		PorPagamento: report.PorPagamento(kits),
		PorCliente:   report.PorCliente(kits, 8),
		Consolidado:  report.Consolidado(kits),
	})
}

func (h *ReportHandler) rangeQuery(inicio, fim string, entregues *bool) ([]model.Kit, error) {
	kits, err := h.kitStore.List(entregues)
	if err != nil {
		return nil, err
	}
	return filter.Apply(kits, filter.Spec{DataInicio: inicio, DataFim: fim}), nil
}

func parseUnit(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}
