package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"sisteminha/internal/filter"
	"sisteminha/internal/model"
	"sisteminha/internal/normalize"
	"sisteminha/internal/store"
	ws "sisteminha/internal/websocket"
)

// PedidoHandler is the compatibility surface for clients still speaking the
// legacy pedidos dialect: nested formData/items/comments documents with
// string-typed values. Orders are stored canonically and rendered back into
// the document shape on the way out.
type PedidoHandler struct {
	kitStore *store.KitStore
	hub      *ws.Hub
	logger   *slog.Logger
}

func NewPedidoHandler(ks *store.KitStore, hub *ws.Hub, logger *slog.Logger) *PedidoHandler {
	return &PedidoHandler{kitStore: ks, hub: hub, logger: logger}
}

// List serves GET /pedidos. With ?ultimo_id=true it answers only the highest
// order number, which the registration screen uses to pre-fill the next one.
// Otherwise it filters server-side with the same semantics the screens apply
// locally and wraps the result in the legacy {pedidos: [...]} envelope.
func (h *PedidoHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if q.Get("ultimo_id") == "true" {
		id, err := h.kitStore.LastID()
		if err != nil {
			h.logger.Error("last id", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to get last id")
			return
		}
		writeJSON(w, http.StatusOK, map[string]int64{"ultimoId": id})
		return
	}

	kits, err := h.kitStore.List(nil)
	if err != nil {
		h.logger.Error("list pedidos", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list pedidos")
		return
	}

	spec := filter.Spec{
		Data:        q.Get("data"),
		DataInicio:  q.Get("data_inicio"),
		DataFim:     q.Get("data_fim"),
		Cliente:     q.Get("cliente"),
		Responsavel: q.Get("responsavel"),
		Numero:      q.Get("pedidoId"),
		Horario:     q.Get("horario"),
	}
	switch strings.ToLower(q.Get("retirada")) {
	case "retirada":
		spec.Tipo = model.Retirada
	case "entrega":
		spec.Tipo = model.Entrega
	}
	kits = filter.Apply(kits, spec)

	docs := make([]map[string]any, 0, len(kits))
	for _, k := range kits {
		docs = append(docs, pedidoDoc(k))
	}
	writeJSON(w, http.StatusOK, map[string]any{"pedidos": docs})
}

func (h *PedidoHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	k, err := h.kitStore.GetByID(id)
	if err != nil {
		h.logger.Error("get pedido", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get pedido")
		return
	}
	if k == nil {
		writeError(w, http.StatusNotFound, "pedido not found")
		return
	}
	writeJSON(w, http.StatusOK, pedidoDoc(*k))
}

// Create accepts the raw legacy document, runs it through the same
// normalization the read path uses and stores the canonical result. The
// response is the stored order rendered back as a document, so round-trips
// keep working for old clients.
func (h *PedidoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var raw any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	k := normalize.Pedido(raw)
	k.ID = 0 // the store assigns order numbers
	if k.Nome == "" || k.Telefone == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": []string{"cliente e telefone são obrigatórios"}})
		return
	}

	created, err := h.kitStore.Create(k)
	if err != nil {
		h.logger.Error("create pedido", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create pedido")
		return
	}

	h.hub.Broadcast(ws.NewMessage("kit", "created", created.ID, nil))
	writeJSON(w, http.StatusCreated, pedidoDoc(*created))
}

func (h *PedidoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	existing, err := h.kitStore.GetByID(id)
	if err != nil {
		h.logger.Error("get pedido", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get pedido")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "pedido not found")
		return
	}
	if err := h.kitStore.Delete(id); err != nil {
		h.logger.Error("delete pedido", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete pedido")
		return
	}
	h.hub.Broadcast(ws.NewMessage("kit", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

// pedidoDoc renders a canonical order in the legacy document shape: all
// formData values as strings, delivery type in caps, item lines keyed
// descricao/quantidade/unidade.
func pedidoDoc(k model.Kit) map[string]any {
	form := map[string]any{
		"cliente":         k.Cliente,
		"responsavel":     k.Responsavel,
		"revendedor":      k.Revendedor,
		"telefone":        k.Telefone,
		"data":            k.DataEvento,
		"horario":         k.Hora,
		"retirada":        strings.ToUpper(string(k.Tipo)),
		"enderecoEntrega": k.Endereco,
		"tipoPagamento":   k.TipoPagamento,
		"tamanho":         k.Tamanho,
		"entregue":        boolStr(k.Entregue),
	}
	if k.Preco != nil {
		form["precoTotal"] = formatPreco(*k.Preco)
	}
	if k.TaxaEntrega != nil {
		form["taxaEntrega"] = formatPreco(*k.TaxaEntrega)
	}
	if k.Cliente == "" {
		form["cliente"] = k.Nome
	}

	lines := func(items []model.Item) []map[string]any {
		out := make([]map[string]any, 0, len(items))
		for _, it := range items {
			out = append(out, map[string]any{
				"descricao":  it.Sabor,
				"quantidade": strconv.Itoa(it.Quantidade),
				"unidade":    it.Unidade,
			})
		}
		return out
	}
	boloLines := make([]map[string]any, 0, len(k.Bolos))
	for _, b := range k.Bolos {
		boloLines = append(boloLines, map[string]any{
			"descricao":  b.Sabor,
			"quantidade": strconv.Itoa(b.Quantidade),
			"unidade":    b.Unidade,
		})
	}

	doc := map[string]any{
		"id":       k.ID,
		"formData": form,
		"items": map[string]any{
			"doces":    lines(k.Doces),
			"salgados": lines(k.Salgados),
			"bolos":    boloLines,
		},
		"criadoEm":     k.CriadoEm,
		"atualizadoEm": k.AtualizadoEm,
	}
	if len(k.Comments) > 0 {
		doc["comments"] = k.Comments
	}
	return doc
}

func boolStr(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// formatPreco writes prices back the way the legacy forms do, comma decimal
// and two places.
func formatPreco(f float64) string {
	return strings.Replace(strconv.FormatFloat(f, 'f', 2, 64), ".", ",", 1)
}
