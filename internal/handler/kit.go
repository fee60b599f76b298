package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"sisteminha/internal/model"
	"sisteminha/internal/store"
	ws "sisteminha/internal/websocket"
)

type KitHandler struct {
	kitStore *store.KitStore
	hub      *ws.Hub
	logger   *slog.Logger
}

func NewKitHandler(ks *store.KitStore, hub *ws.Hub, logger *slog.Logger) *KitHandler {
	return &KitHandler{kitStore: ks, hub: hub, logger: logger}
}

// kitRequest is the create payload. Item lists ride along on create; after
// that items have their own endpoints.
type kitRequest struct {
	Nome          string       `json:"nome"`
	Cliente       string       `json:"cliente"`
	Responsavel   string       `json:"responsavel"`
	Revendedor    string       `json:"revendedor"`
	Telefone      string       `json:"telefone"`
	Email         string       `json:"email"`
	DataEvento    string       `json:"dataEvento"`
	Hora          string       `json:"hora"`
	Tipo          string       `json:"tipo"`
	Endereco      string       `json:"endereco"`
	Preco         *float64     `json:"preco"`
	TaxaEntrega   *float64     `json:"taxaEntrega"`
	TipoPagamento string       `json:"tipoPagamento"`
	Tamanho       string       `json:"tamanho"`
	Doces         []model.Item `json:"doces"`
	Salgados      []model.Item `json:"salgados"`
	Bolos         []model.Bolo `json:"bolos"`

	Comments map[string]string `json:"comments"`
}

// validate collects every problem instead of stopping at the first, so the
// registration form can show the full list.
func (req *kitRequest) validate() []string {
	var errs []string
	if strings.TrimSpace(req.Nome) == "" {
		errs = append(errs, "nome é obrigatório")
	}
	if strings.TrimSpace(req.Telefone) == "" {
		errs = append(errs, "telefone é obrigatório")
	}
	switch req.Tipo {
	case string(model.Retirada), string(model.Entrega):
	case "":
		errs = append(errs, "tipo é obrigatório")
	default:
		errs = append(errs, "tipo deve ser retirada ou entrega")
	}
	if req.Tipo == string(model.Entrega) && strings.TrimSpace(req.Endereco) == "" {
		errs = append(errs, "endereço é obrigatório para entrega")
	}
	return errs
}

func (req *kitRequest) toKit() model.Kit {
	return model.Kit{
		Nome:          strings.TrimSpace(req.Nome),
		Cliente:       strings.TrimSpace(req.Cliente),
		Responsavel:   strings.TrimSpace(req.Responsavel),
		Revendedor:    strings.TrimSpace(req.Revendedor),
		Telefone:      strings.TrimSpace(req.Telefone),
		Email:         strings.TrimSpace(req.Email),
		DataEvento:    req.DataEvento,
		Hora:          req.Hora,
		Tipo:          model.TipoEntrega(req.Tipo),
		Endereco:      strings.TrimSpace(req.Endereco),
		Preco:         req.Preco,
		TaxaEntrega:   req.TaxaEntrega,
		TipoPagamento: req.TipoPagamento,
		Tamanho:       req.Tamanho,
		Doces:         req.Doces,
		Salgados:      req.Salgados,
		Bolos:         req.Bolos,
		Comments:      req.Comments,
	}
}

func (h *KitHandler) List(w http.ResponseWriter, r *http.Request) {
	var entregues *bool
	if v := r.URL.Query().Get("entregues"); v != "" {
		b := v == "true" || v == "1"
		entregues = &b
	}

	kits, err := h.kitStore.List(entregues)
	if err != nil {
		h.logger.Error("list kits", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list kits")
		return
	}
	writeJSON(w, http.StatusOK, kits)
}

func (h *KitHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	k, err := h.kitStore.GetByID(id)
	if err != nil {
		h.logger.Error("get kit", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get kit")
		return
	}
	if k == nil {
		writeError(w, http.StatusNotFound, "kit not found")
		return
	}
	writeJSON(w, http.StatusOK, k)
}

func (h *KitHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req kitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": errs})
		return
	}

	k, err := h.kitStore.Create(req.toKit())
	if err != nil {
		h.logger.Error("create kit", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create kit")
		return
	}

	h.hub.Broadcast(ws.NewMessage("kit", "created", k.ID, nil))
	writeJSON(w, http.StatusCreated, k)
}

// optPrice distinguishes "field absent" from "field set to null". A plain
// *float64 cannot: encoding/json leaves the pointer nil in both cases. An
// explicit null clears the stored price.
type optPrice struct {
	set bool
	val *float64
}

func (o *optPrice) UnmarshalJSON(b []byte) error {
	o.set = true
	if string(b) == "null" {
		o.val = nil
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	o.val = &f
	return nil
}

// kitPatch carries only the fields present in the request body; nil means
// "leave as is".
type kitPatch struct {
	Nome          *string  `json:"nome"`
	Cliente       *string  `json:"cliente"`
	Responsavel   *string  `json:"responsavel"`
	Revendedor    *string  `json:"revendedor"`
	Telefone      *string  `json:"telefone"`
	Email         *string  `json:"email"`
	DataEvento    *string  `json:"dataEvento"`
	Hora          *string  `json:"hora"`
	Tipo          *string  `json:"tipo"`
	Endereco      *string  `json:"endereco"`
	Preco         optPrice `json:"preco"`
	TaxaEntrega   optPrice `json:"taxaEntrega"`
	TipoPagamento *string  `json:"tipoPagamento"`
	Tamanho       *string  `json:"tamanho"`
}

func (p *kitPatch) applyTo(k *model.Kit) {
	setStr := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	setStr(&k.Nome, p.Nome)
	setStr(&k.Cliente, p.Cliente)
	setStr(&k.Responsavel, p.Responsavel)
	setStr(&k.Revendedor, p.Revendedor)
	setStr(&k.Telefone, p.Telefone)
	setStr(&k.Email, p.Email)
	setStr(&k.Endereco, p.Endereco)
	if p.DataEvento != nil {
		k.DataEvento = *p.DataEvento
	}
	if p.Hora != nil {
		k.Hora = *p.Hora
	}
	if p.Tipo != nil {
		k.Tipo = model.TipoEntrega(*p.Tipo)
	}
	if p.Preco.set {
		k.Preco = p.Preco.val
	}
	if p.TaxaEntrega.set {
		k.TaxaEntrega = p.TaxaEntrega.val
	}
	if p.TipoPagamento != nil {
		k.TipoPagamento = *p.TipoPagamento
	}
	if p.Tamanho != nil {
		k.Tamanho = *p.Tamanho
	}
}

func (h *KitHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	existing, err := h.kitStore.GetByID(id)
	if err != nil {
		h.logger.Error("get kit", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get kit")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "kit not found")
		return
	}

	var patch kitPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	patch.applyTo(existing)

	if existing.Tipo != model.Retirada && existing.Tipo != model.Entrega {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": []string{"tipo deve ser retirada ou entrega"}})
		return
	}
	if existing.Tipo == model.Entrega && existing.Endereco == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": []string{"endereço é obrigatório para entrega"}})
		return
	}

	updated, err := h.kitStore.Update(id, *existing)
	if err != nil {
		h.logger.Error("update kit", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update kit")
		return
	}

	h.hub.Broadcast(ws.NewMessage("kit", "updated", id, nil))
	writeJSON(w, http.StatusOK, updated)
}

func (h *KitHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	existing, err := h.kitStore.GetByID(id)
	if err != nil {
		h.logger.Error("get kit", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get kit")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "kit not found")
		return
	}

	if err := h.kitStore.Delete(id); err != nil {
		h.logger.Error("delete kit", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete kit")
		return
	}

	h.hub.Broadcast(ws.NewMessage("kit", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

type itemRequest struct {
	Sabor      string `json:"sabor"`
	Quantidade int    `json:"quantidade"`
	Unidade    string `json:"unidade"`
	Observacao string `json:"observacao"`
	Texto      string `json:"texto"`
}

func (h *KitHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	kind := r.PathValue("kind")
	if !store.ValidKind(kind) {
		writeError(w, http.StatusNotFound, "unknown category")
		return
	}
	existing, err := h.kitStore.GetByID(id)
	if err != nil {
		h.logger.Error("get kit", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get kit")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "kit not found")
		return
	}

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.Sabor) == "" {
		writeError(w, http.StatusBadRequest, "sabor is required")
		return
	}

	item := model.Item{
		Sabor:      strings.TrimSpace(req.Sabor),
		Quantidade: req.Quantidade,
		Unidade:    req.Unidade,
		Observacao: req.Observacao,
	}
	created, texto, err := h.kitStore.AddItem(id, kind, item, req.Texto)
	if err != nil {
		h.logger.Error("add item", "kit", id, "kind", kind, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to add item")
		return
	}

	h.hub.Broadcast(ws.NewMessage("kit", "updated", id, map[string]any{"kind": kind}))
	if kind == store.KindBolos {
		writeJSON(w, http.StatusCreated, model.Bolo{Item: *created, Texto: texto})
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *KitHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	kind := r.PathValue("kind")
	if !store.ValidKind(kind) {
		writeError(w, http.StatusNotFound, "unknown category")
		return
	}

	kitID, err := h.kitStore.FindItemKit(itemID, kind)
	if err != nil {
		h.logger.Error("find item", "item", itemID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if kitID == 0 {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	item := model.Item{
		Sabor:      strings.TrimSpace(req.Sabor),
		Quantidade: req.Quantidade,
		Unidade:    req.Unidade,
		Observacao: req.Observacao,
	}
	if err := h.kitStore.UpdateItem(itemID, kind, item, req.Texto); err != nil {
		h.logger.Error("update item", "item", itemID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update item")
		return
	}

	h.hub.Broadcast(ws.NewMessage("kit", "updated", kitID, map[string]any{"kind": kind}))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *KitHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	kind := r.PathValue("kind")
	if !store.ValidKind(kind) {
		writeError(w, http.StatusNotFound, "unknown category")
		return
	}

	kitID, err := h.kitStore.FindItemKit(itemID, kind)
	if err != nil {
		h.logger.Error("find item", "item", itemID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if kitID == 0 {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	if err := h.kitStore.DeleteItem(itemID, kind); err != nil {
		h.logger.Error("delete item", "item", itemID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	h.hub.Broadcast(ws.NewMessage("kit", "updated", kitID, map[string]any{"kind": kind}))
	w.WriteHeader(http.StatusNoContent)
}

type statusRequest struct {
	Value bool `json:"value"`
}

// SetStatus flips one per-category done flag. The flag is stored as sent;
// whether the whole kit reads as done is always recomputed from the flags
// and the item lists, never stored.
func (h *KitHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	kind := r.PathValue("kind")
	if !store.ValidKind(kind) {
		writeError(w, http.StatusNotFound, "unknown category")
		return
	}
	existing, err := h.kitStore.GetByID(id)
	if err != nil {
		h.logger.Error("get kit", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get kit")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "kit not found")
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := h.kitStore.SetStatus(id, kind, req.Value); err != nil {
		h.logger.Error("set status", "id", id, "kind", kind, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to set status")
		return
	}

	h.hub.Broadcast(ws.NewMessage("kit", "status", id, map[string]any{"kind": kind, "value": req.Value}))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SetEntregue flips the delivered flag, which is independent of the
// per-category flags.
func (h *KitHandler) SetEntregue(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	existing, err := h.kitStore.GetByID(id)
	if err != nil {
		h.logger.Error("get kit", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get kit")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "kit not found")
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := h.kitStore.SetEntregue(id, req.Value); err != nil {
		h.logger.Error("set entregue", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to set entregue")
		return
	}

	h.hub.Broadcast(ws.NewMessage("kit", "status", id, map[string]any{"kind": "entregue", "value": req.Value}))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
